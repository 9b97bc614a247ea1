package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/cursor-usage/internal/export"
	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/render"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/services"
	"github.com/j-veylop/cursor-usage/internal/usage"
	"github.com/j-veylop/cursor-usage/internal/version"
)

const (
	noDataPeriod = "No usage events found for this period"
	noDataDate   = "No usage events found for this date"

	detailDateLayout = "Mon Jan 02 2006"
)

// reportKind describes one bucketed report command.
type reportKind struct {
	use    string
	alias  string
	short  string
	period models.Period
	defN   int
	window func(now time.Time, n int) models.Window
}

var (
	reportDaily = reportKind{
		use: "daily", alias: "d", short: "Daily usage for the last N days",
		period: models.PeriodDay, defN: usage.DefaultDays, window: usage.DailyWindow,
	}
	reportWeekly = reportKind{
		use: "weekly", alias: "w", short: "Weekly usage for the last N weeks",
		period: models.PeriodWeek, defN: usage.DefaultWeeks, window: usage.WeeklyWindow,
	}
	reportMonthly = reportKind{
		use: "monthly", alias: "m", short: "Monthly usage for the last N months",
		period: models.PeriodMonth, defN: usage.DefaultMonths, window: usage.MonthlyWindow,
	}
)

func newReportCmd(flags *globalFlags, kind reportKind) *cobra.Command {
	return &cobra.Command{
		Use:     kind.use + " [N]",
		Aliases: []string{kind.alias},
		Short:   fmt.Sprintf("%s (default %d)", kind.short, kind.defN),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseCount(args, kind.defN)
			if err != nil {
				return err
			}
			cfg, err := setup(flags)
			if err != nil {
				return err
			}
			return withManager(cmd.Context(), cfg, func(mgr *services.Manager) error {
				w, err := reportWindow(kind, mgr.Now(), n, flags.since, flags.until)
				if err != nil {
					return err
				}
				r, err := mgr.Report(cmd.Context(), services.ReportRequest{
					Period:    kind.period,
					Window:    w,
					Breakdown: flags.breakdown,
				})
				title := fmt.Sprintf("%s USAGE REPORT (Last %d %s)",
					strings.ToUpper(kind.period.String()), n, kind.period.Unit())
				return writeReport(cmd, flags, r, err, title, noDataPeriod)
			})
		},
	}
}

func newTodayCmd(flags *globalFlags) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Every usage event of today, or of --date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(flags)
			if err != nil {
				return err
			}
			return withManager(cmd.Context(), cfg, func(mgr *services.Manager) error {
				day := mgr.Now()
				if date != "" {
					if day, err = usage.ParseDate(date); err != nil {
						return err
					}
				}
				r, err := mgr.Report(cmd.Context(), services.ReportRequest{
					Window:    usage.DayWindow(day),
					Detail:    true,
					Breakdown: flags.breakdown,
				})
				title := "USAGE EVENTS FOR " + day.UTC().Format(detailDateLayout)
				return writeReport(cmd, flags, r, err, title, noDataDate)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to list (YYYY-MM-DD, default today)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return err
		},
	}
}

func runBilling(cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := setup(flags)
	if err != nil {
		return err
	}
	return withManager(cmd.Context(), cfg, func(mgr *services.Manager) error {
		summary, err := mgr.Billing(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		format, ok, err := outputFormat(flags)
		if err != nil {
			return err
		}
		if ok {
			return export.WriteBilling(out, summary, format)
		}
		return render.Billing(out, summary, renderOptions(flags).Width)
	})
}

// parseCount reads the optional positional N of a report command.
func parseCount(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid count %q: must be a positive integer", args[0])
	}
	return n, nil
}

// reportWindow builds the window for the last n buckets, then applies
// --since and --until.
func reportWindow(kind reportKind, now time.Time, n int, since, until string) (models.Window, error) {
	var sinceT, untilT time.Time
	var err error
	if since != "" {
		if sinceT, err = usage.ParseDate(since); err != nil {
			return models.Window{}, err
		}
	}
	if until != "" {
		if untilT, err = usage.ParseDate(until); err != nil {
			return models.Window{}, err
		}
	}
	return usage.OverrideWindow(kind.window(now, n), sinceT, untilT)
}

// outputFormat resolves --json, --yaml and --output. ok is false for the
// table renderer.
func outputFormat(flags *globalFlags) (format export.Format, ok bool, err error) {
	switch {
	case flags.json:
		return export.FormatJSON, true, nil
	case flags.yaml:
		return export.FormatYAML, true, nil
	case flags.output != "":
		format, err = export.ParseFormat(flags.output)
		if err != nil {
			return 0, false, err
		}
		return format, true, nil
	default:
		return 0, false, nil
	}
}

func renderOptions(flags *globalFlags) render.Options {
	return render.Options{Width: render.TerminalWidth(os.Stdout), Compact: flags.compact}
}

// writeReport prints r, or a warning when the window held no events.
func writeReport(cmd *cobra.Command, flags *globalFlags, r *report.Report, err error, title, noData string) error {
	if errors.Is(err, report.ErrNoData) {
		return render.Warning(cmd.ErrOrStderr(), noData)
	}
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), flags, r, title)
}

func emit(out io.Writer, flags *globalFlags, r *report.Report, title string) error {
	format, ok, err := outputFormat(flags)
	if err != nil {
		return err
	}
	if ok {
		return export.Write(out, r.Summary, format)
	}
	return render.Report(out, r, render.ReportOptions{
		Options:   renderOptions(flags),
		Title:     title,
		Breakdown: flags.breakdown,
		Chart:     flags.chart,
	})
}
