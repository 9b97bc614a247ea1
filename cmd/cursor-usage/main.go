// Package main is the entry point for cursor-usage. It reads the local Cursor
// session, fetches usage from the Cursor API and prints billing and usage
// reports, or runs the terminal dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/j-veylop/cursor-usage/internal/config"
	"github.com/j-veylop/cursor-usage/internal/logger"
	"github.com/j-veylop/cursor-usage/internal/services"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	json      bool
	yaml      bool
	output    string
	breakdown bool
	chart     bool
	compact   bool
	debug     bool
	since     string
	until     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "cursor-usage",
		Short: "Cursor usage and billing reports",
		Long: `cursor-usage reads the Cursor session stored by the editor and reports
billing cycle usage, daily, weekly and monthly token and cost totals, and
per-model breakdowns.

Configuration is read from the first .env found in the current directory,
~/.config/cursor-usage/.env or ~/.cursor-usage/.env, then from the
environment (CURSOR_DATA_DIR, CURSOR_DB_PATH, CURSOR_DAILY_BUDGET, ...).`,
		Example: `  cursor-usage                                  # billing summary
  cursor-usage daily 30                         # last 30 days
  cursor-usage daily --since 2026-01-01 --until 2026-01-15
  cursor-usage monthly 6 --breakdown --json
  cursor-usage today --date 2026-01-14
  cursor-usage tui`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			_, _, err := outputFormat(flags)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBilling(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&flags.json, "json", false, "output as JSON")
	pf.BoolVar(&flags.yaml, "yaml", false, "output as YAML")
	pf.StringVarP(&flags.output, "output", "o", "", "output format: json or yaml")
	pf.BoolVar(&flags.breakdown, "breakdown", false, "include the per-model breakdown")
	pf.BoolVar(&flags.chart, "chart", false, "plot total tokens per bucket")
	pf.BoolVar(&flags.compact, "compact", false, "compact table format")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.StringVar(&flags.since, "since", "", "start date (YYYY-MM-DD)")
	pf.StringVar(&flags.until, "until", "", "end date (YYYY-MM-DD)")
	root.MarkFlagsMutuallyExclusive("json", "yaml", "output")

	root.AddCommand(
		newReportCmd(flags, reportDaily),
		newReportCmd(flags, reportWeekly),
		newReportCmd(flags, reportMonthly),
		newTodayCmd(flags),
		newTUICmd(flags),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and applies the logging flags.
func setup(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.debug {
		cfg.Debug = true
	}
	logger.SetDebug(cfg.Debug)
	return cfg, nil
}

// withManager runs fn with a started service manager and closes it after.
func withManager(ctx context.Context, cfg *config.Config, fn func(*services.Manager) error) error {
	mgr, err := services.NewManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
	}()
	return fn(mgr)
}
