package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/cursor-usage/internal/app"
	"github.com/j-veylop/cursor-usage/internal/logger"
	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/services"
	"github.com/j-veylop/cursor-usage/internal/ui/tabs/dashboard"
	"github.com/j-veylop/cursor-usage/internal/ui/tabs/history"
	"github.com/j-veylop/cursor-usage/internal/ui/tabs/info"
)

const debugLogName = "cursor-usage-debug.log"

func newTUICmd(flags *globalFlags) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive dashboard with billing, usage and budget alerts",
		Long: `Interactive dashboard.

Keyboard shortcuts:
  1-3             Switch between tabs (Overview, Usage, Info)
  Tab/Shift+Tab   Navigate between tabs
  d/w/m           Daily, weekly or monthly report (Usage tab)
  b, c            Toggle breakdown and chart (Usage tab)
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initial, err := models.ParsePeriod(period)
			if err != nil {
				return err
			}

			cfg, err := setup(flags)
			if err != nil {
				return err
			}

			// The alt screen owns stdout and stderr while the program runs.
			closeLog, err := redirectLogs(cfg.Debug)
			if err != nil {
				return err
			}
			defer closeLog()

			return withManager(cmd.Context(), cfg, func(mgr *services.Manager) error {
				model := app.NewModel(mgr, app.Options{
					RefreshInterval: cfg.RefreshInterval,
					DailyBudget:     cfg.DailyBudget,
				})

				state := model.GetState()
				usageTab := history.New(state)
				usageTab.SetPeriod(initial)
				model.SetTabs([]app.Tab{
					dashboard.New(state),
					usageTab,
					info.New(state, cfg),
				})

				p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
				if _, err := p.Run(); err != nil && cmd.Context().Err() == nil {
					return fmt.Errorf("error running TUI: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", "daily", "initial report on the Usage tab (daily, weekly or monthly)")
	return cmd
}

// redirectLogs silences the logger, or sends it to a file in the temp
// directory when debugging.
func redirectLogs(debug bool) (func(), error) {
	if !debug {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(os.Stderr) }, nil
	}

	path := filepath.Join(os.TempDir(), debugLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
