package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/services"
	"github.com/j-veylop/cursor-usage/internal/usage"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultRefreshInterval reloads data when no interval is configured.
	DefaultRefreshInterval = 5 * time.Minute

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	loadTimeout = 2 * time.Minute
)

// Backend is what the TUI needs from the service layer.
type Backend interface {
	Reports(ctx context.Context, reqs []services.ReportRequest) []services.ReportResult
	Billing(ctx context.Context) (*models.BillingSummary, error)
	Credentials() models.Credentials
	Now() time.Time
	Subscribe() (chan services.ServiceEvent, tea.Cmd)
}

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// autoRefreshCmd schedules the next background reload.
func autoRefreshCmd(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return AutoRefreshMsg{Time: t}
	})
}

// ReportRequests returns the reports shown in the TUI: the default daily,
// weekly and monthly windows ending at now, each with a model breakdown.
func ReportRequests(now time.Time) []services.ReportRequest {
	return []services.ReportRequest{
		{Period: models.PeriodDay, Window: usage.DailyWindow(now, usage.DefaultDays), Breakdown: true},
		{Period: models.PeriodWeek, Window: usage.WeeklyWindow(now, usage.DefaultWeeks), Breakdown: true},
		{Period: models.PeriodMonth, Window: usage.MonthlyWindow(now, usage.DefaultMonths), Breakdown: true},
	}
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(b Backend) tea.Cmd {
	return tea.Batch(
		loadBillingCmd(b),
		loadReportsCmd(b),
	)
}

// loadBillingCmd returns a command that fetches the billing summary.
func loadBillingCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		summary, err := b.Billing(ctx)
		return BillingLoadedMsg{Billing: summary, Error: err}
	}
}

// loadReportsCmd returns a command that builds every TUI report.
func loadReportsCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		now := b.Now()
		results := b.Reports(ctx, ReportRequests(now))
		return ReportsLoadedMsg{Results: results, TodaySpend: todaySpend(results, now)}
	}
}

// todaySpend finds today's bucket in the daily report.
func todaySpend(results []services.ReportResult, now time.Time) float64 {
	today := now.UTC().Format(usage.DateLayout)
	for _, r := range results {
		if r.Request.Period != models.PeriodDay || r.Report == nil {
			continue
		}
		for _, s := range r.Report.Stats {
			if s.Key == today {
				return s.TotalCost
			}
		}
	}
	return 0
}

// reportsError returns the first error that is not an empty report.
func reportsError(results []services.ReportResult) error {
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, report.ErrNoData) {
			return r.Err
		}
	}
	return nil
}

// allEmpty reports whether every result came back with report.ErrNoData.
func allEmpty(results []services.ReportResult) bool {
	for _, r := range results {
		if !errors.Is(r.Err, report.ErrNoData) {
			return false
		}
	}
	return true
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(b Backend) tea.Cmd {
	ch, _ := b.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, LongNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}
