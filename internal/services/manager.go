// Package services provides service orchestration for the CLI and TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/cursor-usage/internal/config"
	"github.com/j-veylop/cursor-usage/internal/cursor"
	"github.com/j-veylop/cursor-usage/internal/logger"
	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/services/budget"
	"github.com/j-veylop/cursor-usage/internal/services/credentials"
	"github.com/j-veylop/cursor-usage/internal/usage"
)

type (
	// CredentialsChangedEvent is emitted when the signed-in user or token changes.
	CredentialsChangedEvent struct {
		Email      string
		Membership string
	}

	// BudgetExceededEvent is emitted when today's spend crosses the daily budget.
	BudgetExceededEvent struct {
		Spent float64
		Limit float64
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (CredentialsChangedEvent) isServiceEvent() {}
func (BudgetExceededEvent) isServiceEvent()     {}
func (ErrorEvent) isServiceEvent()              {}

// Source fetches usage data from the Cursor dashboard API.
type Source interface {
	FetchEvents(ctx context.Context, creds models.Credentials, start, end time.Time) []models.UsageEvent
	FetchBillingSummary(ctx context.Context, creds models.Credentials) (*models.BillingSummary, error)
}

// Options overrides the collaborators NewManager builds from config.
type Options struct {
	Source   Source
	Loader   credentials.Loader
	Notifier budget.Notifier
	Now      func() time.Time
}

// ReportRequest names one report to build.
type ReportRequest struct {
	Period    models.Period
	Window    models.Window
	Detail    bool
	Breakdown bool
}

// ReportResult is the outcome of one ReportRequest. Err is report.ErrNoData
// when the window holds no events.
type ReportResult struct {
	Request ReportRequest
	Report  *report.Report
	Err     error
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	credentials *credentials.Service
	source      Source
	budget      *budget.Alert
	now         func() time.Time
	stopChan    chan struct{}
	done        chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a service manager from configuration.
func NewManager(ctx context.Context, cfg *config.Config) (*Manager, error) {
	return New(ctx, cfg, Options{})
}

// New creates a service manager, using opts where set.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Manager, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Source == nil {
		opts.Source = cursor.New(cursor.Options{
			BaseURL:           cfg.APIBaseURL,
			Timeout:           cfg.RequestTimeout,
			PageSize:          cfg.PageSize,
			MaxConcurrency:    cfg.MaxConcurrency,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Now:               opts.Now,
		})
	}

	creds, err := credentials.New(ctx, cfg.DatabasePath, opts.Loader)
	if err != nil {
		return nil, err
	}
	logger.Debug("Watching credentials", "path", creds.Path())

	m := &Manager{
		credentials: creds,
		source:      opts.Source,
		budget:      budget.New(cfg.DailyBudget, opts.Notifier),
		now:         opts.Now,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	defer close(m.done)

	for {
		select {
		case event := <-m.credentials.Events():
			m.handleCredentialsEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleCredentialsEvent(event credentials.Event) {
	switch event.Type {
	case credentials.EventCredentialsChanged:
		m.broadcast(CredentialsChangedEvent{
			Email:      event.Credentials.Email,
			Membership: event.Credentials.Membership,
		})

	case credentials.EventError:
		m.broadcast(ErrorEvent{
			Service: "credentials",
			Error:   event.Error,
		})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Credentials returns the current credentials.
func (m *Manager) Credentials() models.Credentials {
	return m.credentials.Credentials()
}

// Now returns the manager's clock reading.
func (m *Manager) Now() time.Time {
	return m.now()
}

// FetchEvents returns the events inside w. Transport failures are logged by
// the client and yield an empty slice.
func (m *Manager) FetchEvents(ctx context.Context, w models.Window) []models.UsageEvent {
	events := m.source.FetchEvents(ctx, m.Credentials(), w.Start, w.End)
	m.checkBudget(events)
	return events
}

// Report fetches events for req.Window and builds one report.
func (m *Manager) Report(ctx context.Context, req ReportRequest) (*report.Report, error) {
	results := m.Reports(ctx, []ReportRequest{req})
	return results[0].Report, results[0].Err
}

// Reports fetches the union of all request windows once, then builds every
// report concurrently over the shared event slice.
func (m *Manager) Reports(ctx context.Context, reqs []ReportRequest) []ReportResult {
	results := make([]ReportResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	events := m.FetchEvents(ctx, union(reqs))

	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			var r *report.Report
			var err error
			if req.Detail {
				r, err = report.BuildDetail(req.Window, events, req.Breakdown)
			} else {
				r, err = report.Build(req.Period, req.Window, events, req.Breakdown)
			}
			results[i] = ReportResult{Request: req, Report: r, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.Err != nil && !errors.Is(res.Err, report.ErrNoData) {
			logger.Warn("failed to build report", "period", res.Request.Period.String(), "error", res.Err)
		}
	}
	return results
}

func union(reqs []ReportRequest) models.Window {
	w := reqs[0].Window
	for _, r := range reqs[1:] {
		if r.Window.Start.Before(w.Start) {
			w.Start = r.Window.Start
		}
		if r.Window.End.After(w.End) {
			w.End = r.Window.End
		}
	}
	return w
}

// Billing fetches the billing summary for the current user.
func (m *Manager) Billing(ctx context.Context) (*models.BillingSummary, error) {
	summary, err := m.source.FetchBillingSummary(ctx, m.Credentials())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch billing summary: %w", err)
	}
	return summary, nil
}

// checkBudget alerts when today's spend in events reaches the daily budget.
func (m *Manager) checkBudget(events []models.UsageEvent) {
	if !m.budget.Enabled() {
		return
	}
	now := m.now()
	_, spent := usage.Totals(usage.FilterWindow(events, usage.DayWindow(now)))
	if m.budget.Check(now, spent) {
		m.broadcast(BudgetExceededEvent{Spent: spent, Limit: m.budget.Limit()})
	}
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)
	<-m.done

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	return m.credentials.Close()
}
