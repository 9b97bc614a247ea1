package app

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/services"
)

var testNow = time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu         sync.Mutex
	billing    *models.BillingSummary
	billingErr error
	events     []models.UsageEvent
	requests   []services.ReportRequest
	creds      models.Credentials
	ch         chan services.ServiceEvent
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		billing: &models.BillingSummary{MembershipType: "pro"},
		creds:   models.Credentials{UserID: "u", AccessToken: "t", Email: "dev@example.com"},
		ch:      make(chan services.ServiceEvent, 1),
		events: []models.UsageEvent{
			models.NewUsageEvent(models.EventFields{
				Timestamp:   testNow.Add(-time.Hour).UnixMilli(),
				Model:       "a",
				InputTokens: 100,
				Cost:        2.5,
			}),
		},
	}
}

func (f *fakeBackend) Reports(_ context.Context, reqs []services.ReportRequest) []services.ReportResult {
	f.mu.Lock()
	f.requests = reqs
	f.mu.Unlock()

	out := make([]services.ReportResult, len(reqs))
	for i, req := range reqs {
		r, err := report.Build(req.Period, req.Window, f.events, req.Breakdown)
		out[i] = services.ReportResult{Request: req, Report: r, Err: err}
	}
	return out
}

func (f *fakeBackend) Billing(context.Context) (*models.BillingSummary, error) {
	return f.billing, f.billingErr
}

func (f *fakeBackend) Credentials() models.Credentials { return f.creds }

func (f *fakeBackend) Now() time.Time { return testNow }

func (f *fakeBackend) Subscribe() (chan services.ServiceEvent, tea.Cmd) {
	return f.ch, nil
}
