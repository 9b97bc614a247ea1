// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/services"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Resources tracked by the loading state.
const (
	ResourceInitial = "initial"
	ResourceBilling = "billing"
	ResourceReports = "reports"
)

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Billing bool
	Reports bool
}

// State is shared by the application model and its tabs.
type State struct {
	mu sync.RWMutex

	credentials models.Credentials
	billing     *models.BillingSummary
	billingErr  error
	reports     map[models.Period]services.ReportResult
	todaySpend  float64
	dailyBudget float64

	loading     LoadingState
	lastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state that is loading its initial data.
func NewState() *State {
	return &State{
		reports:       make(map[models.Period]services.ReportResult),
		notifications: make([]Notification, 0),
		loading:       LoadingState{Initial: true},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceInitial:
		s.loading.Initial = loading
	case ResourceBilling:
		s.loading.Billing = loading
	case ResourceReports:
		s.loading.Reports = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading.Initial || s.loading.Billing || s.loading.Reports
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading.Initial
}

// SetCredentials records the signed-in user.
func (s *State) SetCredentials(c models.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials = c
}

// Credentials returns the signed-in user.
func (s *State) Credentials() models.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credentials
}

// SetBilling stores the latest billing summary or the error fetching it.
// A failed refresh keeps the previous summary.
func (s *State) SetBilling(b *models.BillingSummary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.billingErr = err
	if err == nil {
		s.billing = b
		s.lastUpdated = time.Now()
	}
}

// Billing returns the billing summary and the last fetch error.
func (s *State) Billing() (*models.BillingSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.billing, s.billingErr
}

// SetReports stores report results keyed by period. Detail results are
// ignored.
func (s *State) SetReports(results []services.ReportResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		if r.Request.Detail {
			continue
		}
		s.reports[r.Request.Period] = r
	}
	s.lastUpdated = time.Now()
}

// Report returns the latest report for period and the error building it.
func (s *State) Report(period models.Period) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[period]
	if !ok {
		return nil, nil
	}
	return r.Report, r.Err
}

// SetTodaySpend records today's cost in dollars.
func (s *State) SetTodaySpend(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todaySpend = v
}

// TodaySpend returns today's cost in dollars.
func (s *State) TodaySpend() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.todaySpend
}

// SetDailyBudget records the configured daily budget; zero disables it.
func (s *State) SetDailyBudget(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyBudget = v
}

// DailyBudget returns the configured daily budget.
func (s *State) DailyBudget() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyBudget
}

// LastUpdated returns the last time data was stored.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.lastUpdated)
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("n-%d", s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}
	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = s.activeLocked()
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked()
}

func (s *State) activeLocked() []Notification {
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

func (s *State) loadingAnyExceptInitial() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading.Billing || s.loading.Reports
}
