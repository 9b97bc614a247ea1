package app

import (
	"time"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/services"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// AutoRefreshMsg is sent every refresh interval to reload data.
type AutoRefreshMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// BillingLoadedMsg contains the fetched billing summary.
type BillingLoadedMsg struct {
	Billing *models.BillingSummary
	Error   error
}

// ReportsLoadedMsg contains freshly built reports.
type ReportsLoadedMsg struct {
	Results    []services.ReportResult
	TodaySpend float64
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "billing", "reports"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
