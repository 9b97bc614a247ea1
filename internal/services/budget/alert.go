// Package budget raises a desktop notification when a day's spend crosses
// the configured daily budget.
package budget

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/j-veylop/cursor-usage/internal/logger"
	"github.com/j-veylop/cursor-usage/internal/report"
)

// Notifier shows a notification to the user.
type Notifier func(title, message string) error

// DesktopNotifier sends notifications through the OS notification center.
func DesktopNotifier(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Alert tracks spend per UTC day and notifies once per day when it crosses
// the limit.
type Alert struct {
	mu       sync.Mutex
	limit    float64
	notify   Notifier
	day      string
	notified bool
}

// New returns an Alert for limit dollars per day. A limit of zero or less
// disables it. A nil notify uses DesktopNotifier.
func New(limit float64, notify Notifier) *Alert {
	if notify == nil {
		notify = DesktopNotifier
	}
	return &Alert{limit: limit, notify: notify}
}

// Enabled reports whether a limit is set.
func (a *Alert) Enabled() bool {
	return a != nil && a.limit > 0
}

// Limit returns the daily limit in dollars.
func (a *Alert) Limit() float64 {
	return a.limit
}

// Check records spent for day and notifies when it is the first time that
// day the limit is reached. It reports whether a notification was sent.
func (a *Alert) Check(day time.Time, spent float64) bool {
	if !a.Enabled() {
		return false
	}

	key := day.UTC().Format("2006-01-02")

	a.mu.Lock()
	if key != a.day {
		a.day = key
		a.notified = false
	}
	if a.notified || spent < a.limit {
		a.mu.Unlock()
		return false
	}
	a.notified = true
	a.mu.Unlock()

	title := "Cursor daily budget reached"
	body := fmt.Sprintf("Spent %s of %s today (%s)",
		report.FormatCurrency(spent, 2), report.FormatCurrency(a.limit, 2), key)
	if err := a.notify(title, body); err != nil {
		logger.Warn("failed to send budget notification", "error", err)
	}
	return true
}
