package usage

import (
	"fmt"
	"time"

	"github.com/j-veylop/cursor-usage/internal/models"
)

// DateLayout is the accepted --since/--until format.
const DateLayout = "2006-01-02"

// Default report lengths when no count is given.
const (
	DefaultDays   = 7
	DefaultWeeks  = 4
	DefaultMonths = 3
)

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Millisecond)
}

// DailyWindow covers the last days days plus today, in whole UTC days.
func DailyWindow(now time.Time, days int) models.Window {
	if days < 0 {
		days = 0
	}
	return models.Window{
		Start: startOfDay(now).AddDate(0, 0, -days),
		End:   endOfDay(now),
	}
}

// WeeklyWindow covers exactly weeks rolling 7-day windows ending today.
func WeeklyWindow(now time.Time, weeks int) models.Window {
	if weeks < 1 {
		weeks = 1
	}
	return models.Window{
		Start: startOfDay(now).AddDate(0, 0, -(7*weeks - 1)),
		End:   endOfDay(now),
	}
}

// MonthlyWindow starts on the first day of the month months back.
func MonthlyWindow(now time.Time, months int) models.Window {
	if months < 0 {
		months = 0
	}
	n := now.UTC()
	return models.Window{
		Start: time.Date(n.Year(), n.Month()-time.Month(months), 1, 0, 0, 0, 0, time.UTC),
		End:   endOfDay(n),
	}
}

// DayWindow covers a single UTC day.
func DayWindow(day time.Time) models.Window {
	return models.Window{Start: startOfDay(day), End: endOfDay(day)}
}

// OverrideWindow replaces the start and/or end of w with whole-day bounds
// from since and until. Zero values leave that side unchanged.
func OverrideWindow(w models.Window, since, until time.Time) (models.Window, error) {
	if !since.IsZero() {
		w.Start = startOfDay(since)
	}
	if !until.IsZero() {
		w.End = endOfDay(until)
	}
	if w.End.Before(w.Start) {
		return w, fmt.Errorf("window end %s is before start %s",
			w.End.Format(DateLayout), w.Start.Format(DateLayout))
	}
	return w, nil
}

// WeekAnchor returns the exclusive end of w, used to align week buckets.
func WeekAnchor(w models.Window) time.Time {
	return w.End.Add(time.Millisecond).Truncate(time.Millisecond)
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FilterWindow keeps the events whose timestamp lies inside w.
// Callers apply it before bucketing.
func FilterWindow(events []models.UsageEvent, w models.Window) []models.UsageEvent {
	out := make([]models.UsageEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(e.Time()) {
			out = append(out, e)
		}
	}
	return out
}
