// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Period selects how events are bucketed.
type Period int

const (
	// PeriodDay buckets by UTC calendar day.
	PeriodDay Period = iota
	// PeriodWeek buckets by rolling 7-day windows.
	PeriodWeek
	// PeriodMonth buckets by UTC calendar month.
	PeriodMonth
)

// String returns the lowercase name used in JSON output.
func (p Period) String() string {
	switch p {
	case PeriodDay:
		return "daily"
	case PeriodWeek:
		return "weekly"
	case PeriodMonth:
		return "monthly"
	default:
		return "unknown"
	}
}

// Title returns the column header for the bucket key.
func (p Period) Title() string {
	switch p {
	case PeriodDay:
		return "Date"
	case PeriodWeek:
		return "Week"
	case PeriodMonth:
		return "Month"
	default:
		return "Period"
	}
}

// Unit returns the plural unit name used in report titles.
func (p Period) Unit() string {
	switch p {
	case PeriodDay:
		return "days"
	case PeriodWeek:
		return "weeks"
	case PeriodMonth:
		return "months"
	default:
		return "periods"
	}
}

// ParsePeriod parses "day", "daily", "week", ... into a Period.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "day", "daily":
		return PeriodDay, nil
	case "w", "week", "weekly":
		return PeriodWeek, nil
	case "m", "month", "monthly":
		return PeriodMonth, nil
	default:
		return 0, fmt.Errorf("unknown period %q", s)
	}
}

// Window is an inclusive UTC time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the number of calendar days the window touches.
func (w Window) Days() int {
	if w.End.Before(w.Start) {
		return 0
	}
	s := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}
