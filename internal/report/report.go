package report

import (
	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/usage"
)

// Report is everything one report command prints or exports.
type Report struct {
	Period    models.Period
	Window    models.Window
	Stats     []models.BucketStats
	Table     Matrix
	Breakdown *Matrix
	Summary   Summary
}

// Build runs the whole pipeline for one bucketed report: filter events to
// w, bucket them, aggregate, and assemble the table and summary. The
// breakdown table is always built; withBreakdown controls whether the
// summary carries it.
func Build(period models.Period, w models.Window, events []models.UsageEvent, withBreakdown bool) (*Report, error) {
	inWindow := usage.FilterWindow(events, w)
	if len(inWindow) == 0 {
		return nil, ErrNoData
	}

	b := usage.Bucketer{Period: period, WeekAnchor: usage.WeekAnchor(w)}
	stats := usage.AggregateBuckets(b.Group(inWindow))

	table, err := BucketMatrix(period, stats)
	if err != nil {
		return nil, err
	}
	breakdown, err := BreakdownMatrix(usage.Breakdown(inWindow))
	if err != nil {
		return nil, err
	}
	summary, err := BuildSummary(period, w, inWindow, stats, withBreakdown)
	if err != nil {
		return nil, err
	}

	return &Report{
		Period:    period,
		Window:    w,
		Stats:     stats,
		Table:     table,
		Breakdown: &breakdown,
		Summary:   summary,
	}, nil
}

// BuildDetail is Build for the single-day event listing.
func BuildDetail(w models.Window, events []models.UsageEvent, withBreakdown bool) (*Report, error) {
	inWindow := usage.FilterWindow(events, w)
	if len(inWindow) == 0 {
		return nil, ErrNoData
	}

	table, err := EventMatrix(inWindow)
	if err != nil {
		return nil, err
	}
	breakdown, err := BreakdownMatrix(usage.Breakdown(inWindow))
	if err != nil {
		return nil, err
	}
	summary, err := BuildEventSummary(w, inWindow, withBreakdown)
	if err != nil {
		return nil, err
	}

	return &Report{
		Period:    models.PeriodDay,
		Window:    w,
		Table:     table,
		Breakdown: &breakdown,
		Summary:   summary,
	}, nil
}
