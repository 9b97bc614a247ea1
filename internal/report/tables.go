package report

import (
	"github.com/j-veylop/cursor-usage/internal/models"
)

// EventTimeLayout formats event times in the detail table.
const EventTimeLayout = "15:04:05"

// BucketColumns returns the columns of a day, week or month report.
func BucketColumns(period models.Period) []Column {
	return []Column{
		{Title: period.Title(), Kind: KindLabel},
		{Title: "Events", Kind: KindCount},
		{Title: "Total Tokens", Kind: KindCount},
		{Title: "Input", Kind: KindCount},
		{Title: "Output", Kind: KindCount},
		{Title: "Cost", Kind: KindCurrency, Decimals: 2},
		{Title: "Models", Kind: KindText},
	}
}

// EventColumns returns the columns of the single-day detail table.
func EventColumns() []Column {
	return []Column{
		{Title: "Time", Kind: KindLabel},
		{Title: "Model", Kind: KindText},
		{Title: "Type", Kind: KindText},
		{Title: "Input Tokens", Kind: KindCount},
		{Title: "Output Tokens", Kind: KindCount},
		{Title: "Total Tokens", Kind: KindCount},
		{Title: "Cost", Kind: KindCurrency, Decimals: 4},
	}
}

// BreakdownColumns returns the columns of the per-model breakdown.
func BreakdownColumns() []Column {
	return []Column{
		{Title: "Model", Kind: KindLabel},
		{Title: "Events", Kind: KindCount},
		{Title: "Total Tokens", Kind: KindCount},
		{Title: "Cost", Kind: KindCurrency, Decimals: 2},
		{Title: "Token %", Kind: KindPercent, Decimals: 1},
		{Title: "Cost %", Kind: KindPercent, Decimals: 1},
	}
}

// BucketMatrix builds the table for chronologically ordered bucket stats.
func BucketMatrix(period models.Period, stats []models.BucketStats) (Matrix, error) {
	if len(stats) == 0 {
		return Matrix{}, ErrNoData
	}
	rows := make([][]cell, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []cell{
			label(s.Label),
			count(int64(s.EventCount)),
			count(s.TotalTokens),
			count(s.InputTokens),
			count(s.OutputTokens),
			amount(s.TotalCost),
			label(s.Models.String()),
		})
	}
	return assemble(BucketColumns(period), rows), nil
}

// EventMatrix builds the per-event detail table. Events are listed in the
// order given.
func EventMatrix(events []models.UsageEvent) (Matrix, error) {
	if len(events) == 0 {
		return Matrix{}, ErrNoData
	}
	rows := make([][]cell, 0, len(events))
	for _, e := range events {
		rows = append(rows, []cell{
			label(e.Time().Format(EventTimeLayout)),
			label(e.Model()),
			label(e.Type()),
			count(e.InputTokens()),
			count(e.OutputTokens()),
			count(e.Tokens()),
			amount(e.Cost()),
		})
	}
	return assemble(EventColumns(), rows), nil
}

// BreakdownMatrix builds the per-model breakdown table from sorted entries.
func BreakdownMatrix(entries []models.ModelBreakdownEntry) (Matrix, error) {
	if len(entries) == 0 {
		return Matrix{}, ErrNoData
	}
	rows := make([][]cell, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []cell{
			label(e.Model),
			count(int64(e.Count)),
			count(e.TotalTokens),
			amount(e.TotalCost),
			amount(e.TokenPercent),
			amount(e.CostPercent),
		})
	}
	return assemble(BreakdownColumns(), rows), nil
}
