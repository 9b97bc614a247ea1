package usage

import (
	"cmp"
	"slices"

	"github.com/j-veylop/cursor-usage/internal/models"
)

// Breakdown folds events into one entry per model, ignoring bucket
// boundaries, and fills token and cost shares relative to the totals of
// events. Entries are ordered by TotalTokens descending; equal totals keep
// first-seen order.
func Breakdown(events []models.UsageEvent) []models.ModelBreakdownEntry {
	index := make(map[string]int)
	var entries []models.ModelBreakdownEntry
	var totalTokens int64
	var totalCost float64

	for _, e := range events {
		i, ok := index[e.Model()]
		if !ok {
			i = len(entries)
			index[e.Model()] = i
			entries = append(entries, models.ModelBreakdownEntry{Model: e.Model()})
		}
		entry := &entries[i]
		entry.Count++
		entry.TotalTokens = models.AddTokens(entry.TotalTokens, e.Tokens())
		entry.InputTokens = models.AddTokens(entry.InputTokens, e.InputTokens())
		entry.OutputTokens = models.AddTokens(entry.OutputTokens, e.OutputTokens())
		entry.TotalCost += e.Cost()

		totalTokens = models.AddTokens(totalTokens, e.Tokens())
		totalCost += e.Cost()
	}

	for i := range entries {
		entries[i].TokenPercent = Percent(float64(entries[i].TotalTokens), float64(totalTokens))
		entries[i].CostPercent = Percent(entries[i].TotalCost, totalCost)
	}

	slices.SortStableFunc(entries, func(a, b models.ModelBreakdownEntry) int {
		return cmp.Compare(b.TotalTokens, a.TotalTokens)
	})
	return entries
}

// Percent returns part/total*100, or 0 when total is not positive.
func Percent(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// Totals sums tokens and cost across events.
func Totals(events []models.UsageEvent) (tokens int64, cost float64) {
	for _, e := range events {
		tokens = models.AddTokens(tokens, e.Tokens())
		cost += e.Cost()
	}
	return tokens, cost
}
