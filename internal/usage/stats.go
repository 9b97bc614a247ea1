package usage

import "github.com/j-veylop/cursor-usage/internal/models"

// Aggregate folds one bucket's events into BucketStats in a single pass.
// Cost is summed without rounding.
func Aggregate(key, label string, events []models.UsageEvent) models.BucketStats {
	s := models.BucketStats{
		Key:    key,
		Label:  label,
		Models: models.NewModelCounts(),
	}
	for _, e := range events {
		s.EventCount++
		s.TotalTokens = models.AddTokens(s.TotalTokens, e.Tokens())
		s.InputTokens = models.AddTokens(s.InputTokens, e.InputTokens())
		s.OutputTokens = models.AddTokens(s.OutputTokens, e.OutputTokens())
		s.CacheWriteTokens = models.AddTokens(s.CacheWriteTokens, e.CacheWriteTokens())
		s.CacheReadTokens = models.AddTokens(s.CacheReadTokens, e.CacheReadTokens())
		s.TotalCost += e.Cost()
		s.Models.Inc(e.Model())
	}
	return s
}

// AggregateBuckets returns stats for every bucket in chronological order.
func AggregateBuckets(bs *Buckets) []models.BucketStats {
	out := make([]models.BucketStats, 0, bs.Len())
	for _, k := range bs.Keys() {
		out = append(out, Aggregate(k, bs.Label(k), bs.Events(k)))
	}
	return out
}
