package report

import (
	"encoding/json"
	"time"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/usage"
)

// DetailPeriod is the Summary.Period of a single-day event listing.
const DetailPeriod = "detail"

// Summary is the serializable form of a report. Costs and percentages are
// rounded here and nowhere else. Bucket reports fill Data, detail listings
// fill Events; either is serialized under "data".
type Summary struct {
	Period      string
	TimeRange   *TimeRange
	TotalEvents int
	TotalTokens int64
	TotalCost   float64
	Average     *Average
	Data        []BucketRow
	Events      []EventRow
	Breakdown   []BreakdownRow
}

type summaryDoc struct {
	Period      string         `json:"period" yaml:"period"`
	TimeRange   *TimeRange     `json:"timeRange,omitempty" yaml:"timeRange,omitempty"`
	TotalEvents int            `json:"totalEvents" yaml:"totalEvents"`
	TotalTokens int64          `json:"totalTokens" yaml:"totalTokens"`
	TotalCost   float64        `json:"totalCost" yaml:"totalCost"`
	Average     *Average       `json:"average,omitempty" yaml:"average,omitempty"`
	Data        any            `json:"data" yaml:"data"`
	Breakdown   []BreakdownRow `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

func (s Summary) doc() summaryDoc {
	d := summaryDoc{
		Period:      s.Period,
		TimeRange:   s.TimeRange,
		TotalEvents: s.TotalEvents,
		TotalTokens: s.TotalTokens,
		TotalCost:   s.TotalCost,
		Average:     s.Average,
		Data:        s.Data,
		Breakdown:   s.Breakdown,
	}
	if s.Events != nil {
		d.Data = s.Events
	} else if s.Data == nil {
		d.Data = []BucketRow{}
	}
	return d
}

// MarshalJSON encodes the summary with its rows under "data".
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.doc())
}

// MarshalYAML is MarshalJSON for gopkg.in/yaml.v3.
func (s Summary) MarshalYAML() (any, error) {
	return s.doc(), nil
}

// TimeRange is the report window in RFC 3339.
type TimeRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// Average is the per-bucket mean shown under monthly reports.
type Average struct {
	Tokens int64   `json:"tokens" yaml:"tokens"`
	Cost   float64 `json:"cost" yaml:"cost"`
}

// BucketRow is one bucket in a serialized report.
type BucketRow struct {
	Key              string              `json:"key" yaml:"key"`
	Label            string              `json:"label" yaml:"label"`
	Events           int                 `json:"events" yaml:"events"`
	TotalTokens      int64               `json:"totalTokens" yaml:"totalTokens"`
	InputTokens      int64               `json:"inputTokens" yaml:"inputTokens"`
	OutputTokens     int64               `json:"outputTokens" yaml:"outputTokens"`
	CacheWriteTokens int64               `json:"cacheWriteTokens" yaml:"cacheWriteTokens"`
	CacheReadTokens  int64               `json:"cacheReadTokens" yaml:"cacheReadTokens"`
	Cost             float64             `json:"cost" yaml:"cost"`
	Models           []models.ModelCount `json:"models" yaml:"models"`
}

// EventRow is one event in a serialized detail report.
type EventRow struct {
	ID               string  `json:"id" yaml:"id"`
	Time             string  `json:"time" yaml:"time"`
	Model            string  `json:"model" yaml:"model"`
	Kind             string  `json:"kind" yaml:"kind"`
	Type             string  `json:"type" yaml:"type"`
	InputTokens      int64   `json:"inputTokens" yaml:"inputTokens"`
	OutputTokens     int64   `json:"outputTokens" yaml:"outputTokens"`
	CacheWriteTokens int64   `json:"cacheWriteTokens" yaml:"cacheWriteTokens"`
	CacheReadTokens  int64   `json:"cacheReadTokens" yaml:"cacheReadTokens"`
	Tokens           int64   `json:"tokens" yaml:"tokens"`
	Cost             float64 `json:"cost" yaml:"cost"`
	MaxMode          bool    `json:"maxMode" yaml:"maxMode"`
}

// BreakdownRow is one model in a serialized breakdown.
type BreakdownRow struct {
	Model        string  `json:"model" yaml:"model"`
	Count        int     `json:"count" yaml:"count"`
	TotalTokens  int64   `json:"totalTokens" yaml:"totalTokens"`
	InputTokens  int64   `json:"inputTokens" yaml:"inputTokens"`
	OutputTokens int64   `json:"outputTokens" yaml:"outputTokens"`
	Cost         float64 `json:"cost" yaml:"cost"`
	TokenPercent float64 `json:"tokenPercent" yaml:"tokenPercent"`
	CostPercent  float64 `json:"costPercent" yaml:"costPercent"`
}

func timeRange(w models.Window) *TimeRange {
	if w.Start.IsZero() && w.End.IsZero() {
		return nil
	}
	return &TimeRange{
		Start: w.Start.UTC().Format(time.RFC3339),
		End:   w.End.UTC().Format(time.RFC3339),
	}
}

// BuildSummary assembles the summary of a bucketed report. events is the
// window's event slice; stats are its buckets in chronological order.
func BuildSummary(
	period models.Period,
	window models.Window,
	events []models.UsageEvent,
	stats []models.BucketStats,
	withBreakdown bool,
) (Summary, error) {
	if len(events) == 0 {
		return Summary{}, ErrNoData
	}

	tokens, cost := usage.Totals(events)
	s := Summary{
		Period:      period.String(),
		TimeRange:   timeRange(window),
		TotalEvents: len(events),
		TotalTokens: tokens,
		TotalCost:   Round(cost, 2),
		Data:        make([]BucketRow, 0, len(stats)),
	}

	for _, b := range stats {
		s.Data = append(s.Data, BucketRow{
			Key:              b.Key,
			Label:            b.Label,
			Events:           b.EventCount,
			TotalTokens:      b.TotalTokens,
			InputTokens:      b.InputTokens,
			OutputTokens:     b.OutputTokens,
			CacheWriteTokens: b.CacheWriteTokens,
			CacheReadTokens:  b.CacheReadTokens,
			Cost:             Round(b.TotalCost, 2),
			Models:           b.Models.Entries(),
		})
	}

	if period == models.PeriodMonth {
		avg := AverageOf(stats)
		s.Average = &avg
	}
	if withBreakdown {
		s.Breakdown = breakdownRows(usage.Breakdown(events))
	}
	return s, nil
}

// BuildEventSummary assembles the summary of a single-day detail listing.
// Per-event costs keep four decimals.
func BuildEventSummary(window models.Window, events []models.UsageEvent, withBreakdown bool) (Summary, error) {
	if len(events) == 0 {
		return Summary{}, ErrNoData
	}

	tokens, cost := usage.Totals(events)
	s := Summary{
		Period:      DetailPeriod,
		TimeRange:   timeRange(window),
		TotalEvents: len(events),
		TotalTokens: tokens,
		TotalCost:   Round(cost, 2),
		Events:      make([]EventRow, 0, len(events)),
	}
	for _, e := range events {
		s.Events = append(s.Events, EventRow{
			ID:               e.ID(),
			Time:             e.Time().Format(time.RFC3339),
			Model:            e.Model(),
			Kind:             e.Kind(),
			Type:             e.Type(),
			InputTokens:      e.InputTokens(),
			OutputTokens:     e.OutputTokens(),
			CacheWriteTokens: e.CacheWriteTokens(),
			CacheReadTokens:  e.CacheReadTokens(),
			Tokens:           e.Tokens(),
			Cost:             Round(e.Cost(), 4),
			MaxMode:          e.MaxMode(),
		})
	}
	if withBreakdown {
		s.Breakdown = breakdownRows(usage.Breakdown(events))
	}
	return s, nil
}

func breakdownRows(entries []models.ModelBreakdownEntry) []BreakdownRow {
	rows := make([]BreakdownRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, BreakdownRow{
			Model:        e.Model,
			Count:        e.Count,
			TotalTokens:  e.TotalTokens,
			InputTokens:  e.InputTokens,
			OutputTokens: e.OutputTokens,
			Cost:         Round(e.TotalCost, 2),
			TokenPercent: Round(e.TokenPercent, 2),
			CostPercent:  Round(e.CostPercent, 2),
		})
	}
	return rows
}

// AverageOf returns mean tokens and cost per bucket. An empty slice counts
// as one bucket.
func AverageOf(stats []models.BucketStats) Average {
	var tokens int64
	var cost float64
	for _, b := range stats {
		tokens = models.AddTokens(tokens, b.TotalTokens)
		cost += b.TotalCost
	}
	n := max(len(stats), 1)
	return Average{
		Tokens: int64(Round(float64(tokens)/float64(n), 0)),
		Cost:   Round(cost/float64(n), 2),
	}
}
