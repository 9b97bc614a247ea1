package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/cursor-usage/internal/models"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func event(ts time.Time, model string, input, output int64, cost float64) models.UsageEvent {
	return models.NewUsageEvent(models.EventFields{
		Timestamp:    ts.UnixMilli(),
		Model:        model,
		InputTokens:  input,
		OutputTokens: output,
		Cost:         cost,
	})
}

func sampleEvents() []models.UsageEvent {
	return []models.UsageEvent{
		event(at(2025, 12, 29, 9), "a", 10, 5, 0.10),
		event(at(2025, 12, 31, 23), "b", 200, 20, 0.30),
		event(at(2026, 1, 1, 0), "a", 1, 1, 0.01),
		event(at(2026, 1, 5, 8), "a", 100, 0, 1.00),
		event(at(2026, 1, 5, 9), "b", 0, 300, 3.00),
		event(at(2026, 1, 12, 22), "c", 40, 40, 0.40),
		event(at(2026, 1, 14, 6), "a", 7, 3, 0.05),
	}
}

func TestGroup_DayScenario(t *testing.T) {
	events := []models.UsageEvent{
		event(at(2026, 1, 5, 1), "a", 100, 0, 1.00),
		event(at(2026, 1, 5, 23), "b", 0, 300, 3.00),
	}

	bs := Bucketer{Period: models.PeriodDay}.Group(events)
	stats := AggregateBuckets(bs)

	require.Len(t, stats, 1)
	s := stats[0]
	assert.Equal(t, "2026-01-05", s.Key)
	assert.Equal(t, 2, s.EventCount)
	assert.Equal(t, int64(400), s.TotalTokens)
	assert.Equal(t, int64(100), s.InputTokens)
	assert.Equal(t, int64(300), s.OutputTokens)
	assert.InDelta(t, 4.0, s.TotalCost, 1e-9)
	assert.Equal(t, []models.ModelCount{{Model: "a", Count: 1}, {Model: "b", Count: 1}}, s.Models.Entries())
}

func TestGroup_IsLossless(t *testing.T) {
	events := sampleEvents()
	w := models.Window{Start: at(2025, 12, 20, 0), End: at(2026, 1, 14, 0).Add(24*time.Hour - time.Millisecond)}

	for _, p := range []models.Period{models.PeriodDay, models.PeriodWeek, models.PeriodMonth} {
		t.Run(p.String(), func(t *testing.T) {
			bs := Bucketer{Period: p, WeekAnchor: WeekAnchor(w)}.Group(events)

			seen := make(map[string]int)
			var count int
			var tokens int64
			for _, k := range bs.Keys() {
				for _, e := range bs.Events(k) {
					seen[e.ID()+e.Time().String()]++
					count++
					tokens += e.Tokens()
				}
			}
			assert.Equal(t, len(events), count)
			for _, e := range events {
				assert.Equal(t, 1, seen[e.ID()+e.Time().String()])
			}

			wantTokens, _ := Totals(events)
			assert.Equal(t, wantTokens, tokens)

			var statTokens int64
			var statEvents int
			for _, s := range AggregateBuckets(bs) {
				statTokens += s.TotalTokens
				statEvents += s.EventCount
			}
			assert.Equal(t, wantTokens, statTokens)
			assert.Equal(t, len(events), statEvents)
		})
	}
}

func TestGroup_KeysSortChronologically(t *testing.T) {
	events := []models.UsageEvent{
		event(at(2026, 1, 2, 0), "a", 1, 0, 0),
		event(at(2025, 9, 30, 0), "a", 1, 0, 0),
		event(at(2025, 10, 1, 0), "a", 1, 0, 0),
		event(at(2025, 12, 31, 0), "a", 1, 0, 0),
	}

	days := Bucketer{Period: models.PeriodDay}.Group(events)
	assert.Equal(t, []string{"2025-09-30", "2025-10-01", "2025-12-31", "2026-01-02"}, days.Keys())

	months := Bucketer{Period: models.PeriodMonth}.Group(events)
	assert.Equal(t, []string{"2025-09", "2025-10", "2025-12", "2026-01"}, months.Keys())
	assert.Equal(t, "September 2025", months.Label("2025-09"))
}

func TestGroup_EmptyInput(t *testing.T) {
	bs := Bucketer{Period: models.PeriodDay}.Group(nil)
	assert.Equal(t, 0, bs.Len())
	assert.Empty(t, bs.Keys())
	assert.Empty(t, AggregateBuckets(bs))
}

func TestGroup_PreservesArrivalOrder(t *testing.T) {
	events := []models.UsageEvent{
		event(at(2026, 1, 5, 12), "late", 1, 0, 0),
		event(at(2026, 1, 5, 1), "early", 1, 0, 0),
	}
	bs := Bucketer{Period: models.PeriodDay}.Group(events)
	got := bs.Events("2026-01-05")
	require.Len(t, got, 2)
	assert.Equal(t, "late", got[0].Model())
	assert.Equal(t, "early", got[1].Model())
}

func TestBucketer_AnchoredWeeks(t *testing.T) {
	w := WeeklyWindow(at(2026, 1, 14, 10), 2)
	b := Bucketer{Period: models.PeriodWeek, WeekAnchor: WeekAnchor(w)}

	tests := []struct {
		name      string
		ts        time.Time
		wantKey   string
		wantLabel string
	}{
		{"LastDay", at(2026, 1, 14, 23), "2026-01-08", "2026-01-08 - 2026-01-14"},
		{"FirstDayOfLastWeek", at(2026, 1, 8, 0), "2026-01-08", "2026-01-08 - 2026-01-14"},
		{"EndOfFirstWeek", time.Date(2026, 1, 7, 23, 59, 59, 0, time.UTC), "2026-01-01", "2026-01-01 - 2026-01-07"},
		{"WindowStart", at(2026, 1, 1, 0), "2026-01-01", "2026-01-01 - 2026-01-07"},
		{"BeforeWindow", at(2025, 12, 31, 23), "2025-12-25", "2025-12-25 - 2025-12-31"},
		{"AfterWindow", at(2026, 1, 15, 0), "2026-01-15", "2026-01-15 - 2026-01-21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, label := b.Key(tt.ts)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestBucketer_WeekKeysAcrossYearBoundary(t *testing.T) {
	w := WeeklyWindow(at(2026, 1, 3, 12), 3)
	b := Bucketer{Period: models.PeriodWeek, WeekAnchor: WeekAnchor(w)}

	events := []models.UsageEvent{
		event(at(2026, 1, 2, 0), "a", 1, 0, 0),
		event(at(2025, 12, 15, 0), "a", 1, 0, 0),
		event(at(2025, 12, 24, 0), "a", 1, 0, 0),
	}
	bs := b.Group(events)

	assert.Equal(t, []string{"2025-12-14", "2025-12-21", "2025-12-28"}, bs.Keys())
	assert.Equal(t, "2025-12-28 - 2026-01-03", bs.Label("2025-12-28"))
}

func TestBucketer_UnanchoredWeeksAreMondayAligned(t *testing.T) {
	b := Bucketer{Period: models.PeriodWeek}

	// 2026-01-04 is a Sunday.
	key, label := b.Key(at(2026, 1, 4, 18))
	assert.Equal(t, "2025-12-29", key)
	assert.Equal(t, "2025-12-29 - 2026-01-04", label)

	key, _ = b.Key(at(2026, 1, 5, 0))
	assert.Equal(t, "2026-01-05", key)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(2), floorDiv(7, 3))
	assert.Equal(t, int64(-3), floorDiv(-7, 3))
	assert.Equal(t, int64(-1), floorDiv(-1, 3))
	assert.Equal(t, int64(0), floorDiv(0, 3))
	assert.Equal(t, int64(-2), floorDiv(-6, 3))
}
