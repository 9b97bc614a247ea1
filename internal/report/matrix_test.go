package report

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/usage"
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

func scenarioEvents() []models.UsageEvent {
	return []models.UsageEvent{
		event(at(2026, 1, 5, 1), "a", 100, 0, 1.00),
		event(at(2026, 1, 5, 23), "b", 0, 300, 3.00),
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "$4.00", FormatCurrency(4, 2))
	assert.Equal(t, "$0.0125", FormatCurrency(0.0125, 4))
	assert.Equal(t, "$0.13", FormatCurrency(0.125, 2))
	assert.Equal(t, "75.0%", FormatPercent(75, 1))
	assert.Equal(t, "33.3%", FormatPercent(100.0/3, 1))
	assert.Equal(t, "$0.00", FormatCurrency(math.NaN(), 2))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 4.0, Round(3.999, 2))
	assert.Equal(t, 1.01, Round(1.005, 2))
	assert.Equal(t, 0.1235, Round(0.12345, 4))
	assert.Equal(t, 0.0, Round(math.NaN(), 2))
}

func TestKindSummable(t *testing.T) {
	assert.False(t, KindLabel.Summable())
	assert.False(t, KindText.Summable())
	assert.True(t, KindCount.Summable())
	assert.True(t, KindCurrency.Summable())
	assert.True(t, KindPercent.Summable())
}

func TestBucketMatrix_TotalsScenario(t *testing.T) {
	stats := usage.AggregateBuckets(usage.Bucketer{Period: models.PeriodDay}.Group(scenarioEvents()))

	m, err := BucketMatrix(models.PeriodDay, stats)
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Events", "Total Tokens", "Input", "Output", "Cost", "Models"}, m.Headers)
	require.Len(t, m.Rows, 1)
	assert.Equal(t, []string{"2026-01-05", "2", "400", "100", "300", "$4.00", "a(1), b(1)"}, m.Rows[0])
	assert.Equal(t, []string{"Total", "2", "400", "100", "300", "$4.00", ""}, m.Totals)
}

func TestBucketMatrix_TotalsSumRawValues(t *testing.T) {
	stats := []models.BucketStats{
		{Key: "2026-01-01", Label: "2026-01-01", EventCount: 1, TotalTokens: 1000, TotalCost: 0.004, Models: models.NewModelCounts()},
		{Key: "2026-01-02", Label: "2026-01-02", EventCount: 1, TotalTokens: 1000, TotalCost: 0.004, Models: models.NewModelCounts()},
	}

	m, err := BucketMatrix(models.PeriodDay, stats)
	require.NoError(t, err)

	assert.Equal(t, "$0.00", m.Rows[0][5])
	assert.Equal(t, "$0.01", m.Totals[5])
	assert.Equal(t, "2,000", m.Totals[2])
	assert.Equal(t, "N/A", m.Rows[0][6])
}

func TestBucketMatrix_TotalsSaturate(t *testing.T) {
	stats := []models.BucketStats{
		{Key: "2026-01-01", Label: "2026-01-01", EventCount: 1, TotalTokens: math.MaxInt64, Models: models.NewModelCounts()},
		{Key: "2026-01-02", Label: "2026-01-02", EventCount: 1, TotalTokens: math.MaxInt64, Models: models.NewModelCounts()},
	}

	m, err := BucketMatrix(models.PeriodDay, stats)
	require.NoError(t, err)
	assert.Equal(t, "9,223,372,036,854,775,807", m.Totals[2])
}

func TestBreakdownMatrix_Scenario(t *testing.T) {
	m, err := BreakdownMatrix(usage.Breakdown(scenarioEvents()))
	require.NoError(t, err)

	assert.Equal(t, []string{"Model", "Events", "Total Tokens", "Cost", "Token %", "Cost %"}, m.Headers)
	require.Len(t, m.Rows, 2)
	assert.Equal(t, []string{"b", "1", "300", "$3.00", "75.0%", "75.0%"}, m.Rows[0])
	assert.Equal(t, []string{"a", "1", "100", "$1.00", "25.0%", "25.0%"}, m.Rows[1])
	assert.Equal(t, []string{"Total", "2", "400", "$4.00", "100.0%", "100.0%"}, m.Totals)
}

func TestEventMatrix(t *testing.T) {
	events := []models.UsageEvent{
		event(time.Date(2026, 1, 5, 9, 15, 30, 0, time.UTC), "gpt-5", 1200, 34, 0.01234),
	}

	m, err := EventMatrix(events)
	require.NoError(t, err)

	assert.Equal(t, []string{"09:15:30", "gpt-5", "usage", "1,200", "34", "1,234", "$0.0123"}, m.Rows[0])
	assert.Equal(t, []string{"Total", "", "", "1,200", "34", "1,234", "$0.0123"}, m.Totals)
}

func TestMatrices_EmptyInput(t *testing.T) {
	_, err := BucketMatrix(models.PeriodWeek, nil)
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = EventMatrix(nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = BreakdownMatrix(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBucketColumns_Title(t *testing.T) {
	assert.Equal(t, "Week", BucketColumns(models.PeriodWeek)[0].Title)
	assert.Equal(t, "Month", BucketColumns(models.PeriodMonth)[0].Title)
}
