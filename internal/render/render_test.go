package render

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/usage"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func at(day, hour int) time.Time {
	return time.Date(2026, 1, day, hour, 0, 0, 0, time.UTC)
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

func dailyReport(t *testing.T) *report.Report {
	t.Helper()
	events := []models.UsageEvent{
		event(at(5, 1), "a", 100, 0, 1.00),
		event(at(5, 23), "b", 0, 300, 3.00),
		event(at(6, 9), "a", 1000, 234, 0.5),
	}
	r, err := report.Build(models.PeriodDay, usage.DailyWindow(at(6, 12), 1), events, true)
	require.NoError(t, err)
	return r
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTableString(t *testing.T) {
	r := dailyReport(t)

	out := TableString(r.Table, Options{})

	for _, want := range []string{"Date", "Total Tokens", "2026-01-05", "2026-01-06", "1,234", "$4.00", "$4.50", "Total", "1,634"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[")

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[len(lines)-2], "Total", "totals row is last")
}

func TestTableString_RightAlignsNumbers(t *testing.T) {
	m := report.Matrix{
		Columns: []report.Column{{Title: "Model", Kind: report.KindLabel}, {Title: "Events", Kind: report.KindCount}},
		Headers: []string{"Model", "Events"},
		Rows:    [][]string{{"a", "1"}, {"b", "1,000"}},
	}

	out := TableString(m, Options{})

	assert.Contains(t, out, "     1 ")
	assert.Contains(t, out, " 1,000 ")
}

func TestTableString_Compact(t *testing.T) {
	long := strings.Repeat("model-name ", 8)
	m := report.Matrix{
		Columns: []report.Column{{Title: "Day", Kind: report.KindLabel}, {Title: "Models", Kind: report.KindText}},
		Headers: []string{"Day", "Models"},
		Rows:    [][]string{{"2026-01-05", long}},
	}

	full := TableString(m, Options{})
	compact := TableString(m, Options{Compact: true})

	assert.Contains(t, full, strings.TrimSpace(long))
	assert.NotContains(t, compact, strings.TrimSpace(long))
	assert.Contains(t, compact, "…")
	assert.NotContains(t, compact, "┌")
	assert.Less(t, lipgloss.Width(compact), lipgloss.Width(full))
}

func TestTable_WriteError(t *testing.T) {
	r := dailyReport(t)
	assert.Error(t, Table(failingWriter{}, r.Table, Options{}))
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Banner(&buf, "DAILY USAGE REPORT (Last 1 days)", 20))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Repeat("=", 20), lines[0])
	assert.Equal(t, "DAILY USAGE REPORT (Last 1 days)", lines[1])
	assert.Equal(t, lines[0], lines[2])
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	s := report.Summary{TotalEvents: 1200, TotalTokens: 1234567, TotalCost: 12.5}

	require.NoError(t, Summary(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "Total Events: 1,200")
	assert.Contains(t, out, "Total Tokens: 1,234,567")
	assert.Contains(t, out, "Total Cost: $12.50")
	assert.NotContains(t, out, "Average per month")
}

func TestSummary_MonthlyAverage(t *testing.T) {
	var buf bytes.Buffer
	s := report.Summary{
		TotalEvents: 2,
		TotalTokens: 3000,
		TotalCost:   3,
		Average:     &report.Average{Tokens: 1500, Cost: 1.5},
	}

	require.NoError(t, Summary(&buf, s))
	assert.Contains(t, buf.String(), "Average per month: 1,500 tokens, $1.50")
}

func TestReport(t *testing.T) {
	r := dailyReport(t)

	t.Run("Plain", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Report(&buf, r, ReportOptions{Title: "DAILY USAGE REPORT (Last 1 days)"}))

		out := buf.String()
		assert.Contains(t, out, "DAILY USAGE REPORT (Last 1 days)")
		assert.Contains(t, out, "Total Cost: $4.50")
		assert.NotContains(t, out, BreakdownTitle)
		assert.NotContains(t, out, "Total tokens per bucket")
	})

	t.Run("BreakdownAndChart", func(t *testing.T) {
		var buf bytes.Buffer
		opts := ReportOptions{Title: "DAILY", Breakdown: true, Chart: true}
		require.NoError(t, Report(&buf, r, opts))

		out := buf.String()
		assert.Contains(t, out, BreakdownTitle)
		assert.Contains(t, out, "Token %")
		assert.Contains(t, out, "100.0%")
		assert.Contains(t, out, "Total tokens per bucket")
		assert.Less(t, strings.Index(out, BreakdownTitle), strings.Index(out, "Total Events"))
	})

	t.Run("WriteError", func(t *testing.T) {
		assert.Error(t, Report(failingWriter{}, r, ReportOptions{Title: "X"}))
	})
}

func TestLineChart(t *testing.T) {
	assert.Equal(t, NoChartData, LineChart(nil, 40, 5, "x"))

	out := LineChart([]float64{1, 5, 3}, 40, 5, "tokens")
	assert.Contains(t, out, "tokens")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 5)

	single := LineChart([]float64{7}, 5, 1, "one")
	assert.Contains(t, single, "one")
}

func TestChart(t *testing.T) {
	stats := []models.BucketStats{{TotalTokens: 10, TotalCost: 1}, {TotalTokens: 30, TotalCost: 2}}

	assert.Contains(t, Chart(stats, 40, 5), "Total tokens per bucket")
	assert.Contains(t, CostChart(stats, 40, 5), "Cost per bucket")
	assert.Equal(t, NoChartData, Chart(nil, 40, 5))
}

func TestTerminalWidth_NotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.False(t, IsTerminal(f))
	assert.Equal(t, DefaultWidth, TerminalWidth(f))
}

func TestWarning(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Warning(&buf, "No usage events found for this period"))
	assert.Equal(t, "No usage events found for this period\n", buf.String())
}
