package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/usage"
)

func sampleSummary(t *testing.T) report.Summary {
	t.Helper()
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	events := []models.UsageEvent{
		models.NewUsageEvent(models.EventFields{Timestamp: day.Add(time.Hour).UnixMilli(), Model: "a", InputTokens: 100, Cost: 1}),
		models.NewUsageEvent(models.EventFields{Timestamp: day.Add(23 * time.Hour).UnixMilli(), Model: "b", OutputTokens: 300, Cost: 3}),
	}
	r, err := report.Build(models.PeriodDay, usage.DayWindow(day), events, true)
	require.NoError(t, err)
	return r.Summary
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleSummary(t), FormatJSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "daily", got["period"])
	assert.Equal(t, 2.0, got["totalEvents"])
	assert.Equal(t, 400.0, got["totalTokens"])
	assert.Equal(t, 4.0, got["totalCost"])
	assert.Len(t, got["data"], 1)
	assert.Len(t, got["breakdown"], 2)
	assert.Contains(t, buf.String(), "\n  \"period\"")
}

func TestWrite_DetailRowsUnderData(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	events := []models.UsageEvent{
		models.NewUsageEvent(models.EventFields{ID: "ev-1", Timestamp: day.Add(time.Hour).UnixMilli(), Model: "a", InputTokens: 10, Cost: 0.5}),
	}
	summary, err := report.BuildEventSummary(usage.DayWindow(day), events, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, summary, FormatYAML))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "detail", got["period"])
	assert.NotContains(t, got, "events")

	data, ok := got["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "ev-1", data[0].(map[string]any)["id"])
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleSummary(t), FormatYAML))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "daily", got["period"])
	assert.Equal(t, 400, got["totalTokens"])

	data, ok := got["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	row := data[0].(map[string]any)
	assert.Equal(t, "2026-01-05", row["key"])

	modelList := row["models"].([]any)
	require.Len(t, modelList, 2)
	assert.Equal(t, "a", modelList[0].(map[string]any)["model"])
}

func TestWrite_Deterministic(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(f.String(), func(t *testing.T) {
			var a, b bytes.Buffer
			require.NoError(t, Write(&a, sampleSummary(t), f))
			require.NoError(t, Write(&b, sampleSummary(t), f))
			assert.Equal(t, a.String(), b.String())
		})
	}
}

func TestWriteBilling(t *testing.T) {
	limit := 20.0
	summary := &models.BillingSummary{
		MembershipType: "pro",
		IndividualUsage: models.IndividualUsage{
			OnDemand: &models.OnDemandUsage{Enabled: true, Used: 3.5, Limit: &limit},
		},
		TeamUsage: json.RawMessage(`{"x":1}`),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBilling(&buf, summary, FormatYAML))
	assert.Contains(t, buf.String(), "membershipType: pro")
	assert.NotContains(t, buf.String(), "teamUsage")

	buf.Reset()
	require.NoError(t, WriteBilling(&buf, summary, FormatJSON))
	assert.Contains(t, buf.String(), `"membershipType": "pro"`)
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, report.Summary{}, Format(42))
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_WriterError(t *testing.T) {
	assert.Error(t, Write(failingWriter{}, sampleSummary(t), FormatJSON))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{" yml ", FormatYAML, false},
		{"csv", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
