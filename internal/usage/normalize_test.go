package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/cursor-usage/internal/models"
)

var fixedNow = time.Date(2026, 1, 14, 10, 30, 0, 0, time.UTC)

func TestNormalize_FullRecord(t *testing.T) {
	raw := map[string]any{
		"id":        "evt-42",
		"timestamp": "1767571200000",
		"model":     "claude-4-sonnet",
		"kind":      "USAGE_EVENT_KIND_INCLUDED_IN_PRO",
		"maxMode":   true,
		"tokenUsage": map[string]any{
			"inputTokens":      float64(1200),
			"outputTokens":     float64(300),
			"cacheWriteTokens": float64(50),
			"cacheReadTokens":  float64(4000),
			"totalCents":       float64(12.5),
		},
	}

	e := Normalize(raw, fixedNow)

	assert.Equal(t, "evt-42", e.ID())
	assert.Equal(t, int64(1767571200000), e.Timestamp())
	assert.Equal(t, "claude-4-sonnet", e.Model())
	assert.Equal(t, "USAGE_EVENT_KIND_INCLUDED_IN_PRO", e.Kind())
	assert.Equal(t, models.UsageType, e.Type())
	assert.True(t, e.MaxMode())
	assert.Equal(t, int64(5550), e.Tokens())
	assert.InDelta(t, 0.125, e.Cost(), 1e-12)
}

func TestNormalize_MissingFields(t *testing.T) {
	e := Normalize(map[string]any{}, fixedNow)

	assert.Equal(t, models.UnknownModel, e.Model())
	assert.Equal(t, models.UnknownKind, e.Kind())
	assert.Equal(t, fixedNow.UnixMilli(), e.Timestamp())
	assert.Equal(t, int64(0), e.Tokens())
	assert.Equal(t, 0.0, e.Cost())
	assert.False(t, e.MaxMode())
	assert.Equal(t, "1768386600000-unknown", e.ID())
}

func TestNormalize_MissingTotalCents(t *testing.T) {
	raw := map[string]any{
		"model":      "gpt-5",
		"timestamp":  float64(1767571200000),
		"tokenUsage": map[string]any{"inputTokens": float64(10)},
	}

	e := Normalize(raw, fixedNow)

	assert.Equal(t, 0.0, e.Cost())
	assert.Equal(t, int64(10), e.Tokens())
}

func TestNormalize_MalformedNumbers(t *testing.T) {
	tests := []struct {
		name string
		val  any
	}{
		{"Nil", nil},
		{"Garbage", "lots"},
		{"NaNString", "NaN"},
		{"Infinity", "Infinity"},
		{"Bool", true},
		{"Object", map[string]any{"x": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{
				"tokenUsage": map[string]any{
					"inputTokens":      tt.val,
					"outputTokens":     tt.val,
					"cacheWriteTokens": tt.val,
					"cacheReadTokens":  tt.val,
					"totalCents":       tt.val,
				},
			}
			e := Normalize(raw, fixedNow)

			assert.Equal(t, int64(0), e.Tokens())
			assert.Equal(t, 0.0, e.Cost())
			assert.Equal(t,
				e.InputTokens()+e.OutputTokens()+e.CacheWriteTokens()+e.CacheReadTokens(),
				e.Tokens())
		})
	}
}

func TestNormalize_OversizedTokensStayNonNegative(t *testing.T) {
	e := Normalize(map[string]any{
		"timestamp": "1767571200000",
		"tokenUsage": map[string]any{
			"inputTokens":  "9000000000000000000",
			"outputTokens": "9000000000000000000",
		},
	}, fixedNow)

	assert.Equal(t, models.MaxTokens, e.InputTokens())
	assert.Equal(t, models.MaxTokens, e.OutputTokens())
	assert.Equal(t, 2*models.MaxTokens, e.Tokens())
	assert.Positive(t, e.Tokens())
}

func TestNormalize_TokenUsageNotObject(t *testing.T) {
	e := Normalize(map[string]any{"tokenUsage": "oops", "model": "m"}, fixedNow)
	assert.Equal(t, int64(0), e.Tokens())
	assert.Equal(t, "m", e.Model())
}

func TestParseEvents(t *testing.T) {
	payload := []byte(`{
		"totalUsageEventsCount": 3,
		"usageEventsDisplay": [
			{"timestamp": "1767571200000", "model": "a", "tokenUsage": {"inputTokens": 100, "totalCents": 100}},
			"not-an-object",
			{"timestamp": "1767574800000", "model": "b", "tokenUsage": {"outputTokens": 300, "totalCents": 300}}
		]
	}`)

	events := ParseEvents(payload, fixedNow)

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Model())
	assert.Equal(t, int64(100), events[0].Tokens())
	assert.InDelta(t, 1.0, events[0].Cost(), 1e-12)
	assert.Equal(t, "b", events[1].Model())
	assert.InDelta(t, 3.0, events[1].Cost(), 1e-12)
}

func TestParseEvents_NoEvents(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"MissingField", `{"totalUsageEventsCount": 0}`},
		{"NotArray", `{"usageEventsDisplay": {"a": 1}}`},
		{"Null", `{"usageEventsDisplay": null}`},
		{"InvalidJSON", `{{{`},
		{"Empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := ParseEvents([]byte(tt.payload), fixedNow)
			assert.NotNil(t, events)
			assert.Empty(t, events)
		})
	}
}
