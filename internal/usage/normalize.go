// Package usage implements the aggregation core: event normalization,
// time bucketing, per-bucket statistics and per-model breakdowns.
//
// Everything here is pure and sequential. Callers hand in a fully
// materialized event slice and get fresh values back; nothing is cached
// between calls.
package usage

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/cursor-usage/internal/models"
)

// EventsField is the response field holding the raw event array.
const EventsField = "usageEventsDisplay"

// Normalize converts one loosely-typed event record into a UsageEvent.
// It never fails: missing or malformed fields fall back to defaults.
// now is used when the record carries no usable timestamp.
func Normalize(raw map[string]any, now time.Time) models.UsageEvent {
	tokenUsage, _ := raw["tokenUsage"].(map[string]any)

	ts := toInt64(raw["timestamp"])
	if ts == 0 {
		ts = now.UnixMilli()
	}

	model := toString(raw["model"])
	if model == "" {
		model = models.UnknownModel
	}

	id := toString(raw["id"])
	if id == "" {
		id = strconv.FormatInt(ts, 10) + "-" + model
	}

	maxMode, _ := raw["maxMode"].(bool)

	return models.NewUsageEvent(models.EventFields{
		ID:               id,
		Model:            model,
		Kind:             toString(raw["kind"]),
		Type:             toString(raw["type"]),
		Timestamp:        ts,
		InputTokens:      toInt64(tokenUsage["inputTokens"]),
		OutputTokens:     toInt64(tokenUsage["outputTokens"]),
		CacheWriteTokens: toInt64(tokenUsage["cacheWriteTokens"]),
		CacheReadTokens:  toInt64(tokenUsage["cacheReadTokens"]),
		Cost:             toFloat(tokenUsage["totalCents"]) / 100,
		MaxMode:          maxMode,
	})
}

// NormalizeAll normalizes every object in raws, skipping non-object entries.
func NormalizeAll(raws []any, now time.Time) []models.UsageEvent {
	events := make([]models.UsageEvent, 0, len(raws))
	for _, r := range raws {
		obj, ok := r.(map[string]any)
		if !ok {
			continue
		}
		events = append(events, Normalize(obj, now))
	}
	return events
}

// ParseEvents decodes an events response body. A body that is not JSON, or
// whose event array is missing or not an array, yields zero events.
func ParseEvents(payload []byte, now time.Time) []models.UsageEvent {
	var body map[string]any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return []models.UsageEvent{}
	}
	raws, ok := body[EventsField].([]any)
	if !ok {
		return []models.UsageEvent{}
	}
	return NormalizeAll(raws, now)
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

func toFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toInt64(v any) int64 {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	f := toFloat(v)
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0
	}
	return int64(math.Trunc(f))
}
