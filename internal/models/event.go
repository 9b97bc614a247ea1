// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"math"
	"time"
)

// Default classification values for events missing them upstream.
const (
	UnknownModel = "unknown"
	UnknownKind  = "unknown"
	UsageType    = "usage"
)

// EventFields holds the raw inputs for building a UsageEvent.
type EventFields struct {
	ID               string
	Model            string
	Kind             string
	Type             string
	Timestamp        int64 // milliseconds since epoch, UTC
	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64
	Cost             float64 // dollars
	MaxMode          bool
}

// UsageEvent is a single normalized model invocation.
// It is immutable; NewUsageEvent is the only place Tokens is computed.
type UsageEvent struct {
	id               string
	model            string
	kind             string
	typ              string
	timestamp        int64
	inputTokens      int64
	outputTokens     int64
	cacheWriteTokens int64
	cacheReadTokens  int64
	tokens           int64
	cost             float64
	maxMode          bool
}

// NewUsageEvent builds an event, applying defaults and deriving the token total.
func NewUsageEvent(f EventFields) UsageEvent {
	e := UsageEvent{
		id:               f.ID,
		model:            f.Model,
		kind:             f.Kind,
		typ:              f.Type,
		timestamp:        f.Timestamp,
		inputTokens:      nonNegative(f.InputTokens),
		outputTokens:     nonNegative(f.OutputTokens),
		cacheWriteTokens: nonNegative(f.CacheWriteTokens),
		cacheReadTokens:  nonNegative(f.CacheReadTokens),
		cost:             finite(f.Cost),
		maxMode:          f.MaxMode,
	}
	if e.model == "" {
		e.model = UnknownModel
	}
	if e.kind == "" {
		e.kind = UnknownKind
	}
	if e.typ == "" {
		e.typ = UsageType
	}
	e.tokens = e.inputTokens + e.outputTokens + e.cacheWriteTokens + e.cacheReadTokens
	return e
}

// ID returns the event identifier.
func (e UsageEvent) ID() string { return e.id }

// Timestamp returns milliseconds since epoch.
func (e UsageEvent) Timestamp() int64 { return e.timestamp }

// Time returns the event time in UTC.
func (e UsageEvent) Time() time.Time { return time.UnixMilli(e.timestamp).UTC() }

// Model returns the model identifier.
func (e UsageEvent) Model() string { return e.model }

// Kind returns the upstream event kind.
func (e UsageEvent) Kind() string { return e.kind }

// Type returns the event type.
func (e UsageEvent) Type() string { return e.typ }

// InputTokens returns the prompt token count.
func (e UsageEvent) InputTokens() int64 { return e.inputTokens }

// OutputTokens returns the completion token count.
func (e UsageEvent) OutputTokens() int64 { return e.outputTokens }

// CacheWriteTokens returns the cache write token count.
func (e UsageEvent) CacheWriteTokens() int64 { return e.cacheWriteTokens }

// CacheReadTokens returns the cache read token count.
func (e UsageEvent) CacheReadTokens() int64 { return e.cacheReadTokens }

// Tokens returns the total token count.
func (e UsageEvent) Tokens() int64 { return e.tokens }

// Cost returns the event cost in dollars.
func (e UsageEvent) Cost() float64 { return e.cost }

// MaxMode reports whether the request ran in max mode.
func (e UsageEvent) MaxMode() bool { return e.maxMode }

type usageEventJSON struct {
	ID               string  `json:"id"`
	Time             string  `json:"time"`
	Timestamp        int64   `json:"timestamp"`
	Model            string  `json:"model"`
	Kind             string  `json:"kind"`
	Type             string  `json:"type"`
	InputTokens      int64   `json:"inputTokens"`
	OutputTokens     int64   `json:"outputTokens"`
	CacheWriteTokens int64   `json:"cacheWriteTokens"`
	CacheReadTokens  int64   `json:"cacheReadTokens"`
	Tokens           int64   `json:"tokens"`
	Cost             float64 `json:"cost"`
	MaxMode          bool    `json:"maxMode"`
}

// MarshalJSON implements json.Marshaler.
func (e UsageEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(usageEventJSON{
		ID:               e.id,
		Time:             e.Time().Format(time.RFC3339),
		Timestamp:        e.timestamp,
		Model:            e.model,
		Kind:             e.kind,
		Type:             e.typ,
		InputTokens:      e.inputTokens,
		OutputTokens:     e.outputTokens,
		CacheWriteTokens: e.cacheWriteTokens,
		CacheReadTokens:  e.cacheReadTokens,
		Tokens:           e.tokens,
		Cost:             e.cost,
		MaxMode:          e.maxMode,
	})
}

// MaxTokens caps a single token field so that the four fields of an event
// always sum without overflow.
const MaxTokens int64 = math.MaxInt64 / 4

// AddTokens returns a+b for non-negative counts, saturating at
// math.MaxInt64.
func AddTokens(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return min(n, MaxTokens)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
