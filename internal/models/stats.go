// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ModelCount is one entry of a ModelCounts enumeration.
type ModelCount struct {
	Model string `json:"model" yaml:"model"`
	Count int    `json:"count" yaml:"count"`
}

// ModelCounts maps model name to occurrence count and enumerates
// in first-seen order.
type ModelCounts struct {
	m *orderedmap.OrderedMap[string, int]
}

// NewModelCounts returns an empty ModelCounts.
func NewModelCounts() *ModelCounts {
	return &ModelCounts{m: orderedmap.New[string, int]()}
}

// Inc increments the count for model, appending it if unseen.
func (c *ModelCounts) Inc(model string) {
	if c.m == nil {
		c.m = orderedmap.New[string, int]()
	}
	n, _ := c.m.Get(model)
	c.m.Set(model, n+1)
}

// Get returns the count for model.
func (c *ModelCounts) Get(model string) int {
	if c == nil || c.m == nil {
		return 0
	}
	n, _ := c.m.Get(model)
	return n
}

// Len returns the number of distinct models.
func (c *ModelCounts) Len() int {
	if c == nil || c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Each calls fn for every model in first-seen order.
func (c *ModelCounts) Each(fn func(model string, count int)) {
	if c == nil || c.m == nil {
		return
	}
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Entries returns the counts as a slice in first-seen order.
func (c *ModelCounts) Entries() []ModelCount {
	out := make([]ModelCount, 0, c.Len())
	c.Each(func(model string, count int) {
		out = append(out, ModelCount{Model: model, Count: count})
	})
	return out
}

// String renders "model(count), model(count)" or "N/A" when empty.
func (c *ModelCounts) String() string {
	if c.Len() == 0 {
		return "N/A"
	}
	parts := make([]string, 0, c.Len())
	c.Each(func(model string, count int) {
		parts = append(parts, fmt.Sprintf("%s(%d)", model, count))
	})
	return strings.Join(parts, ", ")
}

// MarshalJSON encodes the counts as an ordered array.
func (c *ModelCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Entries())
}

// MarshalYAML encodes the counts as an ordered sequence.
func (c *ModelCounts) MarshalYAML() (any, error) {
	return c.Entries(), nil
}

// BucketStats summarizes the events of one time bucket.
type BucketStats struct {
	Key              string
	Label            string
	EventCount       int
	TotalTokens      int64
	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64
	TotalCost        float64
	Models           *ModelCounts
}

// ModelBreakdownEntry aggregates one model across a whole window.
type ModelBreakdownEntry struct {
	Model        string
	Count        int
	TotalTokens  int64
	InputTokens  int64
	OutputTokens int64
	TotalCost    float64
	TokenPercent float64
	CostPercent  float64
}
