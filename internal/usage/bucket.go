package usage

import (
	"slices"
	"time"

	"github.com/j-veylop/cursor-usage/internal/models"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
	weekMillis  = int64(7 * 24 * time.Hour / time.Millisecond)
)

// Bucketer assigns events to day, week or month buckets.
//
// Week buckets are rolling 7-day windows counted back from WeekAnchor, the
// exclusive end of the report window. Every week key is the ISO date of its
// window's first day, so keys sort chronologically as strings.
type Bucketer struct {
	Period     models.Period
	WeekAnchor time.Time
}

// Buckets is the result of a bucketing pass.
type Buckets struct {
	order  []string
	labels map[string]string
	events map[string][]models.UsageEvent
}

// Key returns the bucket key and display label for an event time.
func (b Bucketer) Key(t time.Time) (key, label string) {
	t = t.UTC()
	switch b.Period {
	case models.PeriodMonth:
		return t.Format(monthLayout), t.Format("January 2006")
	case models.PeriodWeek:
		start := b.weekStart(t)
		end := start.AddDate(0, 0, 6)
		return start.Format(dayLayout), start.Format(dayLayout) + " - " + end.Format(dayLayout)
	default:
		k := t.Format(dayLayout)
		return k, k
	}
}

func (b Bucketer) weekStart(t time.Time) time.Time {
	if b.WeekAnchor.IsZero() {
		// No anchor: fall back to Monday-aligned weeks.
		offset := (int(t.Weekday()) + 6) % 7
		d := t.AddDate(0, 0, -offset)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	anchor := b.WeekAnchor.UnixMilli()
	idx := floorDiv(anchor-t.UnixMilli()-1, weekMillis)
	return time.UnixMilli(anchor - (idx+1)*weekMillis).UTC()
}

// Group partitions events into buckets. Events keep their arrival order
// within a bucket. No range filtering happens here; see FilterWindow.
func (b Bucketer) Group(events []models.UsageEvent) *Buckets {
	bs := &Buckets{
		labels: make(map[string]string),
		events: make(map[string][]models.UsageEvent),
	}
	for _, e := range events {
		key, label := b.Key(e.Time())
		if _, ok := bs.events[key]; !ok {
			bs.order = append(bs.order, key)
			bs.labels[key] = label
		}
		bs.events[key] = append(bs.events[key], e)
	}
	return bs
}

// Len returns the number of buckets.
func (bs *Buckets) Len() int { return len(bs.order) }

// Keys returns bucket keys in ascending chronological order.
func (bs *Buckets) Keys() []string {
	keys := slices.Clone(bs.order)
	slices.Sort(keys)
	return keys
}

// Events returns the events of one bucket in arrival order.
func (bs *Buckets) Events(key string) []models.UsageEvent {
	return bs.events[key]
}

// Label returns the display label of a bucket.
func (bs *Buckets) Label(key string) string {
	return bs.labels[key]
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
