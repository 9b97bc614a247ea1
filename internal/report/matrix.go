// Package report assembles aggregated usage into display-neutral tables
// and serializable summaries. It never produces color or box drawing;
// that belongs to internal/render.
package report

import (
	"errors"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ErrNoData signals that a window held no events and no report should be
// emitted. Callers surface it as a warning.
var ErrNoData = errors.New("no usage events found for this period")

// TotalLabel marks the first cell of the totals row.
const TotalLabel = "Total"

// Kind classifies a column for formatting and totals.
type Kind int

const (
	KindLabel Kind = iota
	KindCount
	KindCurrency
	KindPercent
	KindText
)

// Summable reports whether the totals row sums this column.
func (k Kind) Summable() bool {
	switch k {
	case KindCount, KindCurrency, KindPercent:
		return true
	default:
		return false
	}
}

// Column describes one report column. Decimals applies to currency and
// percent columns; zero selects the default (2 and 1 respectively).
type Column struct {
	Title    string
	Kind     Kind
	Decimals int
}

func (c Column) places() int32 {
	if c.Decimals > 0 {
		return int32(c.Decimals)
	}
	if c.Kind == KindPercent {
		return 1
	}
	return 2
}

// Matrix is a fully formatted table: headers, data rows and a totals row.
type Matrix struct {
	Columns []Column
	Headers []string
	Rows    [][]string
	Totals  []string
}

// cell carries the raw value behind a formatted string so totals are summed
// from numbers, not from display text.
type cell struct {
	text string
	n    int64
	f    float64
}

func label(s string) cell   { return cell{text: s} }
func count(n int64) cell    { return cell{n: n} }
func amount(f float64) cell { return cell{f: f} }

func (c Column) format(v cell) string {
	switch c.Kind {
	case KindCount:
		return FormatCount(v.n)
	case KindCurrency:
		return FormatCurrency(v.f, c.places())
	case KindPercent:
		return FormatPercent(v.f, c.places())
	default:
		return v.text
	}
}

func assemble(cols []Column, rows [][]cell) Matrix {
	m := Matrix{
		Columns: cols,
		Headers: make([]string, len(cols)),
		Rows:    make([][]string, 0, len(rows)),
		Totals:  make([]string, len(cols)),
	}
	for i, c := range cols {
		m.Headers[i] = c.Title
	}

	sums := make([]cell, len(cols))
	for _, row := range rows {
		out := make([]string, len(cols))
		for i, c := range cols {
			out[i] = c.format(row[i])
			sums[i].n = addCount(sums[i].n, row[i].n)
			sums[i].f += row[i].f
		}
		m.Rows = append(m.Rows, out)
	}

	for i, c := range cols {
		if c.Kind.Summable() {
			m.Totals[i] = c.format(sums[i])
		}
	}
	if len(cols) > 0 && !cols[0].Kind.Summable() {
		m.Totals[0] = TotalLabel
	}
	return m
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatCurrency renders dollars with a leading $ and a fixed number of
// decimal places, rounding half away from zero.
func FormatCurrency(v float64, places int32) string {
	return "$" + toDecimal(v).StringFixed(places)
}

// FormatPercent renders a percentage with a trailing %.
func FormatPercent(v float64, places int32) string {
	return toDecimal(v).StringFixed(places) + "%"
}

// Round rounds v to places decimal places, half away from zero.
func Round(v float64, places int32) float64 {
	return toDecimal(v).Round(places).InexactFloat64()
}

func toDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// addCount sums non-negative counts, saturating at math.MaxInt64.
func addCount(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
