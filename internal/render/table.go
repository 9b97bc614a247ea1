package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

// compactCellWidth bounds free-text cells in compact mode.
const compactCellWidth = 32

// TableString renders m as a bordered table with its totals row last.
// Numeric columns are right-aligned.
func TableString(m report.Matrix, opts Options) string {
	rows := make([][]string, 0, len(m.Rows)+1)
	for _, r := range m.Rows {
		rows = append(rows, fitRow(m, r, opts))
	}
	totalsRow := len(rows)
	if len(m.Totals) > 0 {
		rows = append(rows, fitRow(m, m.Totals, opts))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.TableBorderStyle).
		Headers(m.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			var s lipgloss.Style
			switch {
			case row == table.HeaderRow:
				s = styles.TableHeaderStyle
			case row == totalsRow:
				s = styles.TableTotalStyle
			default:
				s = styles.TableCellStyle
			}
			if col < len(m.Columns) && m.Columns[col].Kind.Summable() {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	if opts.Compact {
		t = t.BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderColumn(false)
	}
	if opts.Width > 0 {
		if w := lipgloss.Width(t.String()); w > opts.Width {
			t = t.Width(opts.Width)
		}
	}
	return t.String()
}

// Table writes m to w.
func Table(w io.Writer, m report.Matrix, opts Options) error {
	p := &printer{w: w}
	p.println(TableString(m, opts))
	return p.err
}

func fitRow(m report.Matrix, row []string, opts Options) []string {
	if !opts.Compact {
		return row
	}
	out := make([]string, len(row))
	for i, cell := range row {
		if i < len(m.Columns) && m.Columns[i].Kind == report.KindText {
			cell = ansi.Truncate(cell, compactCellWidth, "…")
		}
		out[i] = cell
	}
	return out
}
