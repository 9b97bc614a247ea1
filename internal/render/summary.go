package render

import (
	"fmt"
	"io"

	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

// BreakdownTitle heads the per-model table.
const BreakdownTitle = "PER-MODEL BREAKDOWN"

// ReportOptions selects the optional sections of a printed report.
type ReportOptions struct {
	Options
	Title     string
	Breakdown bool
	Chart     bool
}

// Banner writes title between two rules of the given width.
func Banner(w io.Writer, title string, width int) error {
	p := &printer{w: w}
	banner(p, title, width)
	return p.err
}

func banner(p *printer, title string, width int) {
	r := styles.RuleStyle.Render(rule(width))
	p.println("")
	p.println(r)
	p.println(styles.TitleStyle.Render(title))
	p.println(r)
}

// Summary writes the totals block under a report.
func Summary(w io.Writer, s report.Summary) error {
	p := &printer{w: w}
	summary(p, s)
	return p.err
}

func summary(p *printer, s report.Summary) {
	p.println("")
	p.println(field("Total Events", report.FormatCount(int64(s.TotalEvents))))
	p.println(field("Total Tokens", report.FormatCount(s.TotalTokens)))
	p.println(field("Total Cost", report.FormatCurrency(s.TotalCost, 2)))
	if s.Average != nil {
		p.println(field("Average per month", fmt.Sprintf("%s tokens, %s",
			report.FormatCount(s.Average.Tokens),
			report.FormatCurrency(s.Average.Cost, 2))))
	}
}

func field(name, value string) string {
	return styles.LabelStyle.Render(name+":") + " " + styles.ValueStyle.Render(value)
}

// Report writes a full report: banner, table, optional breakdown and chart,
// then the summary block.
func Report(w io.Writer, r *report.Report, opts ReportOptions) error {
	p := &printer{w: w}
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}

	banner(p, opts.Title, width)
	p.println(TableString(r.Table, opts.Options))

	if opts.Breakdown && r.Breakdown != nil {
		banner(p, BreakdownTitle, width)
		p.println(TableString(*r.Breakdown, opts.Options))
	}
	if opts.Chart && len(r.Stats) > 0 {
		p.println("")
		p.println(Chart(r.Stats, width-10, chartHeight))
	}

	summary(p, r.Summary)
	return p.err
}
