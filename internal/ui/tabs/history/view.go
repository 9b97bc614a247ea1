package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/cursor-usage/internal/render"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/ui/components"
	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

// compactBelow switches tables to the borderless layout on narrow terminals.
const compactBelow = 100

// View renders the usage tab.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}

	r, err := m.state.Report(m.period)
	switch {
	case m.state.IsInitialLoading():
		sections = append(sections, styles.HelpStyle.Render("Loading usage data..."))
	case errors.Is(err, report.ErrNoData) || (r == nil && err == nil):
		sections = append(sections, styles.HelpStyle.Render(
			fmt.Sprintf("No usage in the last %s.", m.period.Unit())))
	case err != nil:
		sections = append(sections, styles.ErrorTextStyle.Render("Error:")+" "+err.Error())
	default:
		sections = append(sections, m.renderReport(r)...)
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderHeader() string {
	names := []string{"Daily", "Weekly", "Monthly"}
	activeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)
	inactiveStyle := activeStyle.
		Foreground(styles.TextMuted).
		Bold(false).
		BorderForeground(styles.Subtle)

	selectors := make([]string, 0, len(periods))
	for i, p := range periods {
		label := fmt.Sprintf("[%s] %s", p.String()[:1], names[i])
		if p == m.period {
			selectors = append(selectors, activeStyle.Render(label))
		} else {
			selectors = append(selectors, inactiveStyle.Render(label))
		}
	}

	title := styles.TitleStyle.Render("Usage")
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, append([]string{title, "  "}, selectors...)...),
		"",
	)
}

func (m *Model) renderReport(r *report.Report) []string {
	width := max(m.width-6, 40)
	opts := render.Options{Width: width, Compact: m.width < compactBelow}

	w := r.Window
	sections := []string{
		styles.SubTitleStyle.Render(fmt.Sprintf("%s - %s (%d days)",
			w.Start.Format(render.CycleDateLayout), w.End.Format(render.CycleDateLayout), w.Days())),
		render.TableString(r.Table, opts),
		m.renderTotals(r.Summary),
	}

	if m.showChart && len(r.Stats) > 0 {
		tokens := make([]float64, len(r.Stats))
		for i, s := range r.Stats {
			tokens[i] = float64(s.TotalTokens)
		}
		chart := components.RenderLineChart(tokens, max(width-12, 30), 8,
			"Total tokens per "+strings.TrimSuffix(m.period.Unit(), "s"), asciigraph.Blue)
		sections = append(sections, "", chart)
	}

	if m.showBreakdown && r.Breakdown != nil {
		sections = append(sections, "",
			styles.CardTitleStyle.Render(render.BreakdownTitle),
			render.TableString(*r.Breakdown, opts),
		)
		if rows := r.Summary.Breakdown; len(rows) > 0 {
			costs := make([]float64, len(rows))
			labels := make([]string, len(rows))
			for i, row := range rows {
				costs[i] = row.Cost
				labels[i] = row.Model
			}
			sections = append(sections, "",
				components.RenderBarChart(costs, labels, width, func(v float64) string {
					return report.FormatCurrency(v, 2)
				}),
			)
		}
	}
	return sections
}

func (m *Model) renderTotals(s report.Summary) string {
	parts := []string{
		fmt.Sprintf("%s events", report.FormatCount(int64(s.TotalEvents))),
		fmt.Sprintf("%s tokens", report.FormatCount(s.TotalTokens)),
		report.FormatCurrency(s.TotalCost, 2),
	}
	if s.Average != nil {
		parts = append(parts, fmt.Sprintf("avg %s tokens, %s per %s",
			report.FormatCount(s.Average.Tokens), report.FormatCurrency(s.Average.Cost, 2),
			strings.TrimSuffix(m.period.Unit(), "s")))
	}
	return styles.HelpStyle.Render(strings.Join(parts, " · "))
}
