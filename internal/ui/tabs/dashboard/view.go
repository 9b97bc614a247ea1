package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/render"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/ui/components"
	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

// View renders the overview tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.spinner.Centered(m.width, m.height)
	}

	m.viewport.SetContent(m.renderContent())
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderContent() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderBillingCard(),
		m.renderTodayCard(),
	)
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 40), 100)
}

func (m *Model) renderTitle() string {
	subtitle := "Billing cycle and spend"
	if email := m.state.Credentials().Email; email != "" {
		subtitle = email
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Cursor Usage"),
		styles.HelpStyle.Render(subtitle),
		"",
	)
}

func (m *Model) renderBillingCard() string {
	width := m.cardWidth()
	rows := []string{styles.CardTitleStyle.Render("Billing"), ""}

	b, err := m.state.Billing()
	switch {
	case b == nil && err != nil:
		rows = append(rows, styles.ErrorTextStyle.Render("Billing unavailable: "+err.Error()))
	case b == nil:
		rows = append(rows, styles.HelpStyle.Render("No billing data available"))
	default:
		rows = append(rows, m.billingRows(b, width-4)...)
		if err != nil {
			rows = append(rows, "", styles.WarningTextStyle.Render("Last refresh failed: "+err.Error()))
		}
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) billingRows(b *models.BillingSummary, width int) []string {
	membership := b.MembershipType
	if membership == "" {
		membership = "N/A"
	}
	rows := []string{field("Membership", membership)}

	start, end := b.CycleStart(), b.CycleEnd()
	if !start.IsZero() && !end.IsZero() {
		rows = append(rows,
			field("Cycle", start.Format(render.CycleDateLayout)+" - "+end.Format(render.CycleDateLayout)),
			components.CycleBar(start, end, m.now(), width),
		)
	}
	if b.IsUnlimited {
		rows = append(rows, field("Limit", "Unlimited"))
	}

	if plan := b.IndividualUsage.Plan; plan != nil {
		rows = append(rows, "",
			m.usageBar.View(b.PlanPercentUsed(), "Plan", width),
			styles.HelpStyle.Render(fmt.Sprintf("%s / %s used, %s remaining (%s included, %s bonus)",
				humanize.Ftoa(plan.Used), humanize.Ftoa(plan.Limit), humanize.Ftoa(plan.Remaining),
				humanize.Ftoa(plan.Breakdown.Included), humanize.Ftoa(plan.Breakdown.Bonus))),
		)
	}

	if od := b.IndividualUsage.OnDemand; od != nil && od.Enabled {
		rows = append(rows, "")
		if od.Limit != nil && *od.Limit > 0 {
			rows = append(rows, m.usageBar.View(od.Used / *od.Limit * 100, "On-demand", width))
		}
		used := humanize.Ftoa(od.Used)
		if od.Limit != nil {
			used += " / " + humanize.Ftoa(*od.Limit)
		}
		rows = append(rows, field("On-demand used", used))
	}

	for _, msg := range []string{b.AutoModelSelectedDisplayMessage, b.NamedModelSelectedDisplayMessage} {
		if msg != "" {
			rows = append(rows, "", styles.InfoTextStyle.Render(msg))
		}
	}
	return rows
}

func (m *Model) renderTodayCard() string {
	width := m.cardWidth()
	rows := []string{styles.CardTitleStyle.Render("Today"), ""}

	spend, budget := m.state.TodaySpend(), m.state.DailyBudget()
	if budget > 0 {
		rows = append(rows,
			m.usageBar.View(spend/budget*100, "Daily budget", width-4),
			styles.HelpStyle.Render(fmt.Sprintf("Spent %s of %s",
				report.FormatCurrency(spend, 2), report.FormatCurrency(budget, 2))),
		)
	} else {
		rows = append(rows, field("Spent", report.FormatCurrency(spend, 2)))
	}

	r, err := m.state.Report(models.PeriodDay)
	switch {
	case r != nil:
		tokens := make([]float64, len(r.Stats))
		for i, s := range r.Stats {
			tokens[i] = float64(s.TotalTokens)
		}
		rows = append(rows, "",
			field(fmt.Sprintf("Last %d days", len(r.Stats)), fmt.Sprintf("%s tokens, %s",
				report.FormatCount(r.Summary.TotalTokens), report.FormatCurrency(r.Summary.TotalCost, 2))),
			components.RenderSparkline(tokens, width-4),
		)
	case err != nil:
		rows = append(rows, "", styles.HelpStyle.Render(err.Error()))
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func field(label, value string) string {
	return styles.LabelStyle.Width(16).Render(label+":") + " " + styles.ValueStyle.Render(value)
}
