package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/ui/styles"
	"github.com/j-veylop/cursor-usage/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderAccountCard(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Account, configuration and build information")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func card(width int, title string, rows ...string) string {
	body := append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, body...))
}

func row(label, value string) string {
	labelStyle := lipgloss.NewStyle().Width(20).Foreground(styles.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func (m *Model) renderAccountCard() string {
	creds := m.state.Credentials()
	membership := creds.Membership
	if b, _ := m.state.Billing(); b != nil && b.MembershipType != "" {
		membership = b.MembershipType
	}

	var updated string
	if t := m.state.LastUpdated(); !t.IsZero() {
		updated = t.Format("15:04:05")
	}

	return card(m.cardWidth(), "Account",
		row("Email", orNA(creds.Email)),
		row("Membership", orNA(membership)),
		row("Last Updated", orNA(updated)),
	)
}

func (m *Model) renderConfigCard() string {
	if m.config == nil {
		return card(m.cardWidth(), "Configuration", styles.HelpStyle.Render("Configuration not loaded"))
	}
	c := m.config

	budget := "Off"
	if c.DailyBudget > 0 {
		budget = report.FormatCurrency(c.DailyBudget, 2)
	}

	return card(m.cardWidth(), "Configuration",
		row("Data Directory", c.DataDir),
		row("State Database", c.DatabasePath),
		row("API", c.APIBaseURL),
		row("Refresh Interval", c.RefreshInterval.String()),
		row("Request Timeout", c.RequestTimeout.String()),
		row("Concurrency", fmt.Sprintf("%d requests, %g/s", c.MaxConcurrency, c.RequestsPerSecond)),
		row("Page Size", fmt.Sprint(c.PageSize)),
		row("Daily Budget", budget),
	)
}

func (m *Model) renderAboutCard() string {
	return card(m.cardWidth(), "About cursor-usage",
		row("Version", version.GetVersion()),
		row("Build Date", version.GetDate()),
		row("Git Commit", version.GetCommit()),
		row("Go Version", runtime.Version()),
		row("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)
}
