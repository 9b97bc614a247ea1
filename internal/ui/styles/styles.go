// Package styles holds the lipgloss palette and styles shared by the
// report renderer and the dashboard.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Primary   = lipgloss.Color("#3B82F6")
	Secondary = lipgloss.Color("#A78BFA")
	Subtle    = lipgloss.Color("#5C6370")

	Success = lipgloss.Color("#22C55E")
	Error   = lipgloss.Color("#EF4444")
	Warning = lipgloss.Color("#EAB308")
	Info    = lipgloss.Color("#38BDF8")

	BgDark  = lipgloss.Color("#1E1E24")
	BgLight = lipgloss.Color("#2A2A33")

	TextPrimary   = lipgloss.Color("#E5E7EB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")

	ChartTokens = lipgloss.Color("#8B5CF6")
	ChartCost   = lipgloss.Color("#10B981")
)

// Headings and layout.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	SubTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Secondary)

	// RuleStyle draws the "=" rules around report banners.
	RuleStyle = lipgloss.NewStyle().Foreground(Subtle)

	DocStyle = lipgloss.NewStyle().Margin(1, 2).Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Padding(1, 2).
			MarginBottom(1)
	CardTitleStyle = TitleStyle.MarginBottom(1)
)

// Tab bar.
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextPrimary).
			Background(Primary).
			Padding(0, 2).
			MarginRight(1)
	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(TextSecondary).
				Background(BgLight).
				Padding(0, 2).
				MarginRight(1)
	TabNumberStyle = lipgloss.NewStyle().Foreground(Subtle)
)

// Notifications. Each variant shares the rounded border of the base.
var (
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)

	notificationBase = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 2).
				MarginBottom(1)

	NotificationSuccessStyle = notificationBase.BorderForeground(Success).Foreground(Success)
	NotificationErrorStyle   = notificationBase.BorderForeground(Error).Foreground(Error)
	NotificationWarningStyle = notificationBase.BorderForeground(Warning).Foreground(Warning)
	NotificationInfoStyle    = notificationBase.BorderForeground(Info).Foreground(Info)
)

// Help line and overlay.
var (
	HelpStyle          = lipgloss.NewStyle().Foreground(TextMuted)
	HelpKeyStyle       = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	HelpDescStyle      = lipgloss.NewStyle().Foreground(TextSecondary)
	HelpSeparatorStyle = lipgloss.NewStyle().Foreground(Subtle)
	HelpPanelStyle     = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(Primary).
				Background(BgDark).
				Padding(1, 3)
)

// Report tables and summary blocks.
var (
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).Padding(0, 1)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	TableTotalStyle  = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary).Padding(0, 1)
	TableBorderStyle = lipgloss.NewStyle().Foreground(Subtle)

	LabelStyle         = lipgloss.NewStyle().Foreground(TextSecondary)
	ValueStyle         = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	ProgressLabelStyle = LabelStyle.Width(12)

	ErrorTextStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningTextStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoTextStyle    = lipgloss.NewStyle().Foreground(Info)
)

// Consumed-percentage thresholds.
var (
	UsageLowStyle    = lipgloss.NewStyle().Foreground(Success)
	UsageMediumStyle = lipgloss.NewStyle().Foreground(Warning)
	UsageHighStyle   = lipgloss.NewStyle().Bold(true).Foreground(Error)
)

// GetUsageStyle picks the style for a consumed percentage: high from 80,
// medium from 50.
func GetUsageStyle(percent float64) lipgloss.Style {
	if percent >= 80 {
		return UsageHighStyle
	}
	if percent >= 50 {
		return UsageMediumStyle
	}
	return UsageLowStyle
}

// CenterBoth places content in the middle of a width x height box.
func CenterBoth(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
