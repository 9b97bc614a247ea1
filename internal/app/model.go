// Package app is the Bubble Tea program behind `cursor-usage tui`: the
// tab container, shared state, and the commands that talk to the services.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/services"
	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

// TabID indexes the tab slice.
type TabID int

const (
	// TabDashboard is the ID for the billing overview tab.
	TabDashboard TabID = iota
	// TabHistory is the ID for the usage reports tab.
	TabHistory
	TabInfo
)

var tabNames = []string{"Overview", "Usage", "Info"}

// String is the tab bar label.
func (t TabID) String() string {
	if int(t) >= 0 && int(t) < len(tabNames) {
		return tabNames[t]
	}
	return "Unknown"
}

// Tab is implemented by the Overview, Usage and Info screens.
type Tab interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View() string

	// SetSize receives the area left after the tab bar and footer.
	SetSize(width, height int)

	// ShortHelp and FullHelp feed the help overlay.
	ShortHelp() []key.Binding
	FullHelp() [][]key.Binding
}

// KeyMap holds the global bindings. Tabs add their own through FullHelp.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap binds 1-3 and tab/shift+tab for navigation, r to refetch and ? for help.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview")),
		Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "usage")),
		Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "info")),
		NextTab: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab/→", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab/←", "prev tab")),
		Refresh: key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp is what the footer shows.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles is the container chrome.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content lipgloss.Style
	Toast   lipgloss.Style
	Footer  lipgloss.Style

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles maps the shared palette onto the container's chrome.
func DefaultStyles() Styles {
	return Styles{
		TabBar: lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).BorderForeground(styles.Subtle),
		ActiveTab:   styles.ActiveTabStyle,
		InactiveTab: styles.InactiveTabStyle,

		NotificationSuccess: styles.NotificationSuccessStyle,
		NotificationError:   styles.NotificationErrorStyle,
		NotificationWarning: styles.NotificationWarningStyle,
		NotificationInfo:    styles.NotificationInfoStyle,

		Content: lipgloss.NewStyle().Padding(1, 2),
		Toast:   styles.ToastStyle,
		Footer:  styles.HelpStyle.Padding(0, 1),

		Title:     styles.TitleStyle,
		Subtle:    styles.HelpStyle,
		Highlight: lipgloss.NewStyle().Foreground(styles.Secondary).Bold(true),
	}
}

// Options configures the application model.
type Options struct {
	RefreshInterval time.Duration
	DailyBudget     float64
}

// Model is the root tea.Model. It owns the tab bar, toasts and help overlay
// and forwards everything else to the focused tab.
type Model struct {
	activeTab TabID
	tabs      []Tab

	state   *State
	backend Backend
	keymap  KeyMap
	styles  Styles
	opts    Options

	spinner spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool

	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model. backend may be nil in
// tests; nothing is loaded then.
func NewModel(backend Backend, opts Options) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	state := NewState()
	state.SetDailyBudget(opts.DailyBudget)
	if backend != nil {
		state.SetCredentials(backend.Credentials())
	}

	return &Model{
		activeTab: TabDashboard,
		tabs:      make([]Tab, len(tabNames)),
		state:     state,
		backend:   backend,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		opts:      opts,
		spinner:   s,
	}
}

// SetTabs installs the tab implementations in TabID order.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState exposes the shared state tabs render from.
func (m *Model) GetState() *State {
	return m.state
}

// GetActiveTab reports which tab has focus.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady is false until the first WindowSizeMsg arrives.
func (m *Model) IsReady() bool {
	return m.ready
}

// ShowingHelp reports whether the help overlay is open.
func (m *Model) ShowingHelp() bool {
	return m.showHelp
}

// Init starts the spinner, the first billing and usage fetch, and the
// service event subscription.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading usage...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.backend != nil {
		m.state.SetLoading(ResourceBilling, true)
		m.state.SetLoading(ResourceReports, true)
		cmds = append(cmds,
			subscribeToServicesCmd(m.backend),
			loadInitialData(m.backend),
			autoRefreshCmd(m.opts.RefreshInterval),
		)
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update routes global keys and app messages, then hands the rest to the
// focused tab.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateTabSizes()

	case tea.KeyMsg:
		if cmd := m.handleKeyMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.showHelp || isGlobalKey(m.keymap, msg) {
			return m, tea.Batch(cmds...)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func isGlobalKey(k KeyMap, msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Quit, k.Help, k.Tab1, k.Tab2, k.Tab3, k.NextTab, k.PrevTab, k.Refresh)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case AutoRefreshMsg:
		cmds = append(cmds, m.handleRefresh(RefreshMsg{Resource: "all"})...)
		cmds = append(cmds, autoRefreshCmd(m.opts.RefreshInterval))
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case BillingLoadedMsg:
		cmds = append(cmds, m.handleBillingLoaded(msg)...)
	case ReportsLoadedMsg:
		cmds = append(cmds, m.handleReportsLoaded(msg)...)
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingNotification("Refreshing...")
	case StopLoadingMsg:
		m.stopLoading(msg.Resource)
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(msg.Error.Error()))
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh(msg)...)
	case TabSwitchMsg:
		m.switchTab(msg.Tab)
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) stopLoading(resource string) {
	m.state.SetLoading(resource, false)
	if !m.state.loadingAnyExceptInitial() {
		m.state.SetLoading(ResourceInitial, false)
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleBillingLoaded(msg BillingLoadedMsg) []tea.Cmd {
	m.state.SetBilling(msg.Billing, msg.Error)
	m.stopLoading(ResourceBilling)
	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Failed to load billing: %v", msg.Error))}
	}
	return nil
}

func (m *Model) handleReportsLoaded(msg ReportsLoadedMsg) []tea.Cmd {
	m.state.SetReports(msg.Results)
	m.state.SetTodaySpend(msg.TodaySpend)
	m.stopLoading(ResourceReports)
	if err := reportsError(msg.Results); err != nil {
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Failed to build reports: %v", err))}
	}
	if len(msg.Results) > 0 && allEmpty(msg.Results) {
		return []tea.Cmd{notifyInfoCmd("No usage events in the reporting windows")}
	}
	return nil
}

func (m *Model) handleRefresh(msg RefreshMsg) []tea.Cmd {
	if m.backend == nil {
		return nil
	}

	var cmds []tea.Cmd
	if msg.Resource == "all" || msg.Resource == ResourceBilling {
		m.state.SetLoading(ResourceBilling, true)
		cmds = append(cmds, loadBillingCmd(m.backend))
	}
	if msg.Resource == "all" || msg.Resource == ResourceReports {
		m.state.SetLoading(ResourceReports, true)
		cmds = append(cmds, loadReportsCmd(m.backend))
	}
	if len(cmds) > 0 {
		m.state.SetLoadingNotification("Refreshing...")
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.CredentialsChangedEvent:
		if m.backend != nil {
			m.state.SetCredentials(m.backend.Credentials())
		}
		refresh := m.handleRefresh(RefreshMsg{Resource: "all"})
		return tea.Batch(append(refresh, notifySuccessCmd(fmt.Sprintf("Signed in as %s", e.Email)))...)

	case services.BudgetExceededEvent:
		return notifyWarningCmd(fmt.Sprintf("Daily budget reached: %s of %s",
			report.FormatCurrency(e.Spent, 2), report.FormatCurrency(e.Limit, 2)))

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}
	return nil
}

func (m *Model) switchTab(t TabID) {
	if int(t) < 0 || int(t) >= len(m.tabs) {
		return
	}
	m.activeTab = t
	m.updateTabSizes()
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	// navbar (2 lines) and footer (1 line)
	contentHeight := max(0, m.height-3)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

// handleKeyMsg handles global keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keymap.Escape):
		m.showHelp = false

	case m.showHelp:
		// Other keys are swallowed while help is open.

	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabDashboard)

	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabHistory)

	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabInfo)

	case key.Matches(msg, m.keymap.NextTab):
		m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))

	case key.Matches(msg, m.keymap.PrevTab):
		m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))

	case key.Matches(msg, m.keymap.Refresh):
		return tea.Batch(m.handleRefresh(RefreshMsg{Resource: "all"})...)
	}
	return nil
}

// View draws the tab bar, the focused tab and the footer, with the help
// panel or toasts layered on top.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.styles.Content.Render(m.styles.Subtle.Render("Nothing to show.")))
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	mainView := padLines(b.String(), m.height)

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if toasts := m.renderNotifications(); len(toasts) > 0 {
		return m.overlayToasts(mainView, toasts)
	}
	return mainView
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%s %s", styles.TabNumberStyle.Render(fmt.Sprint(i+1)), name)
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(label))
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return m.styles.TabBar.Width(m.width).Render(bar)
}

func (m *Model) renderFooter() string {
	sep := styles.HelpSeparatorStyle.Render(" · ")

	parts := []string{}
	if email := m.state.Credentials().Email; email != "" {
		parts = append(parts, styles.HelpDescStyle.Render(email))
	}
	if !m.state.LastUpdated().IsZero() {
		parts = append(parts, styles.HelpDescStyle.Render(updatedAgo(m.state.TimeSinceUpdate())))
	}
	for _, b := range m.keymap.ShortHelp() {
		parts = append(parts, styles.HelpKeyStyle.Render(b.Help().Key)+" "+styles.HelpDescStyle.Render(b.Help().Desc))
	}
	return m.styles.Footer.Render(strings.Join(parts, sep))
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style, prefix = m.styles.NotificationSuccess, "[OK]"
		case NotificationError:
			style, prefix = m.styles.NotificationError, "[ERR]"
		case NotificationWarning:
			style, prefix = m.styles.NotificationWarning, "[WARN]"
		case NotificationInfo:
			style, prefix = m.styles.NotificationInfo, "[INFO]"
		case NotificationLoading:
			style, prefix = m.styles.NotificationInfo, m.spinner.View()
		}

		toasts = append(toasts, m.styles.Toast.Render(style.Render(prefix+" "+n.Message)))
	}
	return toasts
}

// updatedAgo formats the age of the data for the footer.
func updatedAgo(d time.Duration) string {
	if d < time.Second {
		return "updated just now"
	}
	return fmt.Sprintf("updated %s ago", d.Truncate(time.Second))
}

// padLines extends s with empty lines until it is at least height lines tall.
func padLines(s string, height int) string {
	if n := strings.Count(s, "\n") + 1; n < height {
		s += strings.Repeat("\n", height-n)
	}
	return s
}

// overlayCentered draws overlay over the middle of mainView.
func (m *Model) overlayCentered(mainView, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")
	overlayWidth := lipgloss.Width(overlay)

	y := max(0, (m.height-len(overlayLines))/2)
	x := max(0, (m.width-overlayWidth)/2)

	for i, line := range overlayLines {
		row := y + i
		if row >= len(mainLines) {
			break
		}
		left := ansi.Truncate(mainLines[row], x, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		right := ansi.TruncateLeft(mainLines[row], x+overlayWidth, "")
		mainLines[row] = left + line + right
	}
	return strings.Join(mainLines, "\n")
}

// overlayToasts stacks toasts in the top right corner below the navbar.
func (m *Model) overlayToasts(mainView string, toasts []string) string {
	stack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	stackLines := strings.Split(stack, "\n")
	mainLines := strings.Split(mainView, "\n")
	startX := max(m.width-lipgloss.Width(stack)-2, 0)

	const startY = 2
	for i, line := range stackLines {
		row := startY + i
		if row >= len(mainLines) {
			break
		}
		base := mainLines[row]
		if w := lipgloss.Width(base); w < startX {
			mainLines[row] = base + strings.Repeat(" ", startX-w) + line
		} else {
			mainLines[row] = ansi.Truncate(base, startX, "") + line
		}
	}
	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-3        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Refresh usage and billing",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, "", m.styles.Highlight.Render(m.activeTab.String()+" Tab"))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
		}
	}

	lines = append(lines, "", m.styles.Subtle.Render("Press ? or Esc to close"))
	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}
