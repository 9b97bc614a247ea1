// Package history provides the usage tab: daily, weekly and monthly reports
// with optional per-model breakdown and charts.
package history

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/cursor-usage/internal/app"
	"github.com/j-veylop/cursor-usage/internal/models"
)

// keyMap defines the key bindings specific to the usage tab.
type keyMap struct {
	Daily     key.Binding
	Weekly    key.Binding
	Monthly   key.Binding
	Cycle     key.Binding
	Breakdown key.Binding
	Chart     key.Binding
	Up        key.Binding
	Down      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Daily: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "daily"),
		),
		Weekly: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "weekly"),
		),
		Monthly: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "monthly"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "next period"),
		),
		Breakdown: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "toggle breakdown"),
		),
		Chart: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "toggle chart"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

var periods = []models.Period{models.PeriodDay, models.PeriodWeek, models.PeriodMonth}

// Model represents the usage tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int

	period        models.Period
	showBreakdown bool
	showChart     bool
}

// New creates a new usage model showing the daily report.
func New(state *app.State) *Model {
	return &Model{
		state:     state,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		period:    models.PeriodDay,
		showChart: true,
	}
}

// Init initializes the usage tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Period returns the report currently shown.
func (m *Model) Period() models.Period {
	return m.period
}

// Update handles messages for the usage tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Daily):
		m.SetPeriod(models.PeriodDay)
	case key.Matches(keyMsg, m.keys.Weekly):
		m.SetPeriod(models.PeriodWeek)
	case key.Matches(keyMsg, m.keys.Monthly):
		m.SetPeriod(models.PeriodMonth)
	case key.Matches(keyMsg, m.keys.Cycle):
		m.SetPeriod(periods[(int(m.period)+1)%len(periods)])
	case key.Matches(keyMsg, m.keys.Breakdown):
		m.showBreakdown = !m.showBreakdown
	case key.Matches(keyMsg, m.keys.Chart):
		m.showChart = !m.showChart
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(keyMsg)
		return m, cmd
	}
	return m, nil
}

// SetPeriod switches the report shown.
func (m *Model) SetPeriod(p models.Period) {
	if m.period != p {
		m.period = p
		m.viewport.GotoTop()
	}
}

// SetSize sets the available size for the usage tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Daily,
		m.keys.Weekly,
		m.keys.Monthly,
		m.keys.Breakdown,
		m.keys.Chart,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Daily, m.keys.Weekly, m.keys.Monthly, m.keys.Cycle},
		{m.keys.Breakdown, m.keys.Chart},
		{m.keys.Up, m.keys.Down},
	}
}
