package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

// Spinner is a labelled loading indicator for tab content.
type Spinner struct {
	model spinner.Model
	label string
}

// NewSpinner creates a spinner showing label next to it.
func NewSpinner(label string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)
	return Spinner{model: s, label: label}
}

// Tick starts the spinner animation.
func (s Spinner) Tick() tea.Cmd {
	return s.model.Tick
}

// Update advances the animation. Ticks for other spinners are ignored.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	return s, cmd
}

// SetLabel replaces the label.
func (s *Spinner) SetLabel(label string) {
	s.label = label
}

// View renders the spinner frame and label.
func (s Spinner) View() string {
	if s.label == "" {
		return s.model.View()
	}
	return s.model.View() + " " + styles.HelpStyle.Render(s.label)
}

// Centered renders the spinner in the middle of a width by height box.
func (s Spinner) Centered(width, height int) string {
	return styles.CenterBoth(s.View(), width, height)
}
