// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/cursor-usage/internal/logger"
	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

const (
	gradientLow  = "#51cf66"
	gradientHigh = "#ff6b6b"

	labelWidth   = 15
	percentWidth = 8
)

// UsageBar renders how much of a limit has been consumed.
type UsageBar struct {
	progress progress.Model
}

// NewUsageBar creates a usage bar that shades from green to red as it fills.
func NewUsageBar() UsageBar {
	return UsageBar{
		progress: progress.New(
			progress.WithScaledGradient(gradientLow, gradientHigh),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// View renders the bar with a label on the left and the percentage on the right.
func (u UsageBar) View(percent float64, label string, width int) string {
	u.progress.Width = max(10, width-labelWidth-percentWidth-1)

	labelStr := styles.ProgressLabelStyle.Width(labelWidth).Render(label)
	percentStr := styles.GetUsageStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center,
		labelStr,
		u.progress.ViewAs(clampPercent(percent)/100),
		" ",
		percentStr,
	)
}

// ViewCompact renders the bar and percentage without a label.
func (u UsageBar) ViewCompact(percent float64, width int) string {
	u.progress.Width = max(5, width-percentWidth)
	percentStr := styles.GetUsageStyle(percent).Render(fmt.Sprintf("%.0f%%", percent))
	return lipgloss.JoinHorizontal(lipgloss.Center, u.progress.ViewAs(clampPercent(percent)/100), " ", percentStr)
}

// CycleElapsed returns how much of the billing cycle [start, end) has passed,
// as a percentage in [0, 100].
func CycleElapsed(start, end, now time.Time) float64 {
	total := end.Sub(start)
	if total <= 0 {
		return 0
	}
	return clampPercent(float64(now.Sub(start)) / float64(total) * 100)
}

// CycleBar renders elapsed time in the billing cycle with the days left.
func CycleBar(start, end, now time.Time, width int) string {
	left := end.Sub(now)
	var remaining string
	switch {
	case left <= 0:
		remaining = "ended"
	case left < 24*time.Hour:
		remaining = fmt.Sprintf("%dh left", int(left.Hours()))
	default:
		remaining = fmt.Sprintf("%dd left", int(left.Hours()/24))
	}

	labelStr := styles.ProgressLabelStyle.Width(labelWidth).Render("Cycle")
	barWidth := max(10, width-labelWidth-percentWidth-3)
	bar := RenderGradientBar(CycleElapsed(start, end, now), barWidth, "#ffd93d", "#6c5ce7")
	remainingStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(remaining)

	return fmt.Sprintf("%s[%s] %s", labelStr, bar, remainingStr)
}

// RenderGradientBar renders a bar of width cells, filled to percent with a
// gradient running from the from color to the to color.
func RenderGradientBar(percent float64, width int, from, to string) string {
	if width < 1 {
		return ""
	}
	filled := int(float64(width) * clampPercent(percent) / 100)

	empty := lipgloss.NewStyle().Foreground(styles.Subtle)
	var b strings.Builder
	for i := range width {
		if i >= filled {
			b.WriteString(empty.Render("░"))
			continue
		}
		t := float64(i) / float64(max(1, width-1))
		color := interpolateColor(from, to, t)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
	}
	return b.String()
}

func clampPercent(p float64) float64 {
	return min(100, max(0, p))
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	mix := func(a, b int) int { return int(float64(a) + t*float64(b-a)) }
	return fmt.Sprintf("#%02x%02x%02x", mix(from[0], to[0]), mix(from[1], to[1]), mix(from[2], to[2]))
}

func hexToRGB(hex string) [3]int {
	var r, g, b int
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
