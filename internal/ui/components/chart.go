package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

// NoData is shown in place of an empty chart.
const NoData = "No data available"

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderLineChart plots a single series in the given color.
func RenderLineChart(data []float64, width, height int, caption string, color asciigraph.AnsiColor) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(NoData)
	}
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(max(3, height)),
		asciigraph.Width(max(20, width)),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(color),
	)
}

// RenderBarChart renders one horizontal bar per label, scaled to the largest value.
// format renders the value printed after each bar.
func RenderBarChart(values []float64, labels []string, width int, format func(float64) string) string {
	if len(values) == 0 {
		return styles.HelpStyle.Render(NoData)
	}
	if format == nil {
		format = func(v float64) string { return humanize.Ftoa(v) }
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}
	barWidth := max(10, width-maxLabelLen-14)

	bar := lipgloss.NewStyle().Foreground(styles.ChartCost)
	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		n := max(0, int(v/maxVal*float64(barWidth)))
		lines = append(lines, fmt.Sprintf("%*s │%s %s",
			maxLabelLen, label, bar.Render(strings.Repeat("█", n)), format(v)))
	}
	return strings.Join(lines, "\n")
}

// RenderSparkline renders values as a one-line sparkline of at most width runes.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	step := max(1, float64(len(values))/float64(width))
	var b strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		v := values[int(float64(i)*step)]
		idx := int(v / maxVal * float64(len(sparkChars)-1))
		b.WriteRune(sparkChars[min(len(sparkChars)-1, max(0, idx))])
	}
	return lipgloss.NewStyle().Foreground(styles.ChartTokens).Render(b.String())
}
