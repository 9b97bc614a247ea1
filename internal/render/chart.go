package render

import (
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

const (
	chartHeight   = 10
	minChartWidth = 20
	minChartRows  = 3
)

// NoChartData is drawn when there is nothing to plot.
const NoChartData = "No data available"

// Chart plots total tokens per bucket as an ASCII line chart.
func Chart(stats []models.BucketStats, width, height int) string {
	data := make([]float64, 0, len(stats))
	for _, s := range stats {
		data = append(data, float64(s.TotalTokens))
	}
	return LineChart(data, width, height, "Total tokens per bucket")
}

// CostChart plots cost per bucket.
func CostChart(stats []models.BucketStats, width, height int) string {
	data := make([]float64, 0, len(stats))
	for _, s := range stats {
		data = append(data, s.TotalCost)
	}
	return LineChart(data, width, height, "Cost per bucket ($)")
}

// LineChart draws a single series. A lone point is repeated so the plot
// still has a line.
func LineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(NoChartData)
	}
	if width < minChartWidth {
		width = minChartWidth
	}
	if height < minChartRows {
		height = minChartRows
	}
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
