package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gauge color thresholds in percent.
const (
	ThresholdWarning = 70.0
	ThresholdDanger  = 90.0
)

// GaugeColor returns the color for percent: green, yellow past
// ThresholdWarning, red past ThresholdDanger.
func GaugeColor(percent float64) lipgloss.Color {
	switch {
	case percent >= ThresholdDanger:
		return lipgloss.Color("#EF4444")
	case percent >= ThresholdWarning:
		return lipgloss.Color("#EAB308")
	default:
		return lipgloss.Color("#22C55E")
	}
}

// RenderGauge renders a width-cell bar for a 0-100 value, followed by the
// rounded percentage when showPercent is set.
// Format: ████████░░░░ 67%
func RenderGauge(percent float64, width int, showPercent bool) string {
	percent = math.Max(0, math.Min(100, percent))
	if width <= 0 {
		width = 10
	}

	filled := int(math.Round(percent / 100.0 * float64(width)))

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(GaugeColor(percent)).Render(strings.Repeat("█", filled)))
	sb.WriteString(strings.Repeat("░", width-filled))
	if showPercent {
		sb.WriteString(fmt.Sprintf(" %3.0f%%", percent))
	}
	return sb.String()
}
