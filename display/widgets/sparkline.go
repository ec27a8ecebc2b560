// Package widgets renders small inline charts (sparklines and gauges) used
// in procgraph's tab bar and graph legends.
package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks contains 8 unicode block characters for sparkline rendering,
// ordered from lowest to highest.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Series is an ordered window of samples, oldest at index 0. A
// *history.Ring[float64] satisfies it.
type Series interface {
	Len() int
	At(i int) float64
}

// Floats adapts a plain slice to Series.
type Floats []float64

func (f Floats) Len() int         { return len(f) }
func (f Floats) At(i int) float64 { return f[i] }

// SparklineConfig controls the appearance of a sparkline.
type SparklineConfig struct {
	// Width is the number of cells to render. If 0, uses Data.Len().
	// Only the newest Width samples are drawn; shorter data is left-padded.
	Width int
	// Min and Max bound the scale. If Min == Max, the window is auto-scaled.
	Min float64
	Max float64
	// Color is the lipgloss color for the sparkline characters.
	Color lipgloss.Color
}

// Block returns the block rune for v on the [min, max] scale.
func Block(v, min, max float64) rune {
	if min == max {
		return sparkBlocks[len(sparkBlocks)/2]
	}
	normalized := (v - min) / (max - min)
	normalized = math.Max(0, math.Min(1, normalized))
	idx := int(normalized * float64(len(sparkBlocks)-1))
	return sparkBlocks[idx]
}

// Eighth returns the block rune filled to n eighths of a cell, for n in 1-8.
// Values outside that range are clamped.
func Eighth(n int) rune {
	if n < 1 {
		n = 1
	}
	if n > len(sparkBlocks) {
		n = len(sparkBlocks)
	}
	return sparkBlocks[n-1]
}

// RenderSparkline renders data, oldest sample on the left.
func RenderSparkline(data Series, cfg SparklineConfig) string {
	n := data.Len()
	if n == 0 {
		return ""
	}

	width := cfg.Width
	if width <= 0 {
		width = n
	}
	first := 0
	if n > width {
		first = n - width
	}

	minVal, maxVal := cfg.Min, cfg.Max
	if minVal == maxVal {
		minVal, maxVal = Bounds(data, first)
	}

	var sb strings.Builder
	if pad := width - (n - first); pad > 0 {
		sb.WriteString(strings.Repeat(" ", pad))
	}
	var runes []rune
	for i := first; i < n; i++ {
		runes = append(runes, Block(data.At(i), minVal, maxVal))
	}

	spark := string(runes)
	if cfg.Color != "" {
		spark = lipgloss.NewStyle().Foreground(cfg.Color).Render(spark)
	}
	sb.WriteString(spark)
	return sb.String()
}

// Bounds returns the smallest and largest sample from index first onward.
func Bounds(data Series, first int) (min, max float64) {
	if first >= data.Len() {
		return 0, 0
	}
	min, max = data.At(first), data.At(first)
	for i := first + 1; i < data.Len(); i++ {
		v := data.At(i)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
