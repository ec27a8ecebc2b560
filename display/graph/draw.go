package graph

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/procgraph/display/widgets"
	"gitlab.com/tinyland/lab/procgraph/internal/format"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	legendGauge = 8
)

// cell is one character of the plot area. series is -1 for blank cells.
type cell struct {
	r      rune
	series int
}

// Draw renders the graph into exactly height lines no wider than width
// cells. The newest sample is the rightmost column; when the window holds
// more samples than there are columns, the oldest ones are not drawn.
func (g *Graph) Draw(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	lines := []string{g.titleLine(width)}
	legend := g.legendLines(width)
	stats := g.statsLine(width)

	rows := height - 1 - len(legend) - 1
	if rows < 1 {
		stats = ""
		rows = height - 1 - len(legend)
	}
	if rows < 1 {
		legend = nil
		rows = height - 1
	}

	if rows >= 1 {
		lines = append(lines, g.plot(width, rows)...)
	}
	lines = append(lines, legend...)
	if stats != "" {
		lines = append(lines, stats)
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}

func (g *Graph) titleLine(width int) string {
	title := format.TruncateWithEllipsis(g.cfg.Title, width)
	line := titleStyle.Render(title)
	if g.cfg.Interval > 0 {
		if span := "  " + format.WindowSpan(g.Len(), g.cfg.Interval); lipgloss.Width(title)+len(span) <= width {
			line += mutedStyle.Render(span)
		}
	}
	return line
}

// plot draws the chart area with a left value axis.
func (g *Graph) plot(width, rows int) []string {
	n := g.Len()
	top := g.Format(0)
	bottom := g.Format(0)

	axisW := 0
	cols := 0
	pw := 0
	first := 0
	scale := 1.0

	// The axis label depends on the scale, which depends on how many
	// columns are visible; settle the width with the full window first.
	for pass := 0; pass < 2; pass++ {
		scale = g.scaleMax(first)
		top = g.Format(scale)
		axisW = len(top)
		if len(bottom) > axisW {
			axisW = len(bottom)
		}
		pw = width - axisW - 2
		if pw < 1 {
			break
		}
		cols = n
		if cols > pw {
			cols = pw
		}
		first = n - cols
	}

	if pw < 1 {
		return make([]string, rows)
	}

	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, pw)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' ', series: -1}
		}
	}

	pad := pw - cols
	single := len(g.series) == 1
	for si, r := range g.series {
		for x := 0; x < cols; x++ {
			level := int(math.Round(math.Max(0, math.Min(1, r.At(first+x)/scale)) * float64(rows*8)))
			col := pad + x
			if level == 0 {
				grid[rows-1][col] = cell{r: widgets.Eighth(1), series: si}
				continue
			}
			full, rem := level/8, level%8
			if single {
				for k := 0; k < full; k++ {
					grid[rows-1-k][col] = cell{r: widgets.Eighth(8), series: si}
				}
				if rem > 0 {
					grid[rows-1-full][col] = cell{r: widgets.Eighth(rem), series: si}
				}
				continue
			}
			// Several series share the plot: draw only each one's top edge.
			y := rows - 1 - (level-1)/8
			grid[y][col] = cell{r: widgets.Eighth((level-1)%8 + 1), series: si}
		}
	}

	out := make([]string, rows)
	for y := 0; y < rows; y++ {
		var sb strings.Builder
		switch y {
		case 0:
			sb.WriteString(mutedStyle.Render(format.PadLeft(top, axisW) + " ┤"))
		case rows - 1:
			sb.WriteString(mutedStyle.Render(format.PadLeft(bottom, axisW) + " ┤"))
		default:
			sb.WriteString(mutedStyle.Render(strings.Repeat(" ", axisW) + " │"))
		}
		sb.WriteString(g.renderRow(grid[y]))
		out[y] = sb.String()
	}
	return out
}

// renderRow styles a row of cells, one lipgloss render per color run.
func (g *Graph) renderRow(row []cell) string {
	var sb strings.Builder
	start := 0
	for start < len(row) {
		end := start + 1
		for end < len(row) && row[end].series == row[start].series {
			end++
		}
		runes := make([]rune, 0, end-start)
		for _, c := range row[start:end] {
			runes = append(runes, c.r)
		}
		if s := row[start].series; s >= 0 {
			sb.WriteString(lipgloss.NewStyle().Foreground(g.Color(s)).Render(string(runes)))
		} else {
			sb.WriteString(string(runes))
		}
		start = end
	}
	return sb.String()
}

// legendLines lists every series with its newest value, wrapping entries to
// width.
func (g *Graph) legendLines(width int) []string {
	var lines []string
	line := ""
	for i, label := range g.labels {
		v := g.series[i].Newest()
		entry := lipgloss.NewStyle().Foreground(g.Color(i)).Render("■") + " " + label + " " + g.Format(v)
		if g.cfg.Percent {
			entry += " " + widgets.RenderGauge(v, legendGauge, false)
		}
		switch {
		case line == "":
			line = entry
		case lipgloss.Width(line)+2+lipgloss.Width(entry) <= width:
			line += "  " + entry
		default:
			lines = append(lines, ansi.Truncate(line, width, ""))
			line = entry
		}
	}
	if line != "" {
		lines = append(lines, ansi.Truncate(line, width, ""))
	}
	return lines
}

// statsLine summarizes the first series over the whole window.
func (g *Graph) statsLine(width int) string {
	s, err := g.Stats(0)
	if err != nil {
		return mutedStyle.Render(format.TruncateWithEllipsis(g.labels[0]+": no stats", width))
	}
	text := "min " + g.Format(s.Min) +
		"  avg " + g.Format(s.Mean) +
		"  p95 " + g.Format(s.P95) +
		"  max " + g.Format(s.Max)
	return mutedStyle.Render(format.TruncateWithEllipsis(g.labels[0]+": "+text, width))
}

// Format renders v with the configured formatter.
func (g *Graph) Format(v float64) string {
	return g.cfg.Format(v)
}
