// Package graph draws resource histories as scaled terminal charts.
//
// A Graph owns one history ring per series (for example one per CPU core).
// The tick path installs a sample with Push; the render path calls Draw with
// the surface size. Connect wraps a Graph in a history.Shared handle so the
// two paths can hold it at the same time.
package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/procgraph/history"
)

// ErrNoSeries is returned by New when no series label is given.
var ErrNoSeries = errors.New("graph: at least one series is required")

// DefaultPalette colors series in order, wrapping when there are more series
// than colors.
var DefaultPalette = []lipgloss.Color{
	"#06B6D4", // cyan
	"#7C3AED", // purple
	"#22C55E", // green
	"#EAB308", // yellow
	"#EF4444", // red
	"#EC4899", // pink
	"#3B82F6", // blue
	"#F97316", // orange
}

// Config controls a Graph's scale and labels.
type Config struct {
	// Title is shown on the first line of the drawing.
	Title string

	// History is the number of samples kept per series. Must be > 0.
	History int

	// Max fixes the top of the scale (e.g. 100 for percentages). Zero
	// auto-scales to the largest sample in the window.
	Max float64

	// Percent marks values as 0-100 percentages; the legend then shows a
	// gauge per series.
	Percent bool

	// Format renders a value for axis and legend labels. Defaults to "%.1f".
	Format func(float64) string

	// Interval is the sampling interval, used to label the window span.
	// Zero hides the span.
	Interval time.Duration

	// Palette overrides DefaultPalette.
	Palette []lipgloss.Color
}

// Graph is a set of equally long sample histories drawn together.
type Graph struct {
	cfg    Config
	labels []string
	series []*history.Ring[float64]
}

// New creates a Graph with one zero-filled series per label.
func New(cfg Config, labels ...string) (*Graph, error) {
	if len(labels) == 0 {
		return nil, ErrNoSeries
	}
	if cfg.Format == nil {
		cfg.Format = func(v float64) string { return fmt.Sprintf("%.1f", v) }
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = DefaultPalette
	}

	g := &Graph{
		cfg:    cfg,
		labels: append([]string(nil), labels...),
		series: make([]*history.Ring[float64], len(labels)),
	}
	for i := range labels {
		r, err := history.NewFilled(cfg.History, 0.0)
		if err != nil {
			return nil, fmt.Errorf("graph: series %q: %w", labels[i], err)
		}
		g.series[i] = r
	}
	return g, nil
}

// Title returns the configured title.
func (g *Graph) Title() string {
	return g.cfg.Title
}

// Max returns the fixed top of the scale, or zero when auto-scaled.
func (g *Graph) Max() float64 {
	return g.cfg.Max
}

// Len returns the number of samples kept per series.
func (g *Graph) Len() int {
	return g.series[0].Len()
}

// Labels returns the series labels in draw order.
func (g *Graph) Labels() []string {
	return append([]string(nil), g.labels...)
}

// Series returns a read-only view of series i. The view is empty when i is
// out of range.
func (g *Graph) Series(i int) Window {
	if i < 0 || i >= len(g.series) {
		return Window{}
	}
	return Window{r: g.series[i]}
}

// Window is a read-only view of one series, oldest sample first. It
// satisfies widgets.Series. The zero Window is empty.
type Window struct {
	r *history.Ring[float64]
}

// Len returns the number of samples in the window.
func (w Window) Len() int {
	if w.r == nil {
		return 0
	}
	return w.r.Len()
}

// At returns sample i. It panics with a *history.IndexError when i is
// outside the window.
func (w Window) At(i int) float64 {
	if w.r == nil {
		panic(&history.IndexError{Index: i, Len: 0})
	}
	return w.r.At(i)
}

// Newest returns the latest sample, or zero for an empty window.
func (w Window) Newest() float64 {
	if w.r == nil {
		return 0
	}
	return w.r.Newest()
}

// Values returns a copy of the samples, oldest first.
func (w Window) Values() []float64 {
	if w.r == nil {
		return nil
	}
	return w.r.Values()
}

// Color returns the draw color of series i.
func (g *Graph) Color(i int) lipgloss.Color {
	return g.cfg.Palette[i%len(g.cfg.Palette)]
}

// Push installs one sample per series: every ring advances once and its
// newest slot takes the matching value. Extra values are ignored; a series
// without a value repeats its previous newest sample.
func (g *Graph) Push(values ...float64) {
	for i, r := range g.series {
		v := r.Newest()
		if i < len(values) {
			v = values[i]
		}
		r.Push(v)
	}
}

// Resize changes the number of samples kept per series, keeping the newest
// ones. New slots on growth are zero and sit at the old end of the window.
func (g *Graph) Resize(n int) error {
	if n <= 0 {
		return history.ErrEmpty
	}
	if n == g.Len() {
		return nil
	}
	for i, r := range g.series {
		old := r.Values()
		next := make([]float64, n)
		if len(old) > n {
			old = old[len(old)-n:]
		}
		copy(next[n-len(old):], old)
		nr, err := history.New(next)
		if err != nil {
			return err
		}
		g.series[i] = nr
	}
	g.cfg.History = n
	return nil
}

// scaleMax returns the value mapped to the top row for the window from
// index first onward.
func (g *Graph) scaleMax(first int) float64 {
	if g.cfg.Max > 0 {
		return g.cfg.Max
	}
	peak := 0.0
	for _, r := range g.series {
		for i := first; i < r.Len(); i++ {
			if v := r.At(i); v > peak {
				peak = v
			}
		}
	}
	if peak <= 0 {
		return 1
	}
	return peak
}
