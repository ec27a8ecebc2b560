package graph

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/procgraph/history"
)

func mustGraph(t *testing.T, cfg Config, labels ...string) *Graph {
	t.Helper()
	g, err := New(cfg, labels...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewErrors(t *testing.T) {
	if _, err := New(Config{History: 4}); !errors.Is(err, ErrNoSeries) {
		t.Errorf("no labels: err = %v, want ErrNoSeries", err)
	}
	if _, err := New(Config{History: 0}, "cpu"); !errors.Is(err, history.ErrEmpty) {
		t.Errorf("zero history: err = %v, want history.ErrEmpty", err)
	}
}

func TestNewZeroFilled(t *testing.T) {
	g := mustGraph(t, Config{History: 5}, "a", "b")
	if g.Len() != 5 {
		t.Errorf("Len() = %d, want 5", g.Len())
	}
	for i := 0; i < 2; i++ {
		for _, v := range g.Series(i).Values() {
			if v != 0 {
				t.Fatalf("series %d not zero-filled: %v", i, g.Series(i).Values())
			}
		}
	}
	for _, i := range []int{2, -1} {
		if w := g.Series(i); w.Len() != 0 || w.Values() != nil || w.Newest() != 0 {
			t.Errorf("Series(%d) should be empty, got %v", i, w.Values())
		}
	}
}

func TestPush(t *testing.T) {
	g := mustGraph(t, Config{History: 3}, "a", "b")

	g.Push(1, 10)
	g.Push(2) // b repeats its newest value
	g.Push(3, 30, 99)

	if got, want := g.Series(0).Values(), []float64{1, 2, 3}; !equal(got, want) {
		t.Errorf("a = %v, want %v", got, want)
	}
	if got, want := g.Series(1).Values(), []float64{10, 10, 30}; !equal(got, want) {
		t.Errorf("b = %v, want %v", got, want)
	}
}

func TestResize(t *testing.T) {
	g := mustGraph(t, Config{History: 4}, "a")
	for _, v := range []float64{1, 2, 3, 4} {
		g.Push(v)
	}

	if err := g.Resize(2); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if got, want := g.Series(0).Values(), []float64{3, 4}; !equal(got, want) {
		t.Errorf("after shrink = %v, want %v", got, want)
	}

	if err := g.Resize(4); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if got, want := g.Series(0).Values(), []float64{0, 0, 3, 4}; !equal(got, want) {
		t.Errorf("after grow = %v, want %v", got, want)
	}

	if err := g.Resize(0); !errors.Is(err, history.ErrEmpty) {
		t.Errorf("Resize(0) err = %v, want ErrEmpty", err)
	}
}

func TestDrawNewestOnRight(t *testing.T) {
	g := mustGraph(t, Config{Title: "cpu", History: 4, Max: 100}, "cpu")
	g.Push(100)

	lines := strings.Split(ansi.Strip(g.Draw(10, 6)), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	want := map[int]string{
		1: "100.0 ┤  █",
		2: "      │  █",
		3: "  0.0 ┤▁▁█",
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestDrawFitsSurface(t *testing.T) {
	g := mustGraph(t, Config{Title: "Network", History: 120, Interval: time.Second},
		"rx", "tx")
	for i := 0; i < 200; i++ {
		g.Push(float64(i*1000), float64(i*300))
	}

	sizes := []struct{ w, h int }{{80, 24}, {40, 10}, {12, 3}, {5, 2}, {200, 50}, {1, 1}}
	for _, sz := range sizes {
		out := g.Draw(sz.w, sz.h)
		lines := strings.Split(out, "\n")
		if len(lines) != sz.h {
			t.Errorf("%dx%d: %d lines", sz.w, sz.h, len(lines))
		}
		for i, l := range lines {
			if w := lipgloss.Width(l); w > sz.w {
				t.Errorf("%dx%d: line %d width %d", sz.w, sz.h, i, w)
			}
		}
	}

	if g.Draw(0, 10) != "" || g.Draw(10, 0) != "" {
		t.Error("non-positive size should draw nothing")
	}
}

func TestDrawTitleSpan(t *testing.T) {
	g := mustGraph(t, Config{Title: "CPU", History: 60, Interval: time.Second}, "total")
	first := strings.Split(ansi.Strip(g.Draw(60, 8)), "\n")[0]
	if !strings.Contains(first, "CPU") || !strings.Contains(first, "60 samples / 1m") {
		t.Errorf("title line = %q", first)
	}
}

func TestDrawPercentLegend(t *testing.T) {
	g := mustGraph(t, Config{History: 10, Max: 100, Percent: true}, "cpu0", "cpu1")
	g.Push(25, 75)
	out := ansi.Strip(g.Draw(80, 10))
	if !strings.Contains(out, "cpu0 25.0") || !strings.Contains(out, "cpu1 75.0") {
		t.Errorf("legend missing values:\n%s", out)
	}
}

func TestStats(t *testing.T) {
	g := mustGraph(t, Config{History: 100}, "a")
	for i := 1; i <= 100; i++ {
		g.Push(float64(i))
	}
	s, err := g.Stats(0)
	if err != nil {
		t.Fatal(err)
	}
	if s.Min != 1 || s.Max != 100 {
		t.Errorf("min/max = %v/%v, want 1/100", s.Min, s.Max)
	}
	if s.Mean != 50.5 {
		t.Errorf("mean = %v, want 50.5", s.Mean)
	}
	if math.Abs(s.P95-95) > 1.5 {
		t.Errorf("p95 = %v, want ~95", s.P95)
	}

	if s, err := g.Stats(3); err != nil || (s != Stats{}) {
		t.Errorf("out-of-range Stats = %+v, %v, want zero", s, err)
	}
}

func TestStatsLargeValues(t *testing.T) {
	g := mustGraph(t, Config{History: 4}, "rx")
	for _, v := range []float64{1e8, 2e8, 3e8, 4e8} {
		g.Push(v)
	}
	s, err := g.Stats(0)
	if err != nil {
		t.Fatal(err)
	}
	if s.Max != 4e8 || s.Min != 1e8 {
		t.Errorf("min/max = %v/%v", s.Min, s.Max)
	}
	if s.P95 < 3.9e8 || s.P95 > 4e8 {
		t.Errorf("p95 = %v, want ~4e8", s.P95)
	}
}

func TestStatsNonFinite(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.NaN()} {
		g := mustGraph(t, Config{History: 3, Max: 100}, "cpu")
		g.Push(10)
		g.Push(v)
		if _, err := g.Stats(0); !errors.Is(err, ErrNotFinite) {
			t.Errorf("Stats with %v: err = %v, want ErrNotFinite", v, err)
		}
		if out := ansi.Strip(g.statsLine(40)); out != "cpu: no stats" {
			t.Errorf("statsLine with %v = %q", v, out)
		}
	}
}

func TestSeriesIsReadOnlyCopy(t *testing.T) {
	g := mustGraph(t, Config{History: 3}, "a")
	g.Push(5)
	vals := g.Series(0).Values()
	vals[2] = 99
	if g.Series(0).Newest() != 5 {
		t.Error("Values should return a copy")
	}
	var r Reader = g
	if r.Series(0).Len() != 3 || r.Series(0).At(2) != 5 {
		t.Errorf("Reader view = %v", r.Series(0).Values())
	}
}

func TestImage(t *testing.T) {
	g := mustGraph(t, Config{History: 2, Max: 100}, "cpu")
	g.Push(100) // window [0, 100]

	img, err := g.Image(50, 20)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 20 {
		t.Fatalf("bounds = %v", b)
	}

	line := color.NRGBA{R: 0x06, G: 0xB6, B: 0xD4, A: 0xff}
	if got := img.NRGBAAt(49, 0); got != line {
		t.Errorf("newest point = %v, want %v", got, line)
	}
	if got := img.NRGBAAt(0, 19); got != line {
		t.Errorf("oldest point = %v, want %v", got, line)
	}
	if got := img.NRGBAAt(0, 0); got != imageBackground {
		t.Errorf("corner = %v, want background", got)
	}

	if _, err := g.Image(1, 1); err == nil {
		t.Error("expected error for 1x1 image")
	}
}

func TestSavePNG(t *testing.T) {
	g := mustGraph(t, Config{History: 10}, "a", "b")
	g.Push(1, 2)

	path := filepath.Join(t.TempDir(), "graph.png")
	if err := g.SavePNG(path, 64, 32); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() == 0 {
		t.Error("empty PNG")
	}
}

func TestHandleUpdateRender(t *testing.T) {
	h := Connect(mustGraph(t, Config{Title: "mem", History: 5, Max: 100}, "ram"))

	if err := h.Update(42); err != nil {
		t.Fatalf("Update: %v", err)
	}
	out, err := h.Render(40, 8)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(ansi.Strip(out), "ram 42.0") {
		t.Errorf("render missing newest value:\n%s", out)
	}

	// A copy of the handle sees the same graph.
	c := h
	if err := c.Update(43); err != nil {
		t.Fatal(err)
	}
	_ = h.View(func(g Reader) {
		if g.Series(0).Newest() != 43 {
			t.Errorf("newest = %v, want 43", g.Series(0).Newest())
		}
	})
}

func TestHandleReentrancy(t *testing.T) {
	h := Connect(mustGraph(t, Config{History: 5}, "a"))

	var inner error
	if err := h.View(func(Reader) { inner = h.Update(1) }); err != nil {
		t.Fatalf("View: %v", err)
	}
	if !errors.Is(inner, history.ErrBorrowConflict) {
		t.Errorf("Update inside View: err = %v, want ErrBorrowConflict", inner)
	}

	if err := h.View(func(Reader) { _, inner = h.Render(10, 3) }); err != nil {
		t.Fatal(err)
	}
	if inner != nil {
		t.Errorf("nested Render: %v", inner)
	}

	if err := h.Resize(3); err != nil {
		t.Errorf("Resize: %v", err)
	}
	if err := h.Resize(-1); !errors.Is(err, history.ErrEmpty) {
		t.Errorf("Resize(-1) err = %v", err)
	}
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestZeroHandle(t *testing.T) {
	var h Handle
	if err := h.Update(1); !errors.Is(err, history.ErrNotWrapped) {
		t.Errorf("Update: err = %v, want history.ErrNotWrapped", err)
	}
	if _, err := h.Render(10, 3); !errors.Is(err, history.ErrNotWrapped) {
		t.Errorf("Render: err = %v, want history.ErrNotWrapped", err)
	}
}
