package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/procgraph/collectors"
	"gitlab.com/tinyland/lab/procgraph/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/procgraph/display/graph"
	"gitlab.com/tinyland/lab/procgraph/internal/format"
)

// Output sizes of record mode.
const (
	recordHeight = 16
	recordPNGW   = 800
	recordPNGH   = 300
)

// recorder samples the registry on a fixed clock without a terminal UI and
// feeds every usage percentage into one graph.
type recorder struct {
	logger   *slog.Logger
	registry *collectors.Registry
	interval time.Duration
	handle   graph.Handle
}

func newRecorder(reg *collectors.Registry, interval time.Duration, history int, palette []lipgloss.Color, logger *slog.Logger) (*recorder, error) {
	g, err := graph.New(graph.Config{
		Title:    "procgraph",
		History:  history,
		Max:      100,
		Percent:  true,
		Format:   format.Percent,
		Interval: interval,
		Palette:  palette,
	}, "cpu", "ram", "swap", "disk")
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	return &recorder{
		logger:   logger,
		registry: reg,
		interval: interval,
		handle:   graph.Connect(g),
	}, nil
}

// run takes n samples, one per interval, until done or ctx is cancelled.
func (r *recorder) run(ctx context.Context, n int) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for taken := 0; taken < n; {
		select {
		case <-ctx.Done():
			r.logger.Info("recording interrupted", "samples", taken)
			return ctx.Err()
		case <-ticker.C:
			if err := r.runOnce(ctx); err != nil {
				return err
			}
			taken++
		}
	}
	r.logger.Info("recording complete", "samples", n)
	return nil
}

// runOnce collects from every registered collector and pushes the sample.
// Collector failures are logged; only a graph access error is returned.
func (r *recorder) runOnce(ctx context.Context) error {
	for _, c := range r.registry.All() {
		result, err := c.Collect(ctx)
		if err != nil {
			r.logger.Error("collector failed", "name", c.Name(), "error", err)
			continue
		}
		for _, w := range result.Warnings {
			r.logger.Warn("collector warning", "name", c.Name(), "warning", w)
		}
		s, ok := result.Data.(*sysmetrics.Sample)
		if !ok {
			continue
		}
		if err := r.handle.Update(s.TotalCPU(), s.RAM, s.Swap, s.Disk); err != nil {
			return err
		}
	}
	return nil
}

func (r *recorder) render(width, height int) (string, error) {
	return r.handle.Render(width, height)
}

func (r *recorder) savePNG(path string) error {
	var serr error
	if err := r.handle.View(func(g graph.Reader) {
		serr = g.SavePNG(path, recordPNGW, recordPNGH)
	}); err != nil {
		return err
	}
	return serr
}
