// Package collectors defines the sampling interface behind procgraph's
// timer path. A collector reads one source of resource counters and returns
// a JSON-serializable sample; the TUI installs each sample into its graphs.
package collectors

import (
	"context"
	"time"
)

// Collector is implemented by every sample source.
type Collector interface {
	// Name returns the collector's unique identifier (e.g. "sysmetrics").
	// Names must be unique within a Registry.
	Name() string

	// Description returns a human-readable description of what this collector samples.
	Description() string

	// Interval returns the recommended sampling interval.
	Interval() time.Duration

	// Collect takes one sample. Non-fatal read problems are reported as
	// Warnings rather than errors. The context cancels long reads.
	Collect(ctx context.Context) (*CollectResult, error)
}

// CollectResult holds the output of a collection run.
type CollectResult struct {
	// Collector is the name of the collector that produced this result.
	Collector string `json:"collector"`

	// Timestamp records when the collection completed.
	Timestamp time.Time `json:"timestamp"`

	// Data is the collector-specific sample.
	Data interface{} `json:"data"`

	// Warnings contains non-fatal issues encountered during collection,
	// e.g. /proc/net/dev being unreadable while CPU and memory succeed.
	Warnings []string `json:"warnings,omitempty"`
}

// Registry holds registered collectors and provides lookup by name.
type Registry struct {
	collectors []Collector
}

// NewRegistry creates a new empty collector registry.
func NewRegistry() *Registry {
	return &Registry{
		collectors: make([]Collector, 0),
	}
}

// Register adds a collector to the registry.
// If a collector with the same name already exists, it is replaced.
func (r *Registry) Register(c Collector) {
	for i, existing := range r.collectors {
		if existing.Name() == c.Name() {
			r.collectors[i] = c
			return
		}
	}
	r.collectors = append(r.collectors, c)
}

// Get returns a collector by name. The second return value indicates
// whether the collector was found.
func (r *Registry) Get(name string) (Collector, bool) {
	for _, c := range r.collectors {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// All returns all registered collectors in registration order.
func (r *Registry) All() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}

// MinInterval returns the shortest Interval of the registered collectors,
// or fallback when the registry is empty.
func (r *Registry) MinInterval(fallback time.Duration) time.Duration {
	var shortest time.Duration
	for _, c := range r.collectors {
		if iv := c.Interval(); iv > 0 && (shortest == 0 || iv < shortest) {
			shortest = iv
		}
	}
	if shortest == 0 {
		return fallback
	}
	return shortest
}
