// Package retry wraps collectors with a circuit breaker counted in sample
// ticks. Only Collect errors count as failures; a collector that keeps
// failing (sysmetrics does once every source is unreadable) is skipped for a
// growing number of ticks instead of being retried on every one.
package retry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/procgraph/collectors"
)

var _ collectors.Collector = (*Breaker)(nil)

// State is the breaker state.
type State int

const (
	// StateClosed passes every call through.
	StateClosed State = iota
	// StateOpen skips calls until the skip budget is spent.
	StateOpen
	// StateHalfOpen lets one probe call through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Config configures a Breaker.
type Config struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int
	// Skip is the number of ticks skipped the first time the circuit opens.
	Skip int
	// MaxSkip caps the skip count, which doubles after every failed probe.
	MaxSkip int
	// Logger receives state changes. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the settings used by procgraph.
func DefaultConfig() Config {
	return Config{
		MaxFailures: 3,
		Skip:        5,
		MaxSkip:     120,
	}
}

// Stats is a snapshot of breaker counters.
type Stats struct {
	State            State
	ConsecutiveFails int
	TotalFailures    int
	TotalSuccesses   int
	Skipped          int
	SkipBudget       int
}

// Breaker is a collectors.Collector that guards another one.
type Breaker struct {
	collector collectors.Collector
	cfg       Config
	logger    *slog.Logger

	mu            sync.Mutex
	state         State
	failures      int
	remaining     int
	budget        int
	totalFailures int
	totalOK       int
	skipped       int
}

// New wraps c. Non-positive config fields take their DefaultConfig value.
func New(c collectors.Collector, cfg Config) *Breaker {
	def := DefaultConfig()
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.Skip <= 0 {
		cfg.Skip = def.Skip
	}
	if cfg.MaxSkip <= 0 {
		cfg.MaxSkip = def.MaxSkip
	}
	if cfg.MaxSkip < cfg.Skip {
		cfg.MaxSkip = cfg.Skip
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Breaker{
		collector: c,
		cfg:       cfg,
		logger:    logger,
		budget:    cfg.Skip,
	}
}

// Name delegates to the wrapped collector.
func (b *Breaker) Name() string {
	return b.collector.Name()
}

// Description appends the circuit state to the wrapped description.
func (b *Breaker) Description() string {
	return fmt.Sprintf("%s [circuit: %s]", b.collector.Description(), b.State())
}

// Interval delegates to the wrapped collector.
func (b *Breaker) Interval() time.Duration {
	return b.collector.Interval()
}

// Collect runs the wrapped collector unless the circuit is open. A skipped
// tick returns a result with no data and one warning, so callers keep their
// clock running and draw nothing new for that source.
func (b *Breaker) Collect(ctx context.Context) (*collectors.CollectResult, error) {
	b.mu.Lock()
	if b.state == StateOpen {
		if b.remaining > 0 {
			b.remaining--
			b.skipped++
			left := b.remaining
			b.mu.Unlock()
			return &collectors.CollectResult{
				Collector: b.collector.Name(),
				Timestamp: time.Now(),
				Warnings: []string{fmt.Sprintf("circuit open for %s, probing again in %d ticks",
					b.collector.Name(), left)},
			}, nil
		}
		b.state = StateHalfOpen
		b.logger.Info("circuit half-open", "collector", b.collector.Name())
	}
	b.mu.Unlock()

	result, err := b.collector.Collect(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failed()
		return result, err
	}
	if b.state == StateHalfOpen {
		b.logger.Info("circuit closed", "collector", b.collector.Name())
	}
	b.state = StateClosed
	b.failures = 0
	b.budget = b.cfg.Skip
	b.totalOK++
	return result, nil
}

// failed records a failure. Callers hold mu.
func (b *Breaker) failed() {
	b.failures++
	b.totalFailures++

	switch {
	case b.state == StateHalfOpen:
		b.budget *= 2
		if b.budget > b.cfg.MaxSkip {
			b.budget = b.cfg.MaxSkip
		}
	case b.failures < b.cfg.MaxFailures:
		return
	}
	b.state = StateOpen
	b.remaining = b.budget
	b.logger.Warn("circuit opened",
		"collector", b.collector.Name(),
		"failures", b.failures,
		"skip", b.budget,
	)
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a snapshot of the counters.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		State:            b.state,
		ConsecutiveFails: b.failures,
		TotalFailures:    b.totalFailures,
		TotalSuccesses:   b.totalOK,
		Skipped:          b.skipped,
		SkipBudget:       b.budget,
	}
}

// Reset closes the circuit and clears the failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.remaining = 0
	b.budget = b.cfg.Skip
}
