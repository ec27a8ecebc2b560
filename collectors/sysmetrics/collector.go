package sysmetrics

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"gitlab.com/tinyland/lab/procgraph/collectors"
)

const (
	// collectorName is the unique identifier for this collector.
	collectorName = "sysmetrics"

	// collectorDescription describes what this collector gathers.
	collectorDescription = "Local system metrics (CPU per core, RAM, Swap, Disk, Network)"

	// DefaultInterval is the sampling interval used when none is configured.
	DefaultInterval = 1 * time.Second
)

// ErrNoSource is returned by Collect when every source failed to read.
var ErrNoSource = errors.New("sysmetrics: every source failed")

// sourceCount is the number of sources a Collect reads.
const sourceCount = 4

// Collector implements collectors.Collector for local system metrics.
// CPU and network values are deltas against the previous call, so a
// Collector must be reused across ticks; the first call seeds the counters
// and reports zero for both.
type Collector struct {
	logger   *slog.Logger
	interval time.Duration
	diskPath string

	prevCPU   []cpuTimes
	prevNet   netCounters
	prevNetAt time.Time
	netPrimed bool

	// statfsPending is set while a statfs call has not returned.
	statfsPending atomic.Bool

	// Overridable sources for testing.
	now             func() time.Time
	openProcStat    func() (io.ReadCloser, error)
	openProcMeminfo func() (io.ReadCloser, error)
	openProcNetDev  func() (io.ReadCloser, error)
	statfsFunc      func(path string, buf *unix.Statfs_t) error
}

// New creates a Collector sampling every interval. A non-positive interval
// means DefaultInterval. If logger is nil, a no-op logger is used.
func New(interval time.Duration, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Collector{
		logger:   logger,
		interval: interval,
		diskPath: "/",
		now:      time.Now,
		openProcStat: func() (io.ReadCloser, error) {
			return os.Open("/proc/stat")
		},
		openProcMeminfo: func() (io.ReadCloser, error) {
			return os.Open("/proc/meminfo")
		},
		openProcNetDev: func() (io.ReadCloser, error) {
			return os.Open("/proc/net/dev")
		},
		statfsFunc: unix.Statfs,
	}
}

// SetDiskPath selects the filesystem whose usage is reported. Empty keeps
// the current path.
func (c *Collector) SetDiskPath(path string) {
	if path != "" {
		c.diskPath = path
	}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string {
	return collectorName
}

// Description returns a human-readable description of what this collector gathers.
func (c *Collector) Description() string {
	return collectorDescription
}

// Interval returns the sampling interval.
func (c *Collector) Interval() time.Duration {
	return c.interval
}

// Collect takes one Sample. Read failures of individual sources become
// warnings and leave the affected fields at zero; when every source fails,
// Collect returns an error wrapping ErrNoSource. A statfs that outlives ctx
// is abandoned and reported as a warning.
func (c *Collector) Collect(ctx context.Context) (*collectors.CollectResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var warnings []string
	warn := func(w string) {
		if w != "" {
			warnings = append(warnings, w)
		}
	}

	now := c.now()
	s := &Sample{Time: now}

	cpu, w := c.readCPU()
	warn(w)
	s.CPU = cpu

	mem, w := c.readMemory()
	warn(w)
	s.RAM, s.Swap, s.MemUsed, s.MemTotal = mem.ram, mem.swap, mem.used, mem.total

	disk, w := c.readDisk(ctx)
	warn(w)
	s.Disk = disk

	rx, tx, w := c.readNetwork(now)
	warn(w)
	s.RxRate, s.TxRate = rx, tx

	c.logger.Debug("sysmetrics sampled",
		"cpu", fmt.Sprintf("%.1f%%", s.TotalCPU()),
		"cores", s.Cores(),
		"ram", fmt.Sprintf("%.1f%%", s.RAM),
		"swap", fmt.Sprintf("%.1f%%", s.Swap),
		"rx", fmt.Sprintf("%.0fB/s", s.RxRate),
		"tx", fmt.Sprintf("%.0fB/s", s.TxRate),
		"warnings", len(warnings),
	)

	if len(warnings) == sourceCount {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, strings.Join(warnings, "; "))
	}

	return &collectors.CollectResult{
		Collector: collectorName,
		Timestamp: now,
		Data:      s,
		Warnings:  warnings,
	}, nil
}

// readCPU reads every "cpu" line of /proc/stat and returns usage percentages
// since the previous call. The core count may change between calls (CPU
// hotplug); counters are reseeded when it does.
func (c *Collector) readCPU() ([]float64, string) {
	f, err := c.openProcStat()
	if err != nil {
		return nil, fmt.Sprintf("sysmetrics: open /proc/stat: %v", err)
	}
	defer f.Close()

	var cur []cpuTimes
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, "sysmetrics: /proc/stat cpu line too short"
		}

		// Fields: cpuN user nice system idle iowait irq softirq steal ...
		var t cpuTimes
		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return nil, fmt.Sprintf("sysmetrics: parse /proc/stat %s field %d: %v", fields[0], i, err)
			}
			t.total += val
			if i == 4 || i == 5 { // idle + iowait
				t.idle += val
			}
		}
		cur = append(cur, t)
	}
	if len(cur) == 0 {
		return nil, "sysmetrics: cpu line not found in /proc/stat"
	}

	prev := c.prevCPU
	c.prevCPU = cur

	out := make([]float64, len(cur))
	if len(prev) != len(cur) {
		return out, ""
	}
	for i := range cur {
		deltaTotal := cur[i].total - prev[i].total
		deltaIdle := cur[i].idle - prev[i].idle
		if cur[i].total < prev[i].total || cur[i].idle < prev[i].idle || deltaTotal == 0 {
			continue
		}
		out[i] = clampPercent((1.0 - float64(deltaIdle)/float64(deltaTotal)) * 100.0)
	}
	return out, ""
}

type memReading struct {
	ram, swap   float64
	used, total uint64
}

// readMemory reads /proc/meminfo. RAM usage is (MemTotal - MemAvailable) /
// MemTotal and swap usage is (SwapTotal - SwapFree) / SwapTotal.
func (c *Collector) readMemory() (memReading, string) {
	var m memReading

	f, err := c.openProcMeminfo()
	if err != nil {
		return m, fmt.Sprintf("sysmetrics: open /proc/meminfo: %v", err)
	}
	defer f.Close()

	vals := make(map[string]uint64, 4)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		key, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch key {
		case "MemTotal", "MemAvailable", "SwapTotal", "SwapFree":
			val, err := parseMemInfoLine(line)
			if err != nil {
				return m, fmt.Sprintf("sysmetrics: parse %s: %v", key, err)
			}
			vals[key] = val
		}
	}

	memTotal, okTotal := vals["MemTotal"]
	memAvailable, okAvail := vals["MemAvailable"]
	if !okTotal {
		return m, "sysmetrics: MemTotal not found in /proc/meminfo"
	}
	if !okAvail {
		return m, "sysmetrics: MemAvailable not found in /proc/meminfo"
	}
	if memTotal == 0 {
		return m, "sysmetrics: MemTotal is zero"
	}
	if memAvailable > memTotal {
		memAvailable = memTotal
	}

	// /proc/meminfo reports kB.
	m.total = memTotal * 1024
	m.used = (memTotal - memAvailable) * 1024
	m.ram = clampPercent(float64(memTotal-memAvailable) / float64(memTotal) * 100.0)

	if swapTotal := vals["SwapTotal"]; swapTotal > 0 {
		swapFree := vals["SwapFree"]
		if swapFree > swapTotal {
			swapFree = swapTotal
		}
		m.swap = clampPercent(float64(swapTotal-swapFree) / float64(swapTotal) * 100.0)
	}

	return m, ""
}

// parseMemInfoLine extracts the numeric kB value from a /proc/meminfo line.
// Format: "MemTotal:       16384000 kB"
func parseMemInfoLine(line string) (uint64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("too few fields: %q", line)
	}
	return strconv.ParseUint(fields[1], 10, 64)
}

// readDisk uses statfs to compute filesystem usage as a percentage of the
// space available to unprivileged users. A statfs on a hung mount cannot be
// interrupted, so it runs in its own goroutine and is left behind when ctx
// ends first; no new call starts until it returns.
func (c *Collector) readDisk(ctx context.Context) (float64, string) {
	type statfsResult struct {
		stat unix.Statfs_t
		err  error
	}
	path, statfs := c.diskPath, c.statfsFunc
	if !c.statfsPending.CompareAndSwap(false, true) {
		return 0, fmt.Sprintf("sysmetrics: statfs %s: previous call still pending", path)
	}
	done := make(chan statfsResult, 1)
	go func() {
		var r statfsResult
		r.err = statfs(path, &r.stat)
		c.statfsPending.Store(false)
		done <- r
	}()

	var stat unix.Statfs_t
	select {
	case <-ctx.Done():
		return 0, fmt.Sprintf("sysmetrics: statfs %s: %v", path, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return 0, fmt.Sprintf("sysmetrics: statfs %s: %v", path, r.err)
		}
		stat = r.stat
	}

	if stat.Blocks == 0 {
		return 0, "sysmetrics: filesystem reports zero blocks"
	}

	used := stat.Blocks - stat.Bfree
	total := used + stat.Bavail
	if total == 0 {
		return 0, ""
	}

	return clampPercent(float64(used) / float64(total) * 100.0), ""
}

// readNetwork sums receive and transmit byte counters of every non-loopback
// interface in /proc/net/dev and returns rates since the previous call.
func (c *Collector) readNetwork(now time.Time) (float64, float64, string) {
	f, err := c.openProcNetDev()
	if err != nil {
		return 0, 0, fmt.Sprintf("sysmetrics: open /proc/net/dev: %v", err)
	}
	defer f.Close()

	var cur netCounters
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue // header lines
		}
		if strings.TrimSpace(name) == "lo" {
			continue
		}
		// Receive: bytes packets errs drop fifo frame compressed multicast
		// Transmit: bytes ...
		fields := strings.Fields(rest)
		if len(fields) < 9 {
			return 0, 0, fmt.Sprintf("sysmetrics: /proc/net/dev line for %s too short", strings.TrimSpace(name))
		}
		rx, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0, 0, fmt.Sprintf("sysmetrics: parse rx bytes: %v", err)
		}
		tx, err := strconv.ParseUint(fields[8], 10, 64)
		if err != nil {
			return 0, 0, fmt.Sprintf("sysmetrics: parse tx bytes: %v", err)
		}
		cur.rx += rx
		cur.tx += tx
	}

	prev, prevAt, primed := c.prevNet, c.prevNetAt, c.netPrimed
	c.prevNet, c.prevNetAt, c.netPrimed = cur, now, true

	elapsed := now.Sub(prevAt).Seconds()
	if !primed || elapsed <= 0 {
		return 0, 0, ""
	}
	// Counters reset when an interface goes away; report zero for that tick.
	if cur.rx < prev.rx || cur.tx < prev.tx {
		return 0, 0, ""
	}

	return float64(cur.rx-prev.rx) / elapsed, float64(cur.tx-prev.tx) / elapsed, ""
}

// Compile-time interface compliance check.
var _ collectors.Collector = (*Collector)(nil)
