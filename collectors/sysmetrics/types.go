// Package sysmetrics samples local resource usage for procgraph. It reads
// CPU, memory, swap and network counters from /proc (Linux) and root
// filesystem usage via statfs, turning cumulative counters into
// per-interval percentages and rates.
package sysmetrics

import "time"

// Sample is one reading of the local machine.
type Sample struct {
	// Time is when the sample was taken.
	Time time.Time `json:"time"`

	// CPU holds usage percentages (0-100). Index 0 is the aggregate "cpu"
	// line; index i>0 is core i-1.
	CPU []float64 `json:"cpu"`

	// RAM is the used-memory percentage (0-100).
	RAM float64 `json:"ram"`

	// Swap is the used-swap percentage (0-100). Zero when no swap is configured.
	Swap float64 `json:"swap"`

	// MemUsed and MemTotal are in bytes.
	MemUsed  uint64 `json:"mem_used"`
	MemTotal uint64 `json:"mem_total"`

	// Disk is the root filesystem usage percentage (0-100).
	Disk float64 `json:"disk"`

	// RxRate and TxRate are bytes per second summed over non-loopback
	// interfaces.
	RxRate float64 `json:"rx_rate"`
	TxRate float64 `json:"tx_rate"`
}

// Cores returns the number of per-core entries in CPU.
func (s *Sample) Cores() int {
	if len(s.CPU) == 0 {
		return 0
	}
	return len(s.CPU) - 1
}

// TotalCPU returns the aggregate CPU percentage.
func (s *Sample) TotalCPU() float64 {
	if len(s.CPU) == 0 {
		return 0
	}
	return s.CPU[0]
}

// cpuTimes is the idle/total jiffy pair of one /proc/stat cpu line.
type cpuTimes struct {
	idle  uint64
	total uint64
}

// netCounters is the summed byte counters of /proc/net/dev.
type netCounters struct {
	rx uint64
	tx uint64
}

// clampPercent bounds v to 0-100.
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
