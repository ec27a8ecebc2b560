package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// statsSigFigs is the precision of the percentile histogram.
const statsSigFigs = 2

// Stats summarizes one series over the whole window.
type Stats struct {
	Min  float64
	Max  float64
	Mean float64
	P95  float64
}

// ErrNotFinite is returned by Stats for a window holding NaN or an infinity.
var ErrNotFinite = errors.New("graph: window holds a non-finite sample")

// Stats returns summary statistics of series i. Min, Max and Mean are exact;
// P95 comes from an HDR histogram and is accurate to two significant digits.
// An out-of-range i yields the zero Stats.
func (g *Graph) Stats(i int) (Stats, error) {
	w := g.Series(i)
	if w.Len() == 0 {
		return Stats{}, nil
	}

	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for k := 0; k < w.Len(); k++ {
		v := w.At(k)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Stats{}, fmt.Errorf("%w: %s[%d] = %v", ErrNotFinite, g.labels[i], k, v)
		}
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(w.Len())

	// Percentages keep two decimals; large values (byte rates) are
	// recorded as whole numbers to keep the histogram small.
	scale := 100.0
	if s.Max >= 1e7 {
		scale = 1
	}
	h := hdrhistogram.New(1, int64(math.Max(s.Max, 0)*scale)+2, statsSigFigs)
	for k := 0; k < w.Len(); k++ {
		// Negative samples never occur for usage data; count them as zero.
		if err := h.RecordValue(int64(math.Max(w.At(k), 0) * scale)); err != nil {
			return Stats{}, fmt.Errorf("graph: %s percentile: %w", g.labels[i], err)
		}
	}
	if h.TotalCount() > 0 {
		// Bucket upper bounds can overshoot the largest sample.
		s.P95 = math.Min(math.Max(float64(h.ValueAtQuantile(95))/scale, s.Min), s.Max)
	}
	return s, nil
}
