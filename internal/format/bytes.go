package format

import "fmt"

// Bytes renders a byte count with a binary-scaled unit. Counts under 1000
// are printed as-is; larger ones are shifted to kB, MB, GB or TB, keeping up
// to five significant digits before switching unit.
func Bytes(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d B", n)
	}
	n >>= 10
	switch {
	case n < 100_000:
		return fmt.Sprintf("%d kB", n)
	case n < 10_000_000:
		return fmt.Sprintf("%d MB", n>>10)
	case n < 10_000_000_000:
		return fmt.Sprintf("%d GB", n>>20)
	default:
		return fmt.Sprintf("%d TB", n>>30)
	}
}

// Rate renders a bytes-per-second value, e.g. "12 kB/s".
func Rate(bytesPerSec float64) string {
	if bytesPerSec < 0 {
		bytesPerSec = 0
	}
	return Bytes(uint64(bytesPerSec)) + "/s"
}

// Percent renders a 0-100 value with one decimal, e.g. "42.5%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
