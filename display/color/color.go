// Package color decides how procgraph talks to the terminal: whether styled
// output is allowed, which colors series get, and how large the surface is.
//
// It implements the NO_COLOR convention (https://no-color.org/) and
// pipe/redirect detection. When color is disabled, lipgloss is set to the
// Ascii profile so all styled renders produce plain text.
package color

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ShouldDisableColor returns true if color output should be suppressed:
// NO_COLOR is set (any value) or stdout is not a terminal.
func ShouldDisableColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	fd := os.Stdout.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// Apply configures the global lipgloss renderer based on ShouldDisableColor.
// Returns true if color is enabled.
func Apply() bool {
	if ShouldDisableColor() {
		ForceDisable()
		return false
	}
	return true
}

// ForceDisable sets the lipgloss color profile to Ascii unconditionally.
func ForceDisable() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ParsePalette validates hex color strings ("#rrggbb" or "#rgb") and
// normalizes them to lowercase "#rrggbb". An empty input returns nil so
// callers fall back to their default palette.
func ParsePalette(hex []string) ([]lipgloss.Color, error) {
	if len(hex) == 0 {
		return nil, nil
	}
	out := make([]lipgloss.Color, 0, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("color: palette[%d] %q: %w", i, h, err)
		}
		out = append(out, lipgloss.Color(c.Hex()))
	}
	return out, nil
}
