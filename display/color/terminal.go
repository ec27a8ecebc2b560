package color

import (
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
)

// Fallback surface used when nothing better is known.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// TerminalSize returns the current terminal dimensions. It asks the TTY on
// stdout first, then COLUMNS/LINES, and finally falls back to 80x24.
func TerminalSize() (width, height int) {
	w, h, err := term.GetSize(os.Stdout.Fd())
	if err == nil && w > 0 && h > 0 {
		return w, h
	}
	return envSize()
}

func envSize() (width, height int) {
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		width = w
	}
	if h, err := strconv.Atoi(os.Getenv("LINES")); err == nil && h > 0 {
		height = h
	}
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	return width, height
}
