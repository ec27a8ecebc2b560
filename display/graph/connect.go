package graph

import (
	"image"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/procgraph/history"
)

// Reader is the read-only part of a Graph. View callbacks get a Reader so a
// shared section cannot push or resize.
type Reader interface {
	Title() string
	Max() float64
	Len() int
	Labels() []string
	Series(i int) Window
	Color(i int) lipgloss.Color
	Format(v float64) string
	Stats(i int) (Stats, error)
	Draw(width, height int) string
	Image(width, height int) (*image.NRGBA, error)
	SavePNG(path string, width, height int) error
}

var _ Reader = (*Graph)(nil)

// Handle shares a Graph between the tick path, which installs samples, and
// the render path, which draws them. Copies of a Handle refer to the same
// Graph. A borrow conflict means one path re-entered the other; both methods
// report it as an error wrapping history.ErrBorrowConflict instead of
// touching the Graph.
type Handle struct {
	shared history.Shared[*Graph]
}

// Connect wraps g in a Handle.
func Connect(g *Graph) Handle {
	return Handle{shared: history.Wrap(g)}
}

// Update pushes one sample per series under exclusive access.
func (h Handle) Update(values ...float64) error {
	return h.shared.WithMut(func(g **Graph) {
		(*g).Push(values...)
	})
}

// Render draws the graph under shared access.
func (h Handle) Render(width, height int) (string, error) {
	var out string
	err := h.shared.WithRef(func(g **Graph) {
		out = (*g).Draw(width, height)
	})
	return out, err
}

// Resize changes the window length under exclusive access.
func (h Handle) Resize(n int) error {
	var rerr error
	if err := h.shared.WithMut(func(g **Graph) {
		rerr = (*g).Resize(n)
	}); err != nil {
		return err
	}
	return rerr
}

// View runs f with shared access to the Graph.
func (h Handle) View(f func(g Reader)) error {
	return h.shared.WithRef(func(g **Graph) { f(*g) })
}

// Shared exposes the underlying handle.
func (h Handle) Shared() history.Shared[*Graph] {
	return h.shared
}
