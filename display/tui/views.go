package tui

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/procgraph/display/graph"
)

// MainViewName is the name of the overview that is shown on startup unless
// another view is configured.
const MainViewName = "main-view"

// ErrDuplicateView is returned by Views.Add for a name that is taken.
var ErrDuplicateView = errors.New("tui: duplicate view name")

// View is a named screen region that stacks one or more graphs.
type View struct {
	Name   string
	Title  string
	Graphs []graph.Handle
}

// Render draws every graph of the view, splitting height evenly. Leftover
// rows go to the first graphs. It stops at the first borrow error.
func (v *View) Render(width, height int) (string, error) {
	if len(v.Graphs) == 0 || width <= 0 || height <= 0 {
		return "", nil
	}

	n := len(v.Graphs)
	if n > height {
		n = height
	}
	each, extra := height/n, height%n

	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		h := each
		if i < extra {
			h++
		}
		out, err := v.Graphs[i].Render(width, h)
		if err != nil {
			return "", fmt.Errorf("view %s: %w", v.Name, err)
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n"), nil
}

// Views looks views up by name and remembers registration order.
type Views struct {
	order  []string
	byName map[string]*View
}

// NewViews returns an empty registry.
func NewViews() *Views {
	return &Views{byName: make(map[string]*View)}
}

// Add registers v under v.Name.
func (vs *Views) Add(v *View) error {
	if _, ok := vs.byName[v.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateView, v.Name)
	}
	vs.byName[v.Name] = v
	vs.order = append(vs.order, v.Name)
	return nil
}

// Lookup returns the view registered under name.
func (vs *Views) Lookup(name string) (*View, bool) {
	v, ok := vs.byName[name]
	return v, ok
}

// Main returns the view registered under MainViewName.
func (vs *Views) Main() (*View, bool) {
	return vs.Lookup(MainViewName)
}

// Names returns view names in registration order.
func (vs *Views) Names() []string {
	return append([]string(nil), vs.order...)
}

// Len returns the number of registered views.
func (vs *Views) Len() int {
	return len(vs.order)
}
