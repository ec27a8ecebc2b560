// Package history provides the fixed-size sample windows behind procgraph's
// graphs and the shared handle that lets the tick path and the render path
// use the same window.
//
// A Ring is always full: it is built from a complete initial slice and never
// grows or shrinks. New samples are admitted by rotating the window one slot
// (Advance) and overwriting the newest logical position, so no element is
// ever shifted or reallocated.
package history

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned when a Ring would be built with zero slots.
var ErrEmpty = errors.New("history: ring needs at least one slot")

// IndexError is the panic value of At for a logical index outside the window.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("history: index %d out of range [0:%d]", e.Index, e.Len)
}

// Ring is a fixed-capacity window over a rotating backing slice.
// Logical index 0 is the oldest sample and Len()-1 the newest.
type Ring[T any] struct {
	data  []T
	start int // physical slot of logical index 0
}

// New builds a Ring holding a copy of initial. Capacity is len(initial).
func New[T any](initial []T) (*Ring[T], error) {
	if len(initial) == 0 {
		return nil, ErrEmpty
	}
	data := make([]T, len(initial))
	copy(data, initial)
	return &Ring[T]{data: data}, nil
}

// NewFilled builds a Ring of n slots, each set to v.
func NewFilled[T any](n int, v T) (*Ring[T], error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	data := make([]T, n)
	for i := range data {
		data[i] = v
	}
	return &Ring[T]{data: data}, nil
}

// Len returns the capacity of the ring.
func (r *Ring[T]) Len() int {
	return len(r.data)
}

// IsEmpty reports whether the ring has no slots. Rings built by New or
// NewFilled never are.
func (r *Ring[T]) IsEmpty() bool {
	return len(r.data) == 0
}

// Advance rotates the window by one slot. The oldest sample becomes the
// newest logical position (Len()-1), ready to be overwritten.
func (r *Ring[T]) Advance() {
	r.start++
	if r.start == len(r.data) {
		r.start = 0
	}
}

// pos maps a logical index in [0, Len()) to its physical slot.
func (r *Ring[T]) pos(i int) int {
	p := r.start + i
	if p >= len(r.data) {
		p -= len(r.data)
	}
	return p
}

// Ptr returns a pointer to the element at logical index i, or false when i is
// outside the window.
func (r *Ring[T]) Ptr(i int) (*T, bool) {
	if i < 0 || i >= len(r.data) {
		return nil, false
	}
	return &r.data[r.pos(i)], true
}

// At returns the element at logical index i. It panics with an *IndexError
// when i is outside the window.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= len(r.data) {
		panic(&IndexError{Index: i, Len: len(r.data)})
	}
	return r.data[r.pos(i)]
}

// Set overwrites the element at logical index i and reports whether i was
// inside the window.
func (r *Ring[T]) Set(i int, v T) bool {
	p, ok := r.Ptr(i)
	if !ok {
		return false
	}
	*p = v
	return true
}

// Push drops the oldest sample and installs v as the newest.
func (r *Ring[T]) Push(v T) {
	r.Advance()
	r.data[r.pos(len(r.data)-1)] = v
}

// Newest returns the element at logical index Len()-1.
func (r *Ring[T]) Newest() T {
	return r.At(len(r.data) - 1)
}

// Values returns a copy of the window, oldest first.
func (r *Ring[T]) Values() []T {
	out := make([]T, 0, len(r.data))
	out = append(out, r.data[r.start:]...)
	return append(out, r.data[:r.start]...)
}
