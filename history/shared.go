package history

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrBorrowConflict matches every *BorrowError.
var ErrBorrowConflict = errors.New("history: conflicting borrow")

// ErrNotWrapped is returned by sections on a zero Shared. Only Wrap makes a
// usable handle.
var ErrNotWrapped = errors.New("history: handle was not created by Wrap")

// Borrow modes reported by BorrowError and Shared.Borrowed.
const (
	BorrowNone      = "none"
	BorrowShared    = "shared"
	BorrowExclusive = "exclusive"
)

// exclusive is the borrow counter value while a WithMut section is open.
// Positive values count open WithRef sections.
const exclusive = -1

// BorrowError reports an access that overlapped an open section on the same
// handle.
type BorrowError struct {
	// Want is the mode that was requested.
	Want string
	// Held is the mode that was already open.
	Held string
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("history: %s access requested while %s access is held", e.Want, e.Held)
}

// Is makes errors.Is(err, ErrBorrowConflict) true for any BorrowError.
func (e *BorrowError) Is(target error) bool {
	return target == ErrBorrowConflict
}

type cell[T any] struct {
	borrow atomic.Int32
	value  T
}

// Shared is a handle to a value used by more than one callback. Copies of a
// Shared (or Clone) refer to the same value; the value lives as long as any
// copy is reachable.
//
// Access goes through WithMut and WithRef. Sections never block: a request
// that overlaps an open section on the same handle fails with a *BorrowError
// instead of waiting, so a callback that re-enters its own handle is
// reported rather than deadlocked. WithRef sections may nest.
//
// The zero Shared holds no value; its sections fail with ErrNotWrapped.
type Shared[T any] struct {
	c *cell[T]
}

// Wrap moves v behind a new Shared handle.
func Wrap[T any](v T) Shared[T] {
	c := &cell[T]{value: v}
	return Shared[T]{c: c}
}

// Clone returns another handle to the same value.
func (s Shared[T]) Clone() Shared[T] {
	return s
}

// Same reports whether s and other refer to the same value.
func (s Shared[T]) Same(other Shared[T]) bool {
	return s.c == other.c
}

// Borrowed returns the mode of the currently open section, if any.
func (s Shared[T]) Borrowed() string {
	if s.c == nil {
		return BorrowNone
	}
	return modeOf(s.c.borrow.Load())
}

// WithMut runs f with exclusive access to the value. It fails without
// calling f if any section is open on the handle.
func (s Shared[T]) WithMut(f func(v *T)) error {
	if s.c == nil {
		return ErrNotWrapped
	}
	if !s.c.borrow.CompareAndSwap(0, exclusive) {
		return &BorrowError{Want: BorrowExclusive, Held: s.Borrowed()}
	}
	defer s.c.borrow.Store(0)
	f(&s.c.value)
	return nil
}

// WithRef runs f with shared access to the value. f must not modify it.
// It fails without calling f while a WithMut section is open.
func (s Shared[T]) WithRef(f func(v *T)) error {
	if s.c == nil {
		return ErrNotWrapped
	}
	for {
		n := s.c.borrow.Load()
		if n == exclusive {
			return &BorrowError{Want: BorrowShared, Held: BorrowExclusive}
		}
		if s.c.borrow.CompareAndSwap(n, n+1) {
			break
		}
	}
	defer s.c.borrow.Add(-1)
	f(&s.c.value)
	return nil
}

// MustWithMut is WithMut that panics on a borrow conflict or a zero handle.
func (s Shared[T]) MustWithMut(f func(v *T)) {
	if err := s.WithMut(f); err != nil {
		panic(err)
	}
}

// MustWithRef is WithRef that panics on a borrow conflict or a zero handle.
func (s Shared[T]) MustWithRef(f func(v *T)) {
	if err := s.WithRef(f); err != nil {
		panic(err)
	}
}

func modeOf(n int32) string {
	switch {
	case n == exclusive:
		return BorrowExclusive
	case n > 0:
		return BorrowShared
	default:
		return BorrowNone
	}
}
