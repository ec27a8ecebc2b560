package history

import (
	"errors"
	"testing"
)

func mustRing[T any](t *testing.T, initial []T) *Ring[T] {
	t.Helper()
	r, err := New(initial)
	if err != nil {
		t.Fatalf("New(%v) error: %v", initial, err)
	}
	return r
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New[int](nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("New(nil) error = %v, want ErrEmpty", err)
	}
	if _, err := New([]float64{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("New([]) error = %v, want ErrEmpty", err)
	}
	if _, err := NewFilled(0, 1.0); !errors.Is(err, ErrEmpty) {
		t.Errorf("NewFilled(0) error = %v, want ErrEmpty", err)
	}
}

func TestNewCopiesInitial(t *testing.T) {
	initial := []int{1, 2, 3}
	r := mustRing(t, initial)
	initial[0] = 99

	if got := r.At(0); got != 1 {
		t.Errorf("At(0) = %d after caller mutation, want 1", got)
	}
}

func TestNewFilled(t *testing.T) {
	r, err := NewFilled(5, 2.5)
	if err != nil {
		t.Fatalf("NewFilled error: %v", err)
	}
	if r.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", r.Len())
	}
	for i := 0; i < r.Len(); i++ {
		if r.At(i) != 2.5 {
			t.Errorf("At(%d) = %f, want 2.5", i, r.At(i))
		}
	}
}

func TestAdvanceThenWriteNewest(t *testing.T) {
	r := mustRing(t, []int{10, 20, 30, 40})

	r.Advance()
	p, ok := r.Ptr(3)
	if !ok {
		t.Fatal("Ptr(3) returned no value")
	}
	*p = 50

	want := []int{20, 30, 40, 50}
	for i, w := range want {
		if got := r.At(i); got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestSingleSlot(t *testing.T) {
	r := mustRing(t, []int{7})

	for i := 0; i < 5; i++ {
		r.Advance()
		if got := r.At(0); got != 7 {
			t.Fatalf("after %d advances At(0) = %d, want 7", i+1, got)
		}
		if r.start != 0 {
			t.Fatalf("start = %d, want 0", r.start)
		}
	}

	p, ok := r.Ptr(0)
	if !ok {
		t.Fatal("Ptr(0) returned no value")
	}
	*p = 8
	if got := r.At(0); got != 8 {
		t.Errorf("At(0) = %d after write, want 8", got)
	}
}

func TestAdvanceIsRelabeling(t *testing.T) {
	for c := 1; c <= 7; c++ {
		for k := 0; k <= 2*c; k++ {
			initial := make([]int, c)
			for i := range initial {
				initial[i] = i
			}
			r := mustRing(t, initial)
			before, _ := r.Ptr(c - 1)

			for n := 0; n < k; n++ {
				r.Advance()
			}

			j := ((c-1-k)%c + c) % c
			after, _ := r.Ptr(j)
			if before != after {
				t.Errorf("c=%d k=%d: Ptr(%d) does not address the slot Ptr(%d) did", c, k, j, c-1)
			}
		}
	}
}

func TestAdvanceIsCyclic(t *testing.T) {
	for c := 1; c <= 9; c++ {
		r, _ := NewFilled(c, 0)
		r.start = c / 2
		orig := r.start
		for n := 0; n < c; n++ {
			r.Advance()
		}
		if r.start != orig {
			t.Errorf("c=%d: start = %d after %d advances, want %d", c, r.start, c, orig)
		}
	}
}

func TestLenInvariant(t *testing.T) {
	r := mustRing(t, []float64{1, 2, 3})
	for n := 0; n < 10; n++ {
		r.Advance()
		r.Set(n%3, float64(n))
		r.Push(float64(n))
		if r.Len() != 3 {
			t.Fatalf("Len() = %d, want 3", r.Len())
		}
		if r.IsEmpty() {
			t.Fatal("IsEmpty() = true for a constructed ring")
		}
	}
}

func TestPtrBounds(t *testing.T) {
	r := mustRing(t, []int{1, 2, 3, 4})
	r.Advance()
	r.Advance()
	r.Advance()

	tests := []struct {
		index int
		ok    bool
	}{
		{-1, false},
		{0, true},
		{3, true},
		{4, false},
		{100, false},
	}
	for _, tt := range tests {
		p, ok := r.Ptr(tt.index)
		if ok != tt.ok {
			t.Errorf("Ptr(%d) ok = %v, want %v", tt.index, ok, tt.ok)
		}
		if !ok && p != nil {
			t.Errorf("Ptr(%d) returned non-nil pointer with ok=false", tt.index)
		}
	}
}

func TestAtOutOfRangePanics(t *testing.T) {
	r := mustRing(t, []int{1, 2})

	defer func() {
		v := recover()
		ie, ok := v.(*IndexError)
		if !ok {
			t.Fatalf("recovered %v (%T), want *IndexError", v, v)
		}
		if ie.Index != 2 || ie.Len != 2 {
			t.Errorf("IndexError = %+v, want Index 2 Len 2", ie)
		}
	}()
	r.At(2)
}

func TestSetBounds(t *testing.T) {
	r := mustRing(t, []int{1, 2})
	if r.Set(2, 5) {
		t.Error("Set(2) reported success on a 2-slot ring")
	}
	if !r.Set(1, 5) || r.At(1) != 5 {
		t.Error("Set(1, 5) did not store the value")
	}
}

func TestPushAndValues(t *testing.T) {
	r := mustRing(t, []int{0, 0, 0})
	for v := 1; v <= 5; v++ {
		r.Push(v)
	}

	want := []int{3, 4, 5}
	got := r.Values()
	if len(got) != len(want) {
		t.Fatalf("Values() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if r.Newest() != 5 {
		t.Errorf("Newest() = %d, want 5", r.Newest())
	}

	got[0] = 42
	if r.At(0) != 3 {
		t.Error("Values() returned a slice aliasing the ring")
	}
}
