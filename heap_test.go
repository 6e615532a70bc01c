package handoff_test

import (
	"errors"
	"testing"

	"github.com/creachadair/mds/mtest"
	"github.com/taskbuf/handoff"
)

func TestHeap(t *testing.T) {
	h := handoff.NewHeap(104)
	if got := h.Total(); got != 104 {
		t.Errorf("Total: got %d, want 104", got)
	}

	if err := h.Alloc(100); err != nil {
		t.Fatalf("Alloc(100): unexpected error: %v", err)
	}
	err := h.Alloc(5)
	var aerr *handoff.AllocationError
	if !errors.As(err, &aerr) {
		t.Fatalf("Alloc(5): got %v, want *AllocationError", err)
	}
	if aerr.Requested != 5 || aerr.Available != 4 {
		t.Errorf("Alloc(5): got %+v, want requested 5, available 4", aerr)
	}
	if err := h.Alloc(4); err != nil {
		t.Errorf("Alloc(4): unexpected error: %v", err)
	}
	if got := h.Available(); got != 0 {
		t.Errorf("Available: got %d, want 0", got)
	}

	h.Release(100)
	if got := h.Available(); got != 100 {
		t.Errorf("Available after release: got %d, want 100", got)
	}
	if err := h.Alloc(0); err == nil {
		t.Error("Alloc(0) did not fail")
	}

	// Releasing more than was allocated is a programming error.
	mtest.MustPanic(t, func() { h.Release(200) })
	if got := h.Available(); got != 100 {
		t.Errorf("Available after failed release: got %d, want 100", got)
	}
}

func TestNilHeap(t *testing.T) {
	var h *handoff.Heap
	if err := h.Alloc(1 << 40); err != nil {
		t.Errorf("Alloc on nil heap: unexpected error: %v", err)
	}
	h.Release(10) // no effect
	if got := h.Available(); got != -1 {
		t.Errorf("Available on nil heap: got %d, want -1", got)
	}
}

func TestHeapRetry(t *testing.T) {
	// Keep trying smaller buffers until one fits the remaining budget.
	h := handoff.NewHeap(60)
	if _, err := handoff.New(40, handoff.Stream, &handoff.Options{Heap: h}); err != nil {
		t.Fatalf("New(40): unexpected error: %v", err)
	}
	size := 64
	var b *handoff.Buffer
	for b == nil && size > 0 {
		var err error
		b, err = handoff.New(size, handoff.Discrete, &handoff.Options{Heap: h})
		if err != nil {
			t.Logf("New(%d): %v", size, err)
			size /= 2
		}
	}
	if b == nil || b.Cap() != 16 {
		t.Fatalf("Got buffer %v, want capacity 16", b)
	}
}
