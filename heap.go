package handoff

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// A Heap is a fixed memory budget shared by the buffers and tasks of an
// application, in the manner of the heap an RTOS carves its objects from.
// Storage is not actually pooled; the heap only accounts for it, so that an
// application can observe allocation failure when the budget is exhausted.
//
// A nil *Heap is valid and never fails. The methods of a *Heap are safe for
// concurrent use by multiple goroutines.
type Heap struct {
	total int64
	inUse atomic.Int64
	sem   *semaphore.Weighted
}

// NewHeap constructs a heap with the given total size in bytes.
func NewHeap(total int) *Heap {
	if total < 0 {
		total = 0
	}
	return &Heap{total: int64(total), sem: semaphore.NewWeighted(int64(total))}
}

// Alloc reserves n bytes from h. It does not block: if fewer than n bytes
// remain, it reports an *AllocationError.
func (h *Heap) Alloc(n int) error {
	if n <= 0 {
		return &AllocationError{Requested: n}
	}
	if h == nil {
		return nil
	}
	if !h.sem.TryAcquire(int64(n)) {
		return &AllocationError{Requested: n, Available: h.Available()}
	}
	h.inUse.Add(int64(n))
	return nil
}

// Release returns n bytes to h. It panics if more is released than was
// allocated.
func (h *Heap) Release(n int) {
	if h == nil || n <= 0 {
		return
	}
	h.sem.Release(int64(n))
	h.inUse.Add(-int64(n))
}

// Available reports the number of bytes not currently allocated from h.
// For a nil heap it reports -1.
func (h *Heap) Available() int {
	if h == nil {
		return -1
	}
	return int(h.total - h.inUse.Load())
}

// Total reports the total size of h in bytes.
func (h *Heap) Total() int {
	if h == nil {
		return -1
	}
	return int(h.total)
}
