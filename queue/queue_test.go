package queue_test

import (
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/taskbuf/handoff"
	"github.com/taskbuf/handoff/queue"
)

type message struct {
	ID   byte
	Data [20]byte
}

func newMessage(id byte, text string) message {
	m := message{ID: id}
	copy(m.Data[:], text)
	return m
}

func TestSendReceive(t *testing.T) {
	q, err := queue.New[message](10, nil)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	defer q.Close()

	want := newMessage('S', "Hello World")
	if ok, err := q.Send(want, 10*time.Millisecond); !ok || err != nil {
		t.Fatalf("Send: got (%v, %v), want (true, nil)", ok, err)
	}
	if q.Len() != 1 || q.Spaces() != 9 {
		t.Errorf("After send: Len=%d Spaces=%d, want 1, 9", q.Len(), q.Spaces())
	}
	got, ok, err := q.Receive(10 * time.Millisecond)
	if !ok || err != nil {
		t.Fatalf("Receive: got (%v, %v), want (true, nil)", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Received message (-want, +got):\n%s", diff)
	}
}

func TestFIFO(t *testing.T) {
	q, err := queue.New[int32](4, nil)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	defer q.Close()

	for i := range int32(4) {
		if ok, err := q.Send(-i, 0); !ok || err != nil {
			t.Fatalf("Send %d: got (%v, %v), want (true, nil)", -i, ok, err)
		}
	}
	if ok, err := q.Send(99, 0); ok || err != nil {
		t.Errorf("Send to full queue: got (%v, %v), want (false, nil)", ok, err)
	}

	var got []int32
	for {
		v, ok, err := q.Receive(0)
		if err != nil {
			t.Fatalf("Receive: unexpected error: %v", err)
		} else if !ok {
			break
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]int32{0, -1, -2, -3}, got); diff != "" {
		t.Errorf("Received items (-want, +got):\n%s", diff)
	}
}

func TestReceiveTimeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		q, err := queue.New[uint16](2, nil)
		if err != nil {
			t.Fatalf("New: unexpected error: %v", err)
		}
		defer q.Close()

		start := time.Now()
		if _, ok, err := q.Receive(10 * time.Millisecond); ok || err != nil {
			t.Errorf("Receive: got (%v, %v), want (false, nil)", ok, err)
		}
		if got := time.Since(start); got != 10*time.Millisecond {
			t.Errorf("Receive waited %v, want 10ms", got)
		}

		go func() {
			time.Sleep(5 * time.Millisecond)
			q.Send(0xbeef, 0)
		}()
		v, ok, err := q.Receive(handoff.Forever)
		if !ok || err != nil || v != 0xbeef {
			t.Errorf("Receive: got (%#x, %v, %v), want (0xbeef, true, nil)", v, ok, err)
		}
	})
}

func TestNew(t *testing.T) {
	if _, err := queue.New[string](4, nil); err == nil {
		t.Error("New with variable-size items did not fail")
	}
	if _, err := queue.New[int64](0, nil); err == nil {
		t.Error("New with zero length did not fail")
	}

	h := handoff.NewHeap(64)
	if _, err := queue.New[int64](10, &handoff.Options{Heap: h}); err == nil {
		t.Error("New larger than heap did not fail")
	} else if aerr := new(handoff.AllocationError); !errors.As(err, &aerr) {
		t.Errorf("New larger than heap: got %v, want *AllocationError", err)
	}
	q, err := queue.New[int64](8, &handoff.Options{Heap: h})
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	if q.Cap() != 8 || h.Available() != 0 {
		t.Errorf("Cap=%d Available=%d, want 8, 0", q.Cap(), h.Available())
	}
	q.Close()
	if got := h.Available(); got != 64 {
		t.Errorf("Available after Close: got %d, want 64", got)
	}
}

func TestClose(t *testing.T) {
	q, err := queue.New[byte](2, nil)
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	q.Send('x', 0)
	q.Close()

	if _, err := q.Send('y', 0); !errors.Is(err, handoff.ErrClosed) {
		t.Errorf("Send after Close: got %v, want %v", err, handoff.ErrClosed)
	}
	if v, ok, err := q.Receive(0); !ok || err != nil || v != 'x' {
		t.Errorf("Receive after Close: got (%q, %v, %v), want ('x', true, nil)", v, ok, err)
	}
	if _, _, err := q.Receive(0); !errors.Is(err, handoff.ErrClosed) {
		t.Errorf("Receive from drained closed queue: got %v, want %v", err, handoff.ErrClosed)
	}
}
