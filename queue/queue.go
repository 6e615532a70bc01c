// Package queue implements a typed FIFO queue of fixed-size items, carried by
// a discrete handoff.Buffer. Items are copied into the queue by value, encoded
// in little-endian byte order.
package queue

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/taskbuf/handoff"
)

// A Queue holds up to a fixed number of items of type T. The type must have a
// fixed encoded size as defined by encoding/binary: numeric types, arrays of
// them, and structs composed of them.
type Queue[T any] struct {
	buf    *handoff.Buffer
	size   int
	length int
}

// New constructs a queue with room for length items. If opts is not nil, its
// Heap, LogWriter, Metrics, and Name settings apply to the underlying buffer.
func New[T any](length int, opts *handoff.Options) (*Queue[T], error) {
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, fmt.Errorf("queue item type %T has no fixed size", zero)
	} else if length <= 0 {
		return nil, errors.New("queue length must be positive")
	}
	var o handoff.Options
	if opts != nil {
		o = *opts
	}
	o.RecordSize = size
	buf, err := handoff.New(length*size, handoff.Discrete, &o)
	if err != nil {
		return nil, fmt.Errorf("creating queue: %w", err)
	}
	return &Queue[T]{buf: buf, size: size, length: length}, nil
}

// Send copies item to the back of q, waiting up to wait for a free slot. It
// reports false without error if the wait expired with q still full.
func (q *Queue[T]) Send(item T, wait time.Duration) (bool, error) {
	rec, err := q.encode(item)
	if err != nil {
		return false, err
	}
	n, err := q.buf.Send(rec, wait)
	return n == len(rec), err
}

// SendContext is as Send, but waits until ctx ends.
func (q *Queue[T]) SendContext(ctx context.Context, item T) (bool, error) {
	rec, err := q.encode(item)
	if err != nil {
		return false, err
	}
	n, err := q.buf.SendContext(ctx, rec)
	return n == len(rec), err
}

// Receive removes the item at the front of q, waiting up to wait for one to
// arrive. It reports false without error if the wait expired with q empty.
// Items queued before q was closed can still be received.
func (q *Queue[T]) Receive(wait time.Duration) (T, bool, error) {
	rec := make([]byte, q.size)
	n, err := q.buf.Receive(rec, wait)
	return q.decode(rec[:n], err)
}

// ReceiveContext is as Receive, but waits until ctx ends.
func (q *Queue[T]) ReceiveContext(ctx context.Context) (T, bool, error) {
	rec := make([]byte, q.size)
	n, err := q.buf.ReceiveContext(ctx, rec)
	return q.decode(rec[:n], err)
}

// Len reports the number of items waiting in q.
func (q *Queue[T]) Len() int { return q.buf.Len() }

// Spaces reports the number of items that can be added to q without waiting.
func (q *Queue[T]) Spaces() int { return q.length - q.buf.Len() }

// Cap reports the maximum number of items q can hold.
func (q *Queue[T]) Cap() int { return q.length }

// Close closes q. Blocked and subsequent senders report handoff.ErrClosed.
func (q *Queue[T]) Close() error { return q.buf.Close() }

func (q *Queue[T]) encode(item T) ([]byte, error) {
	rec, err := binary.Append(make([]byte, 0, q.size), binary.LittleEndian, item)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", item, err)
	}
	return rec, nil
}

func (q *Queue[T]) decode(rec []byte, err error) (T, bool, error) {
	var item T
	if len(rec) == 0 {
		return item, false, err
	}
	if _, derr := binary.Decode(rec, binary.LittleEndian, &item); derr != nil {
		return item, false, fmt.Errorf("decoding %T: %w", item, derr)
	}
	return item, true, nil
}
