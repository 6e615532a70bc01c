package handoff

import (
	"errors"
	"fmt"
)

// ErrClosed is reported by operations on a buffer after Close has been
// called, once any data remaining in the buffer has been drained.
var ErrClosed = errors.New("buffer is closed")

// ErrBusy is reported by Reset when a task is blocked on the buffer.
var ErrBusy = errors.New("buffer has a blocked caller")

// ErrTriggerLevel is reported when a trigger level exceeds the capacity of
// the buffer it applies to.
var ErrTriggerLevel = errors.New("trigger level exceeds buffer capacity")

// ErrRecordSize is reported when a record sent to a discrete buffer does not
// match the record size the buffer was created with.
var ErrRecordSize = errors.New("record does not match the agreed record size")

// AllocationError is reported when storage for a buffer or a task cannot be
// reserved. It is recoverable by the application, for example by retrying
// with a smaller request.
type AllocationError struct {
	Requested int // the number of bytes requested
	Available int // the number of bytes that were available, if known
}

func (e *AllocationError) Error() string {
	if e.Requested <= 0 {
		return fmt.Sprintf("cannot allocate %d bytes: size must be positive", e.Requested)
	}
	return fmt.Sprintf("cannot allocate %d bytes (%d available)", e.Requested, e.Available)
}

// OversizedMessageError is reported when a record sent to a discrete buffer
// is larger than the total capacity of the buffer. Such a record can never
// fit, so the send fails without waiting.
type OversizedMessageError struct {
	Size     int // the length of the rejected record
	Capacity int // the capacity of the buffer
}

func (e *OversizedMessageError) Error() string {
	return fmt.Sprintf("record of %d bytes exceeds buffer capacity %d", e.Size, e.Capacity)
}

// ShortBufferError is reported by Receive on a discrete buffer when the next
// record does not fit the destination. The record is left in the buffer.
type ShortBufferError struct {
	Need int // the length of the next record
	Have int // the length of the destination
}

func (e *ShortBufferError) Error() string {
	return fmt.Sprintf("next record is %d bytes, destination holds %d", e.Need, e.Have)
}
