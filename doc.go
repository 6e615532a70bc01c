/*
Package handoff implements bounded buffers that hand data from one task to
another, in the style of the message and stream buffers of a small real-time
operating system. Goroutines play the role of tasks.

# Buffers

A *Buffer has a fixed capacity in bytes, chosen when it is created, and one
of two modes:

	b, err := handoff.New(16, handoff.Discrete, nil)

A Discrete buffer carries whole records. Each Send delivers one record, and
each Receive returns exactly one record: a reader never observes part of a
record.

	s, err := handoff.New(100, handoff.Stream, &handoff.Options{
		TriggerLevel: 10,
	})

A Stream buffer carries runs of bytes, which may be written and read in
pieces of any size. A reader that finds fewer bytes than the trigger level
waits for more, until the trigger level is reached or its wait expires.

The buffer is constructed once and passed to the tasks that use it. It is
designed for a single producer and a single consumer.

# Waiting

Send and Receive take a maximum wait. A wait of zero never blocks, and the
constant Forever blocks until the operation can complete or the buffer is
closed:

	n, err := b.Send([]byte{0, 1, 2, 3}, 100*time.Millisecond)
	if err != nil {
		log.Fatalf("Send: %v", err) // e.g., *handoff.OversizedMessageError
	} else if n != 4 {
		log.Print("Timed out waiting for space")
	}

An expired wait is not an error. It is reported by a short count, which the
caller can compare to the length requested. The buffer never retries on the
caller's behalf.

SendContext and ReceiveContext take their wait from a context instead.

# Errors

Creating a buffer reports an *AllocationError if its capacity is not positive
or cannot be charged to the Heap given in its Options. Sending a record larger
than a discrete buffer reports an *OversizedMessageError. Receiving into a
destination too small for the next record reports a *ShortBufferError and
leaves the record in place.

# Heap

A *Heap is a fixed budget of bytes from which buffers (and the stacks of
tasks, see package task) are charged. When the budget is exhausted, creation
fails with an *AllocationError that the application can recover from, for
example by retrying with a smaller size.
*/
package handoff
