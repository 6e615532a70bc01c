package handoff

// Stats is a snapshot of the state of a buffer.
type Stats struct {
	Mode         Mode
	Capacity     int   // total capacity in bytes
	Used         int   // bytes currently held
	Records      int   // complete records held (discrete mode)
	Head         int   // offset of the oldest byte in the ring
	Tail         int   // offset at which the next byte will be written
	TriggerLevel int   // stream mode only
	MaxUsed      int   // high-water mark of Used
	BytesSent    int64 // total bytes accepted by Send
	BytesRecv    int64 // total bytes returned by Receive
	SendShort    int64 // sends that timed out or were cut short
	RecvShort    int64 // receives released before their condition held
	Blocked      int   // callers currently waiting
	Closed       bool
}

// Stats returns an atomic snapshot of the state of b.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Stats{
		Mode:      b.mode,
		Capacity:  b.ring.size(),
		Used:      b.ring.used,
		Head:      b.ring.head,
		Tail:      b.ring.tail(),
		MaxUsed:   b.maxUsed,
		BytesSent: b.nSent,
		BytesRecv: b.nRecv,
		SendShort: b.sendTO,
		RecvShort: b.recvTO,
		Blocked:   b.blocked,
		Closed:    b.closed,
	}
	if b.mode == Discrete {
		s.Records = b.lens.Len()
	} else {
		s.TriggerLevel = b.trigger
	}
	return s
}

// Mode reports the mode b was created with.
func (b *Buffer) Mode() Mode { return b.mode }

// Cap reports the capacity of b in bytes.
func (b *Buffer) Cap() int { return b.ring.size() }

// Used reports the number of bytes currently held in b.
func (b *Buffer) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.used
}

// Free reports the number of bytes that can be sent to b without blocking.
func (b *Buffer) Free() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.free()
}

// Len reports the number of complete records held in a discrete buffer, or
// the number of bytes held in a stream buffer.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mode == Discrete {
		return b.lens.Len()
	}
	return b.ring.used
}

// IsEmpty reports whether b holds no data.
func (b *Buffer) IsEmpty() bool { return b.Used() == 0 }

// IsFull reports whether b has no free space.
func (b *Buffer) IsFull() bool { return b.Free() == 0 }

// NextRecordLen reports the length of the next record in a discrete buffer,
// or 0 if there is none. For a stream buffer it reports 0.
func (b *Buffer) NextRecordLen() int {
	if b.mode != Discrete {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n, _ := b.lens.Peek(0)
	return n
}

// TriggerLevel reports the current trigger level of b.
func (b *Buffer) TriggerLevel() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.trigger
}

// SetTriggerLevel changes the trigger level of a stream buffer. A level of 0
// is treated as 1; a level above the capacity of b reports ErrTriggerLevel.
// A reader already waiting on b observes the new level.
func (b *Buffer) SetTriggerLevel(n int) error {
	if n < 1 {
		n = 1
	}
	if n > b.ring.size() {
		return ErrTriggerLevel
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trigger = n
	signal(b.dataReady)
	return nil
}

// Reset discards the contents of b. It reports ErrBusy without changing b if
// any caller is blocked on it, and ErrClosed if b is closed.
func (b *Buffer) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	} else if b.blocked != 0 {
		return ErrBusy
	}
	b.ring.reset()
	if b.lens != nil {
		b.lens.Clear()
	}
	b.log("Reset")
	return nil
}
