package handoff

import (
	"context"
	"errors"
	"expvar"
	"sync"
	"time"

	"github.com/creachadair/mds/queue"
	"github.com/taskbuf/handoff/metrics"
)

var (
	bufferMetrics = new(expvar.Map)

	buffersActiveGauge = new(expvar.Int)
	bytesSentCount     = new(expvar.Int)
	bytesReceivedCount = new(expvar.Int)
	sendTimeoutCount   = new(expvar.Int)
	recvTimeoutCount   = new(expvar.Int)
)

func init() {
	bufferMetrics.Set("buffers_active", buffersActiveGauge)
	bufferMetrics.Set("bytes_sent", bytesSentCount)
	bufferMetrics.Set("bytes_received", bytesReceivedCount)
	bufferMetrics.Set("send_timeouts", sendTimeoutCount)
	bufferMetrics.Set("receive_timeouts", recvTimeoutCount)
}

// Metrics returns a map of exported buffer metrics for use with the expvar
// package. This map is shared among all buffers created by New.
//
// The caller is responsible for publishing the metrics to the exporter via
// expvar.Publish or similar.
func Metrics() *expvar.Map { return bufferMetrics }

// Forever may be passed as a wait duration to block without a time limit.
// Any negative duration has the same effect. A caller blocked forever is
// still released by Close.
const Forever time.Duration = -1

// Mode selects how a buffer frames the data passing through it.
type Mode int

const (
	// Discrete buffers carry whole records. A receive returns exactly one
	// complete record, never part of one.
	Discrete Mode = iota

	// Stream buffers carry runs of bytes that may be written and read in
	// chunks of any size.
	Stream
)

func (m Mode) String() string {
	switch m {
	case Discrete:
		return "discrete"
	case Stream:
		return "stream"
	}
	return "invalid mode"
}

// A Buffer is a bounded channel that hands data from one producer task to
// one consumer task. Its capacity is fixed when it is created.
//
// The methods of a Buffer are safe for concurrent use, but ordering is only
// defined for a single producer and a single consumer: with more than one
// goroutine sending (or receiving), the interleaving between them is not
// specified.
type Buffer struct {
	mode    Mode
	recSize int
	heap    *Heap
	log     func(string, ...any)
	met     *metrics.M

	// Signals carry at most one pending wakeup each. A waiter rechecks its
	// condition under mu after every wakeup.
	dataReady  chan struct{}
	spaceReady chan struct{}
	done       chan struct{} // closed by Close

	mu      sync.Mutex
	ring    *ring
	lens    *queue.Queue[int] // record lengths, discrete mode only
	trigger int
	blocked int // callers currently waiting
	closed  bool
	nSent   int64
	nRecv   int64
	sendTO  int64
	recvTO  int64
	maxUsed int
}

// New constructs a buffer of the given capacity in bytes and mode. It
// reports an *AllocationError if capacity is not positive or the storage
// cannot be charged to opts.Heap, and ErrTriggerLevel if the trigger level
// of a stream buffer exceeds its capacity.
func New(capacity int, mode Mode, opts *Options) (*Buffer, error) {
	if capacity <= 0 {
		return nil, &AllocationError{Requested: capacity}
	}
	if mode != Discrete && mode != Stream {
		return nil, errors.New("invalid buffer mode")
	}
	trigger := opts.triggerLevel()
	if mode == Stream && trigger > capacity {
		return nil, ErrTriggerLevel
	}
	h := opts.heap()
	if err := h.Alloc(capacity); err != nil {
		return nil, err
	}
	b := &Buffer{
		mode:       mode,
		heap:       h,
		log:        opts.logFunc(),
		met:        opts.metrics(),
		dataReady:  make(chan struct{}, 1),
		spaceReady: make(chan struct{}, 1),
		done:       make(chan struct{}),
		ring:       newRing(capacity),
		trigger:    trigger,
	}
	if mode == Discrete {
		b.recSize = opts.recordSize()
		b.lens = queue.New[int]()
	}
	buffersActiveGauge.Add(1)
	b.log("Created %s buffer, capacity %d bytes", mode, capacity)
	return b, nil
}

// Send copies data into b and reports how many bytes were accepted, waiting
// up to wait for space if b is full. A wait of zero does not block; a
// negative wait (see Forever) blocks without a time limit.
//
// In discrete mode data is one record: it is accepted whole or not at all,
// so a timeout reports 0. A record longer than the capacity of b fails at
// once with an *OversizedMessageError.
//
// In stream mode, if there is not room for all of data when wait expires,
// Send writes as many bytes as fit and reports that count, possibly 0.
//
// A short count is how a timeout is reported; it is not an error.
func (b *Buffer) Send(data []byte, wait time.Duration) (int, error) {
	expire, stop := waitTimer(wait)
	defer stop()
	return b.send(context.Background(), data, expire)
}

// SendContext behaves as Send, but waits until ctx ends instead of for a
// fixed duration. If ctx ends first, the partial result is reported together
// with the error from ctx.
func (b *Buffer) SendContext(ctx context.Context, data []byte) (int, error) {
	return b.send(ctx, data, nil)
}

// Receive copies data out of b into buf and reports how many bytes were
// copied, waiting up to wait for data if b lacks it. Wait durations are
// interpreted as for Send.
//
// In discrete mode Receive returns exactly one complete record. If the next
// record is longer than buf (even if buf is empty), Receive reports a
// *ShortBufferError and leaves the record in place. A timeout reports 0.
//
// In stream mode Receive returns as many bytes as are available, up to
// len(buf). If fewer bytes than the trigger level are available, it first
// waits for more; when the wait expires it returns what is there, possibly
// nothing.
//
// Once b is closed, Receive drains any remaining data and then reports
// ErrClosed.
func (b *Buffer) Receive(buf []byte, wait time.Duration) (int, error) {
	expire, stop := waitTimer(wait)
	defer stop()
	return b.receive(context.Background(), buf, expire)
}

// ReceiveContext behaves as Receive, but waits until ctx ends instead of for
// a fixed duration. If ctx ends first, the partial result is reported
// together with the error from ctx.
func (b *Buffer) ReceiveContext(ctx context.Context, buf []byte) (int, error) {
	return b.receive(ctx, buf, nil)
}

func (b *Buffer) send(ctx context.Context, data []byte, expire <-chan time.Time) (int, error) {
	if b.mode == Discrete {
		if b.recSize > 0 && len(data) != b.recSize {
			return 0, ErrRecordSize
		}
		if len(data) > b.ring.size() {
			return 0, &OversizedMessageError{Size: len(data), Capacity: b.ring.size()}
		}
	}
	if len(data) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}

	need := min(len(data), b.ring.size())
	err := b.await(ctx, b.spaceReady, expire, func() bool { return b.ring.free() >= need })
	if err == ErrClosed || b.closed {
		return 0, ErrClosed
	}

	var nw int
	if b.mode == Stream {
		nw = min(len(data), b.ring.free())
	} else if err == nil {
		nw = len(data)
	}
	if nw > 0 {
		b.ring.put(data[:nw])
		if b.lens != nil {
			b.lens.Add(nw)
		}
		b.nSent += int64(nw)
		bytesSentCount.Add(int64(nw))
		b.maxUsed = max(b.maxUsed, b.ring.used)
		b.met.CountAndSetMax("bytes_sent", int64(nw))
		b.met.SetMaxValue("used_bytes", int64(b.ring.used))
		signal(b.dataReady)
	}
	if nw < len(data) {
		b.sendTO++
		sendTimeoutCount.Add(1)
		b.met.Count("send_timeouts", 1)
		b.log("Send accepted %d of %d bytes (free=%d)", nw, len(data), b.ring.free())
	}
	if err == errTimeout {
		err = nil
	}
	return nw, err
}

func (b *Buffer) receive(ctx context.Context, buf []byte, expire <-chan time.Time) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(buf) == 0 {
		if b.mode == Discrete && !b.lens.IsEmpty() {
			next, _ := b.lens.Peek(0)
			return 0, &ShortBufferError{Need: next, Have: 0}
		}
		return 0, nil
	}

	var ready func() bool
	if b.mode == Discrete {
		ready = func() bool { return !b.lens.IsEmpty() }
	} else {
		// A reader that cannot take a full trigger's worth of bytes is
		// satisfied by as many as it can take.
		ready = func() bool { return b.ring.used >= min(b.trigger, len(buf)) }
	}
	err := b.await(ctx, b.dataReady, expire, ready)
	if err == ErrClosed {
		if b.mode == Discrete || b.ring.used == 0 {
			return 0, err
		}
		err = nil // drain what remains of the stream
	}

	var nr int
	if b.mode == Discrete {
		if err == nil {
			next, _ := b.lens.Peek(0)
			if next > len(buf) {
				return 0, &ShortBufferError{Need: next, Have: len(buf)}
			}
			b.lens.Pop()
			nr = next
		}
	} else {
		nr = min(len(buf), b.ring.used)
	}
	if nr > 0 {
		b.ring.get(buf[:nr])
		b.nRecv += int64(nr)
		bytesReceivedCount.Add(int64(nr))
		b.met.Count("bytes_received", int64(nr))
		signal(b.spaceReady)
	}
	if err != nil {
		b.recvTO++
		recvTimeoutCount.Add(1)
		b.met.Count("receive_timeouts", 1)
		b.log("Receive released with %d bytes (used=%d): %v", nr, b.ring.used, err)
	}
	if err == errTimeout {
		err = nil
	}
	return nr, err
}

// errTimeout is returned by await when the wait expires. It does not escape
// the package: timeouts are reported as short counts.
var errTimeout = errors.New("wait expired")

// await blocks until ready reports true, expire fires, ctx ends, or b is
// closed. It reports nil if ready is satisfied, errTimeout, the error from
// ctx, or ErrClosed. A closed buffer that is still ready reports nil, so
// remaining data can be drained.
//
// The caller must hold b.mu. The lock is released while waiting.
func (b *Buffer) await(ctx context.Context, sig <-chan struct{}, expire <-chan time.Time, ready func() bool) error {
	for !ready() {
		if b.closed {
			return ErrClosed
		}
		b.blocked++
		b.mu.Unlock()
		var err error
		select {
		case <-sig:
		case <-b.done:
		case <-expire:
			err = errTimeout
		case <-ctx.Done():
			err = ctx.Err()
		}
		b.mu.Lock()
		b.blocked--
		if err != nil {
			if ready() {
				return nil
			}
			return err
		}
	}
	return nil
}

// signal posts a wakeup on ch without blocking. At most one wakeup is held.
func signal(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// expired is a closed channel, used as the expiry for a zero wait.
var expired = func() chan time.Time { c := make(chan time.Time); close(c); return c }()

// waitTimer returns a channel that fires after d, and a function to release
// its resources. A zero d fires immediately; a negative d never fires.
func waitTimer(d time.Duration) (<-chan time.Time, func()) {
	switch {
	case d == 0:
		return expired, func() {}
	case d < 0:
		return nil, func() {}
	}
	t := time.NewTimer(d)
	return t.C, func() { t.Stop() }
}

// Close shuts down b. Callers blocked in Send are released with ErrClosed,
// and further sends fail. Receivers may drain any data remaining in b, after
// which Receive reports ErrClosed. The capacity of b is returned to its heap.
// Close is safe to call more than once.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
		b.heap.Release(b.ring.size())
		buffersActiveGauge.Add(-1)
		b.log("Closed with %d bytes unread", b.ring.used)
	}
	return nil
}
