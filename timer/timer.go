// Package timer implements software timers. A timer calls a function after
// its period has elapsed, either once (a one-shot timer) or repeatedly (an
// auto-reload timer). Callbacks run one at a time on the goroutine of the
// Service that owns the timer, so a slow callback delays the others.
package timer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

var (
	// ErrServiceClosed is reported by operations on the timers of a closed
	// service.
	ErrServiceClosed = errors.New("timer service is closed")

	// ErrDeleted is reported by operations on a deleted timer.
	ErrDeleted = errors.New("timer has been deleted")

	// ErrPeriod is reported when a timer period is not positive.
	ErrPeriod = errors.New("timer period must be positive")
)

// A Callback is called with the timer that expired.
type Callback func(*Timer)

// Options control the behaviour of a Service. A nil *Options provides
// sensible defaults.
type Options struct {
	// The number of expirations that may be pending dispatch before the
	// timers that produce them wait. A value less than 1 uses 10.
	QueueLength int

	// If not nil, send debug logs to this writer.
	LogWriter io.Writer
}

func (o *Options) queueLength() int {
	if o == nil || o.QueueLength < 1 {
		return 10
	}
	return o.QueueLength
}

func (o *Options) logFunc() func(string, ...any) {
	if o == nil || o.LogWriter == nil {
		return func(string, ...any) {}
	}
	logger := log.New(o.LogWriter, "[timer.Service] ", log.LstdFlags|log.Lshortfile)
	return func(msg string, args ...any) { logger.Output(2, fmt.Sprintf(msg, args...)) }
}

// An expiry records that a timer fired while armed in generation gen.
type expiry struct {
	t   *Timer
	gen uint64
}

// A Service is the daemon task that dispatches timer callbacks.
type Service struct {
	fired chan expiry
	done  chan struct{}
	exit  chan struct{} // closed when the dispatch loop has returned
	log   func(string, ...any)

	mu     sync.Mutex
	closed bool
	timers map[*Timer]struct{}
}

// NewService starts a timer service and returns it. The caller must Close
// the service when it is no longer needed.
func NewService(opts *Options) *Service {
	s := &Service{
		fired:  make(chan expiry, opts.queueLength()),
		done:   make(chan struct{}),
		exit:   make(chan struct{}),
		log:    opts.logFunc(),
		timers: make(map[*Timer]struct{}),
	}
	go s.dispatch()
	return s
}

// dispatch runs the callbacks of expired timers until s is closed.
func (s *Service) dispatch() {
	defer close(s.exit)
	for {
		select {
		case <-s.done:
			return
		case e := <-s.fired:
			if cb := e.t.expired(e.gen); cb != nil {
				cb(e.t)
			}
		}
	}
}

// post queues an expiry for dispatch, unless s has closed.
func (s *Service) post(e expiry) {
	select {
	case s.fired <- e:
	case <-s.done:
	}
}

// New creates a dormant timer owned by s. The timer does not run until it is
// started. The id is an arbitrary value the callback can retrieve with ID,
// for example to tell apart timers that share a callback.
func (s *Service) New(name string, period time.Duration, autoReload bool, id any, cb Callback) (*Timer, error) {
	if period <= 0 {
		return nil, ErrPeriod
	} else if cb == nil {
		return nil, errors.New("nil timer callback")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrServiceClosed
	}
	t := &Timer{svc: s, name: name, cb: cb, autoReload: autoReload, period: period, id: id}
	s.timers[t] = struct{}{}
	s.log("Created timer %q (period %v, auto-reload %v)", name, period, autoReload)
	return t, nil
}

// Close stops every timer of s and waits for the dispatch loop to exit. A
// callback in progress is allowed to finish. Close is safe to call more than
// once, but must not be called from a callback.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.exit
		return nil
	}
	s.closed = true
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	for t := range timers {
		t.Stop()
	}
	close(s.done)
	<-s.exit
	s.log("Closed")
	return nil
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Service) remove(t *Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, t)
}
