// Package task provides schedulable units of work for programs built on
// handoff buffers. A task is a goroutine with a name, a stack budget charged
// to a handoff.Heap, and an explicit lifecycle: it can be deleted by its
// controller and joined with Wait.
package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/taskbuf/handoff"
	"github.com/taskbuf/handoff/metrics"
)

// DefaultStackSize is the stack budget charged for a task whose options do
// not specify one.
const DefaultStackSize = 2048

// A Func is the entry routine of a task. It should return when ctx ends,
// which happens when the task is deleted.
type Func func(ctx context.Context) error

// Options control the behaviour of a task created by Spawn.
// A nil *Options provides sensible defaults.
type Options struct {
	// The stack budget of the task in bytes. A value less than 1 uses
	// DefaultStackSize.
	StackSize int

	// The priority of the task. It is recorded for reporting, but has no
	// effect on scheduling.
	Priority int

	// If not nil, the stack budget is charged to this heap for the lifetime
	// of the task.
	Heap *handoff.Heap

	// If not nil, send debug logs to this writer.
	LogWriter io.Writer

	// If not nil, this value is used to capture task statistics.
	Metrics *metrics.M
}

func (o *Options) stackSize() int {
	if o == nil || o.StackSize < 1 {
		return DefaultStackSize
	}
	return o.StackSize
}

func (o *Options) priority() int {
	if o == nil {
		return 0
	}
	return o.Priority
}

func (o *Options) heap() *handoff.Heap {
	if o == nil {
		return nil
	}
	return o.Heap
}

func (o *Options) metrics() *metrics.M {
	if o == nil {
		return nil
	}
	return o.Metrics
}

func (o *Options) logFunc(name string) func(string, ...any) {
	if o == nil || o.LogWriter == nil {
		return func(string, ...any) {}
	}
	logger := log.New(o.LogWriter, "[task "+name+"] ", log.LstdFlags|log.Lshortfile)
	return func(msg string, args ...any) { logger.Output(2, fmt.Sprintf(msg, args...)) }
}

// A Task is a running unit of work.
type Task struct {
	name  string
	prio  int
	stack int
	heap  *handoff.Heap
	log   func(string, ...any)
	met   *metrics.M

	cancel context.CancelFunc
	done   chan struct{} // closed when the entry routine has returned

	mu      sync.Mutex
	err     error
	deleted bool
}

// Spawn starts a task running entry in a new goroutine and returns without
// waiting for it. The context passed to entry is derived from ctx, and ends
// when the task is deleted or ctx ends.
//
// Spawn reports an *handoff.AllocationError if the stack budget of the task
// cannot be charged to opts.Heap; in that case no task is started.
func Spawn(ctx context.Context, name string, entry Func, opts *Options) (*Task, error) {
	t, tctx, err := newTask(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	go t.run(tctx, entry)
	return t, nil
}

func newTask(ctx context.Context, name string, opts *Options) (*Task, context.Context, error) {
	stack := opts.stackSize()
	h := opts.heap()
	if err := h.Alloc(stack); err != nil {
		return nil, nil, fmt.Errorf("task %q: %w", name, err)
	}
	tctx, cancel := context.WithCancel(ctx)
	t := &Task{
		name:   name,
		prio:   opts.priority(),
		stack:  stack,
		heap:   h,
		log:    opts.logFunc(name),
		met:    opts.metrics(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	t.met.Count("tasks_spawned", 1)
	t.met.Gauge("tasks_active", 1)
	t.log("Created with stack %d, priority %d", stack, t.prio)
	return t, tctx, nil
}

// run executes entry and records its result. A panic in entry is reported
// as the error of the task rather than crashing the program.
func (t *Task) run(ctx context.Context, entry Func) error {
	var err error
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("task %q panicked: %v", t.name, p)
			}
		}()
		err = entry(ctx)
	}()
	return t.finish(err)
}

func (t *Task) finish(err error) error {
	t.mu.Lock()
	if t.deleted && errors.Is(err, context.Canceled) {
		err = nil // the expected result of deletion
	}
	t.err = err
	t.mu.Unlock()

	t.cancel()
	t.heap.Release(t.stack)
	t.met.Gauge("tasks_active", -1)
	if err != nil {
		t.met.Count("tasks_failed", 1)
		t.log("Exited with error: %v", err)
	} else {
		t.log("Exited")
	}
	close(t.done)
	return err
}

// Name reports the name of t.
func (t *Task) Name() string { return t.name }

// Priority reports the priority t was created with.
func (t *Task) Priority() int { return t.prio }

// Done returns a channel that is closed when t has exited.
func (t *Task) Done() <-chan struct{} { return t.done }

// Delete asks t to stop by ending its context. It does not wait for t to
// exit; use Wait for that. It is safe to call Delete more than once, and
// after t has exited.
func (t *Task) Delete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.done:
		return
	default:
	}
	if !t.deleted {
		t.deleted = true
		t.log("Deleted")
		t.cancel()
	}
}

// Status describes the reason a task exited.
type Status struct {
	Err     error // the error returned by the entry routine, if any
	Deleted bool  // the task was stopped by a call to Delete
}

// Success reports whether the task exited without error.
func (s Status) Success() bool { return s.Err == nil }

// WaitStatus blocks until t has exited, and returns its status.
func (t *Task) WaitStatus() Status {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return Status{Err: t.err, Deleted: t.deleted}
}

// Wait blocks until t has exited and returns the error reported by its entry
// routine. It is equivalent to t.WaitStatus().Err.
func (t *Task) Wait() error { return t.WaitStatus().Err }

// Delay suspends the calling task for d, or until ctx ends. It reports nil
// if the full delay elapsed, and otherwise the error from ctx. A delay of
// zero or less yields the processor and returns.
func Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		runtime.Gosched()
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Idle blocks until ctx ends and returns nil. It is the body of a task that
// has finished its work but must remain alive until it is deleted.
func Idle(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
