package handoff

import (
	"fmt"
	"io"
	"log"

	"github.com/taskbuf/handoff/metrics"
)

const logFlags = log.LstdFlags | log.Lshortfile

// Options control the behaviour of a buffer created by New.
// A nil *Options provides sensible defaults.
type Options struct {
	// The number of bytes that must be available before a reader blocked on
	// a stream buffer is released. A value of 0 is treated as 1. It is an
	// error for this to exceed the capacity of the buffer. Ignored in
	// discrete mode.
	TriggerLevel int

	// If positive, every record sent to a discrete buffer must have exactly
	// this length. Ignored in stream mode.
	RecordSize int

	// If not nil, the storage for the buffer is charged to this budget and
	// returned to it when the buffer is closed.
	Heap *Heap

	// If not nil, send debug logs to this writer.
	LogWriter io.Writer

	// If not nil, this value is used to capture per-buffer statistics.
	Metrics *metrics.M

	// A label for the buffer, used in debug logs.
	Name string
}

func (o *Options) logFunc() func(string, ...any) {
	if o == nil || o.LogWriter == nil {
		return func(string, ...any) {}
	}
	prefix := "[handoff.Buffer] "
	if o.Name != "" {
		prefix = "[handoff.Buffer " + o.Name + "] "
	}
	logger := log.New(o.LogWriter, prefix, logFlags)
	return func(msg string, args ...any) { logger.Output(2, fmt.Sprintf(msg, args...)) }
}

func (o *Options) triggerLevel() int {
	if o == nil || o.TriggerLevel < 1 {
		return 1
	}
	return o.TriggerLevel
}

func (o *Options) recordSize() int {
	if o == nil || o.RecordSize < 0 {
		return 0
	}
	return o.RecordSize
}

func (o *Options) heap() *Heap {
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
