// Package demo holds the setup shared by the demonstration programs: command
// line flags, the log sink, and the heap budget.
package demo

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/taskbuf/handoff"
	"github.com/taskbuf/handoff/logging"
	"github.com/taskbuf/handoff/metrics"
	"github.com/taskbuf/handoff/task"
)

var (
	logLevel   = flag.String("level", "info", "Log threshold (none, error, warn, info, debug, verbose)")
	withDebug  = flag.Bool("v", false, "Enable debug logging from buffers, tasks, and timers")
	serialDev  = flag.String("serial", "", "Mirror log output to this serial device")
	serialBaud = flag.Int("baud", 115200, "Baud rate of the serial device")
	heapSize   = flag.Int("heap", 0, "Heap budget in bytes shared by buffers and task stacks (0 for unlimited)")
)

// An Env is the environment of a demonstration program.
type Env struct {
	Tag     string          // the tag for log lines written by the program
	Log     *logging.Logger // the shared log sink
	Heap    *handoff.Heap   // nil if the heap is unlimited
	Metrics *metrics.M      // shared by all buffers and tasks

	closers []io.Closer
}

// Init parses the command line and constructs the environment. The usage
// text describes the program, and is printed before the flag defaults.
// Init terminates the program if the flags are invalid.
func Init(tag, usage string) *Env {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n%s\nOptions:\n", filepath.Base(os.Args[0]), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	lvl, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid -level: %v", err)
	}
	if *withDebug {
		lvl = max(lvl, logging.Debug)
	}
	env := &Env{Tag: tag, Metrics: metrics.New()}
	var out io.Writer = os.Stderr
	if *serialDev != "" {
		port, err := logging.OpenSerial(*serialDev, *serialBaud)
		if err != nil {
			log.Fatalf("Serial output: %v", err)
		}
		env.closers = append(env.closers, port)
		out = io.MultiWriter(os.Stderr, port)
	}
	env.Log = logging.New(out, lvl)
	if *heapSize > 0 {
		env.Heap = handoff.NewHeap(*heapSize)
	}
	return env
}

// Close releases the resources held by e.
func (e *Env) Close() {
	for _, c := range e.closers {
		c.Close()
	}
}

// Infof logs an informational line under the program tag.
func (e *Env) Infof(format string, args ...any) { e.Log.Infof(e.Tag, format, args...) }

// Errorf logs an error line under the program tag.
func (e *Env) Errorf(format string, args ...any) { e.Log.Errorf(e.Tag, format, args...) }

// Fatalf logs an error line under the program tag and exits.
func (e *Env) Fatalf(format string, args ...any) {
	e.Log.Errorf(e.Tag, format, args...)
	e.Close()
	os.Exit(1)
}

// DebugWriter returns a writer for the debug output of the named component,
// or nil if the -v flag is not set.
func (e *Env) DebugWriter(tag string) io.Writer {
	if !*withDebug {
		return nil
	}
	return e.Log.Writer(tag, logging.Debug)
}

// BufferOptions returns options for a buffer with the given name, charged to
// the heap of e.
func (e *Env) BufferOptions(name string) *handoff.Options {
	return &handoff.Options{
		Heap:      e.Heap,
		LogWriter: e.DebugWriter("buffer"),
		Metrics:   e.Metrics,
		Name:      name,
	}
}

// TaskOptions returns options for a task, whose stack is charged to the heap
// of e.
func (e *Env) TaskOptions() *task.Options {
	return &task.Options{
		Heap:      e.Heap,
		LogWriter: e.DebugWriter("task"),
		Metrics:   e.Metrics,
	}
}

// Report logs the metrics collected by e, and the package-level buffer
// statistics, at debug level.
func (e *Env) Report() {
	counters := make(map[string]int64)
	maxValues := make(map[string]int64)
	e.Metrics.Snapshot(counters, maxValues)
	for name, v := range counters {
		e.Log.Debugf(e.Tag, "counter %s = %d", name, v)
	}
	for name, v := range maxValues {
		e.Log.Debugf(e.Tag, "max %s = %d", name, v)
	}
	e.Log.Debugf(e.Tag, "buffers: %s", handoff.Metrics().String())
}
