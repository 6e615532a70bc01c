// Program streambuffer exchanges bytes between two tasks over a stream
// buffer with a trigger level. The main task writes four bytes; a worker
// task reads them after a delay and writes back a confirmation string.
//
// Usage:
//
//	streambuffer [options]
package main

import (
	"context"
	"flag"
	"time"

	"github.com/taskbuf/handoff"
	"github.com/taskbuf/handoff/internal/demo"
	"github.com/taskbuf/handoff/task"
)

var (
	bufSize      = flag.Int("size", 100, "Buffer capacity in bytes")
	triggerLevel = flag.Int("trigger", 10, "Bytes that must be available to release a blocked reader")
	sendWait     = flag.Duration("wait", 100*time.Millisecond, "Maximum wait on each send and receive by the main task")
	taskWait     = flag.Duration("task-wait", 50*time.Millisecond, "Maximum wait on each send and receive by the worker")
	taskDelay    = flag.Duration("task-delay", time.Second, "Delay before the worker reads the buffer")
	readDelay    = flag.Duration("delay", 3*time.Second, "Delay before the main task reads the confirmation")
)

const confirmation = "Data is received by the Task"

func main() {
	env := demo.Init("streambuffer", `Stream bytes to a worker task over a stream buffer, and read back its
confirmation. The -trigger flag sets the number of bytes a blocked reader
waits for; readers with smaller destinations are released sooner.
`)
	defer env.Close()
	env.Infof("Starting the stream buffer demo")

	opts := env.BufferOptions("stream")
	opts.TriggerLevel = *triggerLevel
	buf, err := handoff.New(*bufSize, handoff.Stream, opts)
	if err != nil {
		env.Fatalf("Creating the stream buffer: %v", err)
	}
	defer buf.Close()

	ctx := context.Background()
	worker, err := task.Spawn(ctx, "process_stream", func(ctx context.Context) error {
		if err := task.Delay(ctx, *taskDelay); err != nil {
			return err
		}
		return receiveAndConfirm(env, buf)
	}, env.TaskOptions())
	if err != nil {
		env.Fatalf("Creating the worker task: %v", err)
	}

	data := []byte{0, 1, 2, 3}
	if n, err := buf.Send(data, *sendWait); err != nil || n != len(data) {
		env.Errorf("Main: Problem writing data into the buffer (%d bytes, %v). Quitting", n, err)
		worker.Delete()
		worker.Wait()
		return
	}
	env.Infof("Main: Data written to the buffer.")

	task.Delay(ctx, *readDelay)
	reply := make([]byte, 50)
	if n, err := buf.Receive(reply, *sendWait); err != nil {
		env.Errorf("Main: Reading the confirmation: %v", err)
	} else if n == 0 {
		env.Infof("Main: Problem receiving data from the buffer.")
	} else {
		env.Infof("Main: Confirmation from the task received: %s", reply[:n])
	}

	if err := worker.Wait(); err != nil {
		env.Errorf("Worker task failed: %v", err)
	}
	env.Log.Debugf(env.Tag, "Buffer state: %+v", buf.Stats())
	env.Report()
}

func receiveAndConfirm(env *demo.Env, buf *handoff.Buffer) error {
	in := make([]byte, 4)
	n, err := buf.Receive(in, *taskWait)
	if err != nil {
		return err
	} else if n == 0 {
		env.Infof("Task: Problem receiving data from the buffer.")
		return nil
	}
	env.Infof("Task: Data received from the buffer. Printing:")
	for _, b := range in[:n] {
		env.Infof("Task: %d", b)
	}

	if n, err := buf.Send([]byte(confirmation), *taskWait); err != nil {
		return err
	} else if n != len(confirmation) {
		env.Infof("Task: Problem sending the confirmation to the main task (%d bytes sent).", n)
	} else {
		env.Infof("Task: Confirmation sent.")
	}
	return nil
}
