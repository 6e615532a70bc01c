// Program msgbuffer exchanges records between two tasks over a discrete
// buffer. The main task sends a four-byte record; a worker task receives it
// and replies with a confirmation string, which the main task reads back.
//
// Usage:
//
//	msgbuffer [options]
package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/taskbuf/handoff"
	"github.com/taskbuf/handoff/internal/demo"
	"github.com/taskbuf/handoff/task"
)

var (
	bufSize   = flag.Int("size", 104, "Buffer capacity in bytes")
	sendWait  = flag.Duration("wait", 100*time.Millisecond, "Maximum wait on each send and receive by the main task")
	taskWait  = flag.Duration("task-wait", time.Second, "Maximum wait on each send and receive by the worker")
	readDelay = flag.Duration("delay", 2*time.Second, "Delay before the main task reads the confirmation")
)

const confirmation = "Data Successfully read from the Task"

func main() {
	env := demo.Init("msgbuffer", `Send a record to a worker task over a discrete buffer, and read back
its confirmation. A buffer too large for the -heap budget fails to be
created, and the program reports the allocation error.
`)
	defer env.Close()
	env.Infof("Starting the message buffer demo")

	buf, err := handoff.New(*bufSize, handoff.Discrete, env.BufferOptions("messages"))
	if err != nil {
		env.Fatalf("Creating the message buffer: %v", err)
	}
	defer buf.Close()

	ctx := context.Background()
	worker, err := task.Spawn(ctx, "process_message", func(ctx context.Context) error {
		return receiveAndConfirm(env, buf)
	}, env.TaskOptions())
	if err != nil {
		env.Fatalf("Creating the worker task: %v", err)
	}

	record := []byte{0, 1, 2, 3}
	if n, err := buf.Send(record, *sendWait); err != nil {
		env.Fatalf("MAIN: Sending the record: %v", err)
	} else if n != len(record) {
		env.Infof("MAIN: Unable to write the data to the message buffer.")
	} else {
		env.Infof("MAIN: Data successfully written to the message buffer.")
	}

	task.Delay(ctx, *readDelay)
	reply := make([]byte, 50)
	n, err := buf.Receive(reply, *sendWait)
	var serr *handoff.ShortBufferError
	switch {
	case errors.As(err, &serr):
		env.Errorf("MAIN: The confirmation needs %d bytes, have %d.", serr.Need, serr.Have)
	case err != nil:
		env.Errorf("MAIN: Reading the confirmation: %v", err)
	case n == 0:
		env.Infof("MAIN: Error while reading data from message buffer.")
	default:
		env.Infof("MAIN: Data successfully read from message buffer. Data: %s", reply[:n])
	}

	if err := worker.Wait(); err != nil {
		env.Errorf("Worker task failed: %v", err)
	}
	env.Report()
}

func receiveAndConfirm(env *demo.Env, buf *handoff.Buffer) error {
	in := make([]byte, 4)
	if n, err := buf.Receive(in, *taskWait); err != nil {
		return err
	} else if n != len(in) {
		env.Infof("TASK: Error while reading data from message buffer.")
	} else {
		env.Infof("TASK: Data successfully read from message buffer. Data:")
		for _, b := range in {
			env.Infof("TASK: %d", b)
		}
	}

	if n, err := buf.Send([]byte(confirmation), *taskWait); err != nil {
		return err
	} else if n == 0 {
		env.Infof("TASK: Problem sending the confirmation.")
	} else {
		env.Infof("TASK: Confirmation sent successfully.")
	}
	return nil
}
