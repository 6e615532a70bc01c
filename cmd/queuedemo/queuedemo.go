// Program queuedemo passes a fixed-size message from the main task to a
// worker task over a typed queue.
//
// Usage:
//
//	queuedemo [options]
package main

import (
	"bytes"
	"context"
	"flag"
	"time"

	"github.com/taskbuf/handoff/internal/demo"
	"github.com/taskbuf/handoff/queue"
	"github.com/taskbuf/handoff/task"
)

var (
	queueLen = flag.Int("length", 10, "Number of messages the queue can hold")
	wait     = flag.Duration("wait", 100*time.Millisecond, "Maximum wait on each send and receive")
	text     = flag.String("text", "Hello World", "Message text (at most 20 bytes are sent)")
)

// A message is the item carried by the queue.
type message struct {
	ID   byte
	Data [20]byte
}

func main() {
	env := demo.Init("queuedemo", `Send a message to a worker task over a typed queue. The message is
copied into the queue by value, and the worker prints its contents.
`)
	defer env.Close()
	env.Infof("Starting the queue demo")

	q, err := queue.New[message](*queueLen, env.BufferOptions("queue"))
	if err != nil {
		env.Fatalf("Creating the queue: %v", err)
	}
	defer q.Close()

	worker, err := task.Spawn(context.Background(), "receive_message", func(ctx context.Context) error {
		msg, ok, err := q.ReceiveContext(ctx)
		if err != nil || !ok {
			return err
		}
		env.Infof("Data is received in the task. Printing contents:")
		env.Infof("Message ID: %c", msg.ID)
		env.Infof("Message: %s", bytes.TrimRight(msg.Data[:], "\x00"))
		return nil
	}, env.TaskOptions())
	if err != nil {
		env.Fatalf("Creating the worker task: %v", err)
	}

	msg := message{ID: 'S'}
	copy(msg.Data[:], *text)
	if ok, err := q.Send(msg, *wait); err != nil {
		env.Fatalf("Sending the message: %v", err)
	} else if !ok {
		env.Errorf("The queue is full; the message was not sent.")
		worker.Delete()
	} else {
		env.Infof("Data is sent from the main task (%d queued, %d spaces).", q.Len(), q.Spaces())
	}

	if err := worker.Wait(); err != nil {
		env.Errorf("Worker task failed: %v", err)
	}
	env.Report()
}
