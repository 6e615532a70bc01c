// Program tasks creates and deletes tasks in a cycle. One task turns a
// simulated LED on and idles; after a period it is deleted, and another task
// turns the LED off.
//
// Usage:
//
//	tasks [options]
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/taskbuf/handoff/internal/demo"
	"github.com/taskbuf/handoff/task"
)

var (
	period    = flag.Duration("period", 5*time.Second, "How long each task runs before it is deleted")
	cycles    = flag.Int("cycles", 2, "Number of on/off cycles (0 to run until interrupted)")
	stackSize = flag.Int("stack", task.DefaultStackSize, "Stack budget of each task in bytes")
)

// led is a simulated output pin.
type led struct{ on atomic.Bool }

func (l *led) set(env *demo.Env, on bool) {
	l.on.Store(on)
	state := "off"
	if on {
		state = "on"
	}
	env.Infof("LED is %s", state)
}

func main() {
	env := demo.Init("tasks", `Create a task that turns a simulated LED on, delete it after -period,
then create one that turns it off, and repeat. With -heap, each task's
stack is charged to the budget while it runs.
`)
	defer env.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var pin led
	opts := env.TaskOptions()
	opts.StackSize = *stackSize
	steps := []struct {
		name string
		on   bool
	}{{"on_led", true}, {"off_led", false}}

	for i := 0; *cycles == 0 || i < *cycles; i++ {
		for _, step := range steps {
			t, err := task.Spawn(ctx, step.name, func(ctx context.Context) error {
				pin.set(env, step.on)
				return task.Idle(ctx)
			}, opts)
			if err != nil {
				env.Fatalf("Creating task %q: %v", step.name, err)
			}
			derr := task.Delay(ctx, *period)
			t.Delete()
			st := t.WaitStatus()
			env.Log.Debugf(env.Tag, "Task %q exited: deleted=%v err=%v", t.Name(), st.Deleted, st.Err)
			if derr != nil {
				env.Infof("Interrupted")
				env.Report()
				return
			}
		}
	}
	env.Report()
}
