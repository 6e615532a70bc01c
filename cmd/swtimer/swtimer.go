// Program swtimer uses a one-shot software timer to start a task after a
// delay. The task to start is carried in the timer's identifier.
//
// Usage:
//
//	swtimer [options]
package main

import (
	"context"
	"flag"
	"time"

	"github.com/taskbuf/handoff/internal/demo"
	"github.com/taskbuf/handoff/task"
	"github.com/taskbuf/handoff/timer"
)

var (
	timerPeriod = flag.Duration("period", 5*time.Second, "Timer period")
	autoReload  = flag.Bool("reload", false, "Restart the timer each time it expires")
	tick        = flag.Duration("tick", time.Second, "Interval between progress lines from each task")
	runFor      = flag.Duration("run", 10*time.Second, "How long to run before exiting")
)

func main() {
	env := demo.Init("swtimer", `Start a software timer that, when it expires, creates a task to turn on
a simulated LED. The main task reports progress until -run has elapsed.
`)
	defer env.Close()
	env.Infof("Starting the software timer demo")

	ctx, cancel := context.WithTimeout(context.Background(), *runFor)
	defer cancel()

	svc := timer.NewService(&timer.Options{LogWriter: env.DebugWriter("timer")})
	defer svc.Close()

	g := task.NewGroup(ctx, env.TaskOptions())
	ledTask := task.Func(func(ctx context.Context) error {
		env.Log.Verbosef(env.Tag, "LED started")
		for {
			env.Infof("LED task")
			if err := task.Delay(ctx, *tick); err != nil {
				return nil
			}
		}
	})

	tm, err := svc.New("Timer_1", *timerPeriod, *autoReload, ledTask, func(tm *timer.Timer) {
		entry := tm.ID().(task.Func)
		if _, err := g.Spawn("on_led", entry); err != nil {
			env.Errorf("Creating the LED task: %v", err)
			return
		}
		env.Infof("Task to start an LED is created.")
	})
	if err != nil {
		env.Fatalf("Creating the timer: %v", err)
	}
	env.Infof("Timer created.")
	if err := tm.Start(); err != nil {
		env.Fatalf("Starting the timer: %v", err)
	}
	env.Infof("Timer started, expires at %s", tm.Expiry().Format(time.TimeOnly))

	for task.Delay(ctx, *tick) == nil {
		env.Infof("Main program")
	}
	tm.Delete()
	g.Delete()
	if err := g.Wait(); err != nil {
		env.Errorf("Task failed: %v", err)
	}
	env.Report()
}
