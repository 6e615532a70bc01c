// Program logdemo writes log lines at every level, to show the effect of the
// per-tag thresholds.
//
// Usage:
//
//	logdemo [options]
package main

import (
	"context"
	"flag"
	"time"

	"github.com/taskbuf/handoff/internal/demo"
	"github.com/taskbuf/handoff/logging"
	"github.com/taskbuf/handoff/task"
)

var (
	moduleLevel = flag.String("module-level", "verbose", "Log threshold for the MyModule tag")
	iterations  = flag.Int("n", 3, "Number of iterations")
	interval    = flag.Duration("interval", 500*time.Millisecond, "Delay between iterations")
)

const tag = "MyModule"

func main() {
	env := demo.Init("logdemo", `Write a line at each log level under the MyModule tag. The -level flag
sets the threshold for all tags, and -module-level overrides it for
MyModule.
`)
	defer env.Close()

	lvl, err := logging.ParseLevel(*moduleLevel)
	if err != nil {
		env.Fatalf("Invalid -module-level: %v", err)
	}
	env.Log.SetLevel(tag, lvl)
	env.Log.Verbosef(tag, "Starting the log test program...")

	ctx := context.Background()
	for i := range *iterations {
		env.Log.Infof(tag, "(Info) Iteration: %d", i)
		env.Log.Warnf(tag, "(Warning) Iteration: %d", i)
		env.Log.Debugf(tag, "(Debug) Iteration: %d", i)
		env.Log.Errorf(tag, "(Error) Iteration: %d", i)
		env.Log.Verbosef(tag, "(Verbose) Iteration: %d", i)
		task.Delay(ctx, *interval)
	}
}
