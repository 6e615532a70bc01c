package task

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// A Group is a collection of tasks that are started together and joined
// together. If any task in the group reports an error, the contexts of the
// other tasks end, so that the group winds down as a unit.
type Group struct {
	eg   *errgroup.Group
	ctx  context.Context
	opts *Options

	mu    sync.Mutex
	tasks []*Task
}

// NewGroup constructs an empty group whose tasks run with contexts derived
// from ctx. The options apply to every task in the group.
func NewGroup(ctx context.Context, opts *Options) *Group {
	eg, gctx := errgroup.WithContext(ctx)
	return &Group{eg: eg, ctx: gctx, opts: opts}
}

// SetLimit bounds the number of tasks of g that may run at once. A Spawn
// that would exceed the limit blocks until a running task exits. A negative
// value removes the limit. SetLimit must not be called while tasks are
// running.
func (g *Group) SetLimit(n int) { g.eg.SetLimit(n) }

// Spawn starts a task in g, as the package-level Spawn does.
func (g *Group) Spawn(name string, entry Func) (*Task, error) {
	t, tctx, err := newTask(g.ctx, name, g.opts)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.tasks = append(g.tasks, t)
	g.mu.Unlock()
	g.eg.Go(func() error { return t.run(tctx, entry) })
	return t, nil
}

// Tasks returns the tasks spawned in g so far.
func (g *Group) Tasks() []*Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Task(nil), g.tasks...)
}

// Delete deletes every task in g.
func (g *Group) Delete() {
	for _, t := range g.Tasks() {
		t.Delete()
	}
}

// Wait blocks until every task in g has exited, and returns the first error
// reported by any of them.
func (g *Group) Wait() error { return g.eg.Wait() }
