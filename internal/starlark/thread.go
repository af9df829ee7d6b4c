package starlark

import (
	"context"
	"sync"

	"go.starlark.net/starlark"
	"golang.org/x/sync/errgroup"
)

// DefaultPoolSize bounds a ThreadPool created with a non-positive size.
const DefaultPoolSize = 10

// ThreadPool recycles Starlark threads and bounds how many macro files
// execute at once.
type ThreadPool struct {
	mu   sync.Mutex
	idle []*starlark.Thread
	size int
}

// NewThreadPool creates a pool holding at most size idle threads. size also
// caps concurrent executions in ExecFiles.
func NewThreadPool(size int) *ThreadPool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &ThreadPool{
		idle: make([]*starlark.Thread, 0, size),
		size: size,
	}
}

// Get takes an idle thread or creates one. name shows up in Starlark
// error backtraces.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.idle); n > 0 {
		thread := p.idle[n-1]
		p.idle = p.idle[:n-1]
		thread.Name = name
		return thread
	}

	// Macro files run for their definitions; print output is dropped.
	return &starlark.Thread{
		Name:  name,
		Print: func(*starlark.Thread, string) {},
	}
}

// Put hands a thread back. Threads beyond the pool size are dropped.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.idle) >= p.size {
		return
	}
	thread.Name = ""
	thread.Load = nil
	p.idle = append(p.idle, thread)
}

// Size returns the number of idle threads.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Limit returns the maximum number of concurrent executions.
func (p *ThreadPool) Limit() int {
	return p.size
}

// ExecTask is one Starlark file to execute.
type ExecTask struct {
	Name   string // thread name, used in error reporting
	Path   string
	Source []byte
}

// ExecResult is the outcome of an ExecTask.
type ExecResult struct {
	Name    string
	Globals starlark.StringDict
	Error   error
}

// ExecFiles executes every task and returns results in task order. A failing
// task does not stop the others; its error is reported in its own result.
// Cancelling ctx interrupts running threads.
func (p *ThreadPool) ExecFiles(ctx context.Context, tasks []ExecTask, predeclared starlark.StringDict) []ExecResult {
	results := make([]ExecResult, len(tasks))

	var g errgroup.Group
	g.SetLimit(p.size)

	for i, task := range tasks {
		g.Go(func() error {
			results[i] = p.exec(ctx, task, predeclared)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (p *ThreadPool) exec(ctx context.Context, task ExecTask, predeclared starlark.StringDict) ExecResult {
	if err := ctx.Err(); err != nil {
		return ExecResult{Name: task.Name, Error: err}
	}

	thread := p.Get(task.Name)
	stop := context.AfterFunc(ctx, func() { thread.Cancel(context.Cause(ctx).Error()) })

	globals, err := starlark.ExecFile(thread, task.Path, task.Source, predeclared) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later

	// A cancelled thread stays cancelled, so only untouched threads go back.
	if stop() {
		p.Put(thread)
	}
	return ExecResult{Name: task.Name, Globals: globals, Error: err}
}
