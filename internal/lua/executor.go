package lua

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// defaultQueueSize bounds the executor queue when none is given.
const defaultQueueSize = 100

// task is one unit of Lua work and the slot its outcome lands in.
type task struct {
	fn   func(L *lua.LState) error
	done chan error
}

func (t *task) finish(err error) {
	t.done <- err
	close(t.done)
}

// ExecutorStats counts the work an Executor has seen.
type ExecutorStats struct {
	Submitted uint64
	Completed uint64
	Failed    uint64
	Panicked  uint64
}

// Executor owns a Lua state and runs every operation on it from one
// goroutine. An LState is not safe for concurrent use, so callers hand
// work to Execute while a single goroutine sits in Run:
//
//	exec := NewExecutor(L, 1)
//	go exec.Run(ctx)
//	defer exec.Close()
//
//	err := exec.Execute(ctx, func(L *lua.LState) error {
//	    return L.DoString(`print("hi")`)
//	})
type Executor struct {
	L *lua.LState

	tasks   chan *task
	stop    chan struct{}
	stopped atomic.Bool
	once    sync.Once

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
}

// NewExecutor wraps L. A non-positive queueSize uses the default.
func NewExecutor(L *lua.LState, queueSize int) *Executor {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Executor{
		L:     L,
		tasks: make(chan *task, queueSize),
		stop:  make(chan struct{}),
	}
}

// Run serves queued tasks until ctx ends or Close is called, then fails
// whatever is still queued. Only the goroutine owning L may call it.
func (e *Executor) Run(ctx context.Context) {
	var reason error
	for reason == nil {
		if e.stopped.Load() {
			reason = ErrExecutorClosed
			break
		}
		select {
		case <-ctx.Done():
			reason = ctx.Err()
		case <-e.stop:
			reason = ErrExecutorClosed
		case t := <-e.tasks:
			t.finish(e.call(t.fn))
		}
	}

	for {
		select {
		case t := <-e.tasks:
			e.failed.Add(1)
			t.finish(reason)
		default:
			return
		}
	}
}

// call invokes fn on L, turning a Go panic into an error.
func (e *Executor) call(fn func(L *lua.LState) error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			e.completed.Add(1)
			if err != nil {
				e.failed.Add(1)
			}
			return
		}
		e.panicked.Add(1)
		e.failed.Add(1)
		if perr, ok := r.(error); ok {
			err = perr
		} else {
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn(e.L)
}

// Execute queues fn and blocks until it has run.
//
// When ctx ends first, Execute returns ctx.Err(); the task may still be
// running and callers must not touch the state until Run has returned.
func (e *Executor) Execute(ctx context.Context, fn func(L *lua.LState) error) error {
	if e.stopped.Load() {
		return ErrExecutorClosed
	}

	t := &task{fn: fn, done: make(chan error, 1)}
	select {
	case e.tasks <- t:
		e.submitted.Add(1)
	case <-e.stop:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports how many tasks are queued but not yet started.
func (e *Executor) Pending() int {
	return len(e.tasks)
}

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() ExecutorStats {
	return ExecutorStats{
		Submitted: e.submitted.Load(),
		Completed: e.completed.Load(),
		Failed:    e.failed.Load(),
		Panicked:  e.panicked.Load(),
	}
}

// Close stops Run. Tasks still queued fail with ErrExecutorClosed.
// It is safe to call more than once.
func (e *Executor) Close() {
	e.once.Do(func() {
		e.stopped.Store(true)
		close(e.stop)
	})
}

// IsClosed reports whether Close has been called.
func (e *Executor) IsClosed() bool {
	return e.stopped.Load()
}
