// Package loop provides the single-threaded event loop behind a live
// session.
//
// Every read or write of session state (the document, the toggle
// controls, the notification container) happens inside a task run by
// the loop, so that state needs no locking. Blocking work such as a
// backend request runs on its own goroutine through Go, and its result
// is handed back to the loop as a continuation:
//
//	loop.Go(l, func() ([]api.Recipe, error) {
//	    return client.Favorites(ctx)
//	}, func(favs []api.Recipe, err error) {
//	    // runs on the loop
//	})
package loop

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// ErrQueueFull is returned by TryDispatch when the task queue is full.
var ErrQueueFull = errors.New("loop: task queue full")

// ErrClosed is returned by TryDispatch after Close.
var ErrClosed = errors.New("loop: closed")

// DefaultQueueSize is the task queue capacity used by New.
const DefaultQueueSize = 256

// Loop runs tasks one at a time on a single goroutine.
type Loop struct {
	tasks     chan func()
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
	workers   sync.WaitGroup

	logger    *slog.Logger
	afterTask func()
	queueSize int
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for panics and dropped tasks.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithQueueSize sets the task queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// WithAfterTask registers fn to run on the loop after every task.
// A live session uses it to flush document patches.
func WithAfterTask(fn func()) Option {
	return func(l *Loop) {
		l.afterTask = fn
	}
}

// New creates a Loop. It does nothing until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		done:      make(chan struct{}),
		logger:    slog.Default(),
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.tasks = make(chan func(), l.queueSize)
	return l
}

// Run executes tasks until ctx is cancelled or Close is called.
// It returns ctx.Err() on cancellation and nil after Close.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
			return nil
		case task := <-l.tasks:
			l.exec(task)
		}
	}
}

// exec runs a single task and the after-task hook, recovering panics.
func (l *Loop) exec(task func()) {
	l.safe("task", task)
	if l.afterTask != nil {
		l.safe("after task", l.afterTask)
	}
}

func (l *Loop) safe(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop panic",
				"in", what,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Dispatch queues fn to run on the loop. It blocks while the queue is
// full and reports false if the loop is closed. Dispatch must not be
// called from a task: use it from timers and worker goroutines.
func (l *Loop) Dispatch(fn func()) bool {
	if l.closed.Load() {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// TryDispatch queues fn without blocking.
func (l *Loop) TryDispatch(fn func()) error {
	if l.closed.Load() {
		return ErrClosed
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	default:
		l.logger.Warn("loop queue full, dropping task")
		return ErrQueueFull
	}
}

// AfterFunc runs fn on the loop once d has elapsed. The returned function
// cancels the timer and reports whether it stopped it before it fired.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (stop func() bool) {
	t := time.AfterFunc(d, func() {
		l.Dispatch(fn)
	})
	return t.Stop
}

// Close stops the loop. Pending tasks are discarded and continuations of
// in-flight work are dropped. Close is idempotent.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// Done returns a channel closed by Close.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until every goroutine started with Go has returned.
func (l *Loop) Wait() {
	l.workers.Wait()
}

// Go runs work on its own goroutine and then done on the loop with the
// result. If the loop is closed before work returns, done is not called.
func Go[T any](l *Loop, work func() (T, error), done func(T, error)) {
	l.workers.Add(1)
	go func() {
		defer l.workers.Done()
		v, err := work()
		l.Dispatch(func() { done(v, err) })
	}()
}
