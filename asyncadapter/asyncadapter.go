// Package asyncadapter supplies a thin async wrapper around a
// synchronous rmap.Client: GetLater/PutLater/RemoveLater submit a
// Client operation to a single-thread executor and hand back a
// future-like handle. The Client itself stays synchronous; this
// package only schedules calls onto it off the caller's goroutine.
package asyncadapter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var log = logger.GetLogger("rmap/asyncadapter")

// shutdownGrace bounds how long Close waits for the worker to drain its
// queue before giving up.
const shutdownGrace = 20 * time.Second

// Future is a future-like handle for one task submitted to an Adapter's
// worker. Cancellation is cooperative: Cancel only prevents a
// not-yet-started task from running; a task already being executed by
// the worker runs to completion and Get still waits for it.
type Future[T any] struct {
	done      chan struct{}
	result    T
	err       error
	cancelled atomic.Bool
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(result T, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Cancel marks the task cancelled. If the worker has not yet dequeued
// it, it is skipped entirely and Get returns context.Canceled.
func (f *Future[T]) Cancel() {
	f.cancelled.Store(true)
}

// Get blocks until the task completes, the calling context is
// cancelled, or the worker reaches a task cancelled before it started
// and skips it — whichever happens first.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// task is the adapter's type-erased unit of work: run executes the
// wrapped Client call and writes its outcome into the caller's Future,
// unless the Future was cancelled first, in which case skip completes it
// with context.Canceled instead.
type task struct {
	id        uint64
	cancelled func() bool
	run       func()
	skip      func()
}

// Adapter runs tasks against a single daemon worker goroutine, lazily
// created on first use (checked under mu) and shut down with
// shutdownGrace by Close. Pending tasks are indexed by a monotonic id
// in an xsync.MapOf, used here to track pending async futures rather
// than in-flight wire requests, since the underlying Client itself
// never multiplexes.
type Adapter struct {
	mu                sync.Mutex
	queue             chan task
	quit              chan struct{}
	closeOnce         sync.Once
	wg                sync.WaitGroup
	started           bool
	nextID            atomic.Uint64
	pending           *xsync.MapOf[uint64, func() bool]
	keepAliveInterval time.Duration
	heartbeat         func() error
}

// Option configures an Adapter at construction time.
type Option func(*Adapter)

// WithKeepAlive arms the worker's idle ticker: whenever interval elapses
// with no task pending, heartbeat is invoked to keep the underlying
// Client's connection from sitting idle long enough for the server (or
// an intermediary) to time it out. A zero interval (the default, when
// this option is omitted) disables the ticker entirely.
func WithKeepAlive(interval time.Duration, heartbeat func() error) Option {
	return func(a *Adapter) {
		a.keepAliveInterval = interval
		a.heartbeat = heartbeat
	}
}

// PendingCount reports how many tasks are currently queued (the worker
// removes a task from pending the moment it dequeues it, so a task
// mid-run no longer counts).
func (a *Adapter) PendingCount() int {
	return a.pending.Size()
}

// New constructs an Adapter. The worker goroutine is not started until
// the first task is submitted.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		queue:   make(chan task, 64),
		quit:    make(chan struct{}),
		pending: xsync.NewMapOf[uint64, func() bool](),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) ensureStarted() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return
	}
	a.started = true
	a.wg.Add(1)
	go a.run()
}

func (a *Adapter) run() {
	defer a.wg.Done()

	var tick <-chan time.Time
	if a.keepAliveInterval > 0 && a.heartbeat != nil {
		ticker := time.NewTicker(a.keepAliveInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case t, ok := <-a.queue:
			if !ok {
				return
			}
			a.pending.Delete(t.id)
			if t.cancelled() {
				log.Debugf("task %d cancelled before execution, skipping", t.id)
				t.skip()
				continue
			}
			t.run()
		case <-tick:
			if a.pending.Size() > 0 {
				continue
			}
			if err := a.heartbeat(); err != nil {
				log.Warningf("idle keep-alive heartbeat failed: %v", err)
			}
		case <-a.quit:
			return
		}
	}
}

// submit enqueues run, wrapped so its result lands in the returned
// Future, and returns that Future immediately.
func submit[T any](a *Adapter, run func() (T, error)) *Future[T] {
	a.ensureStarted()

	future := newFuture[T]()
	id := a.nextID.Add(1)
	a.pending.Store(id, func() bool { return future.cancelled.Load() })

	t := task{
		id:        id,
		cancelled: func() bool { return future.cancelled.Load() },
		run: func() {
			result, err := run()
			future.complete(result, err)
		},
		skip: func() {
			var zero T
			future.complete(zero, context.Canceled)
		},
	}

	select {
	case a.queue <- t:
	case <-a.quit:
		var zero T
		future.complete(zero, context.Canceled)
	}
	return future
}

// GetLater submits get to the worker and returns a Future for its
// result — the asynchronous counterpart to Client.Get.
func GetLater[T any](a *Adapter, get func() (T, bool, error)) *Future[Result[T]] {
	return submit(a, func() (Result[T], error) {
		v, ok, err := get()
		return Result[T]{Value: v, OK: ok}, err
	})
}

// Result carries Client.Get's (value, ok) pair through a single
// Future result type.
type Result[T any] struct {
	Value T
	OK    bool
}

// PutLater submits put to the worker and returns a Future for its
// result — the asynchronous counterpart to Client.Put.
func PutLater[T any](a *Adapter, put func() (T, bool, error)) *Future[Result[T]] {
	return submit(a, func() (Result[T], error) {
		v, ok, err := put()
		return Result[T]{Value: v, OK: ok}, err
	})
}

// RemoveLater submits remove to the worker and returns a Future for its
// result — the asynchronous counterpart to Client.Remove.
func RemoveLater[T any](a *Adapter, remove func() (T, bool, error)) *Future[Result[T]] {
	return submit(a, func() (Result[T], error) {
		v, ok, err := remove()
		return Result[T]{Value: v, OK: ok}, err
	})
}

// Close shuts the worker down, waiting up to shutdownGrace for any task
// already dequeued to finish before returning. Tasks still sitting in
// the queue when Close is called are dropped without running. It is
// idempotent: a second and subsequent call is a no-op, since the
// worker (if it was ever started) has already been told to quit.
func (a *Adapter) Close() error {
	a.closeOnce.Do(func() {
		close(a.quit)

		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(shutdownGrace):
			log.Warningf("asyncadapter: worker did not stop within %s grace period", shutdownGrace)
		}
	})
	return nil
}
