// Package runloop provides the single-threaded cooperative scheduler that
// stands in for the host editor's UI thread. All orchestration state is
// touched only from loop tasks, so no locks guard it; network calls run off
// the loop and post their continuations back.
package runloop

import (
	"context"
	"sync"
	"time"
)

// Task is a unit of work executed on the loop.
type Task func()

// Key identifies a key event delivered to the loop.
type Key string

const KeyEscape Key = "Escape"

// Loop drains a task queue on a single goroutine. NextTick tasks run only
// after the current queue is empty, giving callers a "run after related
// state settles" primitive instead of a fixed-delay timer.
type Loop struct {
	mu          sync.Mutex
	queue       []Task
	deferred    []Task
	keyHandlers []func(Key)
	inflight    int
	wake        chan struct{}
}

func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post schedules a task on the current queue.
func (l *Loop) Post(t Task) {
	l.mu.Lock()
	l.queue = append(l.queue, t)
	l.mu.Unlock()
	l.signal()
}

// NextTick schedules a task to run once the current queue has drained.
func (l *Loop) NextTick(t Task) {
	l.mu.Lock()
	l.deferred = append(l.deferred, t)
	l.mu.Unlock()
	l.signal()
}

// Go runs fn on its own goroutine and posts the task it returns back onto
// the loop. A nil continuation is dropped. The loop counts in-flight work so
// Settle can wait for it.
func (l *Loop) Go(fn func() Task) {
	l.mu.Lock()
	l.inflight++
	l.mu.Unlock()

	go func() {
		cont := fn()

		l.mu.Lock()
		l.inflight--

		if cont != nil {
			l.queue = append(l.queue, cont)
		}
		l.mu.Unlock()
		l.signal()
	}()
}

// OnKey registers a process-lifetime key listener. Listeners are never
// removed.
func (l *Loop) OnKey(h func(Key)) {
	l.mu.Lock()
	l.keyHandlers = append(l.keyHandlers, h)
	l.mu.Unlock()
}

// Key delivers a key event as a loop task.
func (l *Loop) Key(k Key) {
	l.Post(func() {
		l.mu.Lock()
		handlers := make([]func(Key), len(l.keyHandlers))
		copy(handlers, l.keyHandlers)
		l.mu.Unlock()

		for _, h := range handlers {
			h(k)
		}
	})
}

// Run drains tasks until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		l.runPending()

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// Settle drives the loop on the calling goroutine until both queues are
// empty and no in-flight work remains, or the timeout expires. It reports
// whether the loop went idle. Intended for tests and headless runs.
func (l *Loop) Settle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for {
		l.runPending()

		l.mu.Lock()
		pending := len(l.queue) + len(l.deferred)
		inflight := l.inflight
		l.mu.Unlock()

		if pending == 0 && inflight == 0 {
			return true
		}

		if time.Now().After(deadline) {
			return false
		}

		if pending == 0 {
			select {
			case <-l.wake:
			case <-time.After(time.Millisecond):
			}
		}
	}
}

// runPending executes queued tasks. When the queue empties, the deferred
// queue is promoted wholesale: that promotion is the "next tick".
func (l *Loop) runPending() {
	for {
		l.mu.Lock()

		if len(l.queue) == 0 && len(l.deferred) > 0 {
			l.queue, l.deferred = l.deferred, nil
		}

		if len(l.queue) == 0 {
			l.mu.Unlock()

			return
		}

		t := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		t()
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
