// SPDX-License-Identifier: Unlicense OR MIT

// Package mainloop implements the single toolkit thread that dispatches
// events, lays out and paints.
//
// Tasks carry a priority; a task runs only when no task of a numerically
// lower priority is pending, and tasks of equal priority run in submission
// order. The idle priorities therefore run once regular work has drained.
package mainloop

import (
	"container/heap"
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Priority orders tasks. Lower values run first.
type Priority int

const (
	PriorityHigh        Priority = -100
	PriorityDefault     Priority = 0
	PriorityHighIdle    Priority = 100
	PriorityRedraw      Priority = PriorityHighIdle + 20
	PriorityDefaultIdle Priority = 200
	PriorityLow         Priority = 300
)

// Loop is a priority task queue drained by the goroutine calling Run.
type Loop struct {
	mu    sync.Mutex
	tasks taskHeap
	seq   uint64
	wake  chan struct{}

	// tid is the OS thread running the loop, or 0.
	tid atomic.Int64

	onRun func() func()
}

type task struct {
	prio Priority
	seq  uint64
	f    func()
}

func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Invoke queues f to run on the loop at priority p. It never blocks.
func (l *Loop) Invoke(p Priority, f func()) {
	l.mu.Lock()
	l.seq++
	heap.Push(&l.tasks, task{prio: p, seq: l.seq, f: f})
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Sync runs f on the loop at the default priority and waits for it to
// complete. Called from the loop itself, it runs f directly.
func (l *Loop) Sync(f func()) {
	if l.InLoop() {
		f()
		return
	}
	done := make(chan struct{})
	l.Invoke(PriorityDefault, func() {
		defer close(done)
		f()
	})
	<-done
}

// OnRun sets a function Run calls on the loop's OS thread before the first
// task. The function it returns, if not nil, runs on the same thread when
// Run returns. OnRun must be called before Run.
func (l *Loop) OnRun(f func() (done func())) {
	l.onRun = f
}

// InLoop reports whether the caller is the goroutine running the loop.
func (l *Loop) InLoop() bool {
	tid := l.tid.Load()
	return tid != 0 && int64(unix.Gettid()) == tid
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tasks.Len()
}

// Run dispatches tasks until ctx is done. It locks the calling goroutine
// to its OS thread for the duration.
func (l *Loop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	l.tid.Store(int64(unix.Gettid()))
	defer l.tid.Store(0)
	if l.onRun != nil {
		if done := l.onRun(); done != nil {
			defer done()
		}
	}
	for {
		if !l.Iterate() {
			select {
			case <-l.wake:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Iterate runs the most urgent pending task, if any, and reports whether
// it ran one.
func (l *Loop) Iterate() bool {
	l.mu.Lock()
	if l.tasks.Len() == 0 {
		l.mu.Unlock()
		return false
	}
	t := heap.Pop(&l.tasks).(task)
	l.mu.Unlock()
	t.f()
	return true
}

type taskHeap []task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].prio != h[j].prio {
		return h[i].prio < h[j].prio
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = task{}
	*h = old[:n-1]
	return t
}
