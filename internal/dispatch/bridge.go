// Package dispatch implements the cross-thread bridge that marshals client
// work onto the single engine goroutine, the way player_service.go runs
// its progress-update loop on its own goroutine and tears it down with a
// close-channel plus sync.WaitGroup — generalized here into a full job
// queue with synchronous and fire-and-forget submission, plus a reentrant
// suspend/resume pause.
package dispatch

import (
	"sync"
	"time"
)

// job is one unit of work the engine goroutine executes. done is nil for
// fire-and-forget (RunAsync) jobs.
type job struct {
	fn   func()
	done chan struct{}
}

// Bridge is the engine-thread message channel. All of its methods are safe
// to call from any goroutine.
type Bridge struct {
	jobs chan job

	mu           sync.Mutex
	suspendCount int

	stopCh chan struct{}
	wg     sync.WaitGroup

	idleInterval time.Duration
}

// New creates a Bridge with the given job queue capacity. A capacity of 0
// makes RunAsync block until the engine goroutine is ready to accept the
// job, which is rarely what callers want; queueCapacity should normally be
// sized to the expected burst of concurrent async requests.
func New(queueCapacity int) *Bridge {
	return &Bridge{
		jobs:         make(chan job, queueCapacity),
		stopCh:       make(chan struct{}),
		idleInterval: 50 * time.Millisecond,
	}
}

// RunLocked submits fn and blocks until the engine goroutine has run it
// exactly once. Calls from a single goroutine are executed in the order
// submitted.
func (b *Bridge) RunLocked(fn func()) {
	done := make(chan struct{})
	b.jobs <- job{fn: fn, done: done}
	<-done
}

// RunAsync enqueues fn for the engine goroutine and returns immediately.
// fn's argument, if any, should be captured by closure; there is no
// separate free step; the closure's captured state is reclaimed by the
// garbage collector once fn returns, the same role talloc_free(fn_data)
// plays in the C original.
func (b *Bridge) RunAsync(fn func()) {
	b.jobs <- job{fn: fn}
}

// Suspend cooperatively pauses the engine goroutine at its next safe
// point. Suspend is reentrant: the engine stays paused until Resume has
// been called the same number of times. The dispatch queue continues to
// be drained while suspended.
func (b *Bridge) Suspend() {
	b.mu.Lock()
	b.suspendCount++
	b.mu.Unlock()
}

// Resume reverses one Suspend call. Calling Resume more times than Suspend
// was called is a fatal programmer error and panics rather than
// under-flowing the counter.
func (b *Bridge) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.suspendCount == 0 {
		panic("dispatch: unbalanced Resume")
	}
	b.suspendCount--
}

// Suspended reports whether the engine is currently paused.
func (b *Bridge) Suspended() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.suspendCount > 0
}

// Start spawns the engine goroutine. onIdle, if non-nil, is called once per
// idle pass — i.e. whenever the job queue has been fully drained and the
// engine is not suspended — to give the caller a place to hang periodic
// work. engine.Core passes nil and drives its playback step from its own
// tick loop instead. Start must be called at most once per Bridge.
func (b *Bridge) Start(onIdle func()) {
	b.wg.Add(1)
	go b.run(onIdle)
}

// Stop signals the engine goroutine to exit and waits for it to do so.
// Jobs still queued when Stop is called are not guaranteed to run.
func (b *Bridge) Stop() {
	close(b.stopCh)
	b.wg.Wait()
}

func (b *Bridge) run(onIdle func()) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.idleInterval)
	defer ticker.Stop()

	for {
		// Drain pending jobs first; suspension never blocks this path, so
		// the dispatch queue keeps moving even while the engine is paused.
		select {
		case <-b.stopCh:
			return
		case j := <-b.jobs:
			runJob(j)
			continue
		default:
		}

		if !b.Suspended() && onIdle != nil {
			onIdle()
		}

		select {
		case <-b.stopCh:
			return
		case j := <-b.jobs:
			runJob(j)
		case <-ticker.C:
		}
	}
}

func runJob(j job) {
	j.fn()
	if j.done != nil {
		close(j.done)
	}
}
