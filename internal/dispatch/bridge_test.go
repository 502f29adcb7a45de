package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/mpcore/internal/testutil"
)

func TestRunLockedBlocksUntilExecuted(t *testing.T) {
	b := New(4)
	b.Start(nil)
	defer b.Stop()

	var ran int32
	b.RunLocked(func() {
		atomic.StoreInt32(&ran, 1)
	})
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestRunLockedPreservesSubmitterOrder(t *testing.T) {
	b := New(16)
	b.Start(nil)
	defer b.Stop()

	var order []int
	var mu sync.Mutex
	for i := 0; i < 20; i++ {
		i := i
		b.RunLocked(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	expected := make([]int, 20)
	for i := range expected {
		expected[i] = i
	}
	assert.Equal(t, expected, order)
}

func TestRunAsyncEventuallyRuns(t *testing.T) {
	b := New(4)
	b.Start(nil)
	defer b.Stop()

	done := make(chan struct{})
	b.RunAsync(func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async job never ran")
	}
}

func TestSuspendBlocksIdleWorkButDrainsJobs(t *testing.T) {
	b := New(4)
	var idleCount int32
	b.Start(func() {
		atomic.AddInt32(&idleCount, 1)
	})
	defer b.Stop()

	b.Suspend()
	require.True(t, b.Suspended())

	// Jobs still get processed while suspended.
	done := make(chan struct{})
	b.RunAsync(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job was not drained while suspended")
	}

	before := atomic.LoadInt32(&idleCount)
	time.Sleep(150 * time.Millisecond)
	after := atomic.LoadInt32(&idleCount)
	assert.Equal(t, before, after, "onIdle must not run while suspended")

	b.Resume()
	require.False(t, b.Suspended())

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&idleCount) > after
	}, time.Second, 10*time.Millisecond)
}

func TestSuspendIsReentrant(t *testing.T) {
	b := New(1)
	b.Suspend()
	b.Suspend()
	assert.True(t, b.Suspended())
	b.Resume()
	assert.True(t, b.Suspended())
	b.Resume()
	assert.False(t, b.Suspended())
}

func TestUnbalancedResumePanics(t *testing.T) {
	b := New(1)
	assert.Panics(t, func() {
		b.Resume()
	})
}

func TestStopJoinsGoroutine(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	b := New(1)
	b.Start(nil)
	b.Stop() // must return, not hang
}
