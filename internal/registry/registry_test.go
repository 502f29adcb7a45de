package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/mpcore/domain"
	"github.com/tejashwikalptaru/mpcore/internal/client"
	"github.com/tejashwikalptaru/mpcore/internal/logger"
)

type fakeEngine struct {
	wakeups int
}

func (f *fakeEngine) NewLogBuffer(level string) (client.LogBuffer, error) {
	return nil, nil
}

func (f *fakeEngine) WakeupInput() {
	f.wakeups++
}

func newTestRegistry() *Registry {
	return New(logger.NewTestLogger(), 8)
}

func TestNewClientAssignsRequestedName(t *testing.T) {
	r := newTestRegistry()
	h, derr := r.NewClient("main")
	require.Nil(t, derr)
	assert.Equal(t, "main", h.Name())
}

func TestNewClientDedupesWithNumericSuffix(t *testing.T) {
	r := newTestRegistry()
	h1, derr := r.NewClient("main")
	require.Nil(t, derr)
	h2, derr := r.NewClient("main")
	require.Nil(t, derr)
	h3, derr := r.NewClient("main")
	require.Nil(t, derr)

	assert.Equal(t, "main", h1.Name())
	assert.Equal(t, "main2", h2.Name())
	assert.Equal(t, "main3", h3.Name())
}

func TestNewClientAnonymousBaseName(t *testing.T) {
	r := newTestRegistry()
	h, derr := r.NewClient("")
	require.Nil(t, derr)
	assert.Equal(t, "anon", h.Name())
}

func TestDestroyRemovesClientAndDrainsRing(t *testing.T) {
	r := newTestRegistry()
	h, derr := r.NewClient("main")
	require.Nil(t, derr)
	assert.Equal(t, 1, r.Count())

	r.Destroy(h)
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, domain.StateDestroyed, h.State())

	rec := h.WaitEvent(10 * time.Millisecond)
	assert.Equal(t, domain.EventShutdown, rec.ID)
}

func TestDestroyIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	h, derr := r.NewClient("main")
	require.Nil(t, derr)
	r.Destroy(h)
	assert.NotPanics(t, func() { r.Destroy(h) })
}

func TestBroadcastReachesAllSubscribedClients(t *testing.T) {
	r := newTestRegistry()
	h1, _ := r.NewClient("a")
	h2, _ := r.NewClient("b")

	r.Broadcast(domain.EventIdle, nil)

	rec1 := h1.WaitEvent(10 * time.Millisecond)
	rec2 := h2.WaitEvent(10 * time.Millisecond)
	assert.Equal(t, domain.EventIdle, rec1.ID)
	assert.Equal(t, domain.EventIdle, rec2.ID)
}

func TestBroadcastSkipsMaskedOutClients(t *testing.T) {
	r := newTestRegistry()
	h, _ := r.NewClient("a")
	require.Nil(t, h.RequestEvent(domain.EventIdle, false))

	r.Broadcast(domain.EventIdle, nil)

	rec := h.WaitEvent(10 * time.Millisecond)
	assert.Equal(t, domain.EventNone, rec.ID)
}

func TestSendToUnknownClientReturnsNotFound(t *testing.T) {
	r := newTestRegistry()
	derr := r.SendTo("ghost", domain.EventIdle, nil)
	require.NotNil(t, derr)
	assert.Equal(t, domain.NotFound, derr.Code)
}

func TestSendToDeliversOnlyToNamedClient(t *testing.T) {
	r := newTestRegistry()
	h1, _ := r.NewClient("a")
	h2, _ := r.NewClient("b")

	derr := r.SendTo("a", domain.EventIdle, nil)
	require.Nil(t, derr)

	rec1 := h1.WaitEvent(10 * time.Millisecond)
	rec2 := h2.WaitEvent(10 * time.Millisecond)
	assert.Equal(t, domain.EventIdle, rec1.ID)
	assert.Equal(t, domain.EventNone, rec2.ID)
}

func TestWakeupInputForwardsToEngine(t *testing.T) {
	r := newTestRegistry()
	fe := &fakeEngine{}
	r.SetEngine(fe)

	r.WakeupInput()
	assert.Equal(t, 1, fe.wakeups)
}

func TestShutdownDestroysEveryClient(t *testing.T) {
	r := newTestRegistry()
	r.NewClient("a")
	r.NewClient("b")
	assert.Equal(t, 2, r.Count())

	r.Shutdown()
	assert.Equal(t, 0, r.Count())
}
