package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/mpcore/domain"
	"github.com/tejashwikalptaru/mpcore/internal/client"
	"github.com/tejashwikalptaru/mpcore/internal/engine"
	"github.com/tejashwikalptaru/mpcore/internal/logger"
)

type fakeBroadcaster struct{}

func (fakeBroadcaster) Broadcast(id domain.EventID, data any) {}

func newTestCore(t *testing.T) *engine.Core {
	t.Helper()
	c := engine.NewCore(logger.NewTestLogger(), engine.Config{
		TickInterval:          time.Hour,
		RingCapacity:          16,
		DispatchQueueCapacity: 8,
	}, fakeBroadcaster{})
	require.NoError(t, c.Initialize())
	t.Cleanup(c.Shutdown)
	return c
}

func newTestHandle(t *testing.T) *client.Handle {
	t.Helper()
	return client.New("test", logger.NewTestLogger(), 16, func(level string) (client.LogBuffer, error) {
		return nil, nil
	})
}

func TestCommandSyncRunsOnEngineGoroutine(t *testing.T) {
	c := newTestCore(t)
	h := newTestHandle(t)

	err := Command(c, h, []string{"loadfile", "song.mp3"})
	require.NoError(t, err)

	val, err := GetProperty(c, h, "path", domain.FormatString)
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", val)
}

func TestCommandSyncRejectsUninitialized(t *testing.T) {
	c := engine.NewCore(logger.NewTestLogger(), engine.Config{DispatchQueueCapacity: 4}, fakeBroadcaster{})
	h := newTestHandle(t)

	err := Command(c, h, []string{"loadfile", "x.mp3"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUninitialized)
}

func TestCommandSyncRejectsUnknownCommand(t *testing.T) {
	c := newTestCore(t)
	h := newTestHandle(t)

	err := Command(c, h, []string{"frobnicate"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestCommandAsyncDeliversReply(t *testing.T) {
	c := newTestCore(t)
	h := newTestHandle(t)

	replyID, err := CommandAsync(c, h, []string{"loadfile", "x.mp3"})
	require.NoError(t, err)

	rec := h.WaitEvent(time.Second)
	assert.Equal(t, replyID, rec.InReplyTo)
	assert.Equal(t, domain.EventOK, rec.ID)
}

func TestSetPropertyAndGetPropertyRoundTrip(t *testing.T) {
	c := newTestCore(t)
	h := newTestHandle(t)

	require.NoError(t, SetProperty(c, h, "volume", "42"))

	val, err := GetProperty(c, h, "volume", domain.FormatString)
	require.NoError(t, err)
	assert.Equal(t, "42", val)
}

func TestSetPropertyUnknownNameReturnsNotFound(t *testing.T) {
	c := newTestCore(t)
	h := newTestHandle(t)

	err := SetProperty(c, h, "does-not-exist", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetPropertyPauseSucceeds(t *testing.T) {
	c := newTestCore(t)
	h := newTestHandle(t)

	require.NoError(t, SetProperty(c, h, "pause", "yes"))
}

func TestSetOptionBypassesBridgeBeforeInitialize(t *testing.T) {
	c := engine.NewCore(logger.NewTestLogger(), engine.Config{DispatchQueueCapacity: 4}, fakeBroadcaster{})
	h := newTestHandle(t)

	err := SetOption(c, h, "idle", "yes")
	require.NoError(t, err)
}

func TestGetPropertyAsyncDeliversPropertyPayload(t *testing.T) {
	c := newTestCore(t)
	h := newTestHandle(t)

	replyID, err := GetPropertyAsync(c, h, "volume", domain.FormatString)
	require.NoError(t, err)

	rec := h.WaitEvent(time.Second)
	assert.Equal(t, replyID, rec.InReplyTo)
	assert.Equal(t, domain.EventProperty, rec.ID)
	prop, ok := rec.Data.(domain.Property)
	require.True(t, ok)
	assert.Equal(t, "volume", prop.Name)
	assert.Equal(t, "100", prop.Data)
}

func TestGetPropertyUnsupportedFormatReturnsInvalidParameter(t *testing.T) {
	c := newTestCore(t)
	h := newTestHandle(t)

	_, err := GetProperty(c, h, "volume", domain.FormatNone)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestSuspendResumeForwardToBridge(t *testing.T) {
	c := newTestCore(t)

	Suspend(c)
	Suspend(c)
	require.True(t, c.Bridge().Suspended())

	Resume(c)
	assert.True(t, c.Bridge().Suspended())

	Resume(c)
	assert.False(t, c.Bridge().Suspended())

	assert.Panics(t, func() { Resume(c) })
}
