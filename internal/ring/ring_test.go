package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/mpcore/domain"
)

func TestNewDefaultsCapacity(t *testing.T) {
	r := New(0)
	assert.Equal(t, domain.MaxEvents, r.Capacity())
}

func TestWriteReadFIFOOrder(t *testing.T) {
	r := New(4)
	require.True(t, r.Write(domain.EventRecord{ID: domain.EventOK, InReplyTo: 1}))
	require.True(t, r.Write(domain.EventRecord{ID: domain.EventError, InReplyTo: 2}))

	first, ok := r.Read()
	require.True(t, ok)
	assert.Equal(t, uint64(1), first.InReplyTo)

	second, ok := r.Read()
	require.True(t, ok)
	assert.Equal(t, uint64(2), second.InReplyTo)

	_, ok = r.Read()
	assert.False(t, ok)
}

func TestWriteRefusedWhenFull(t *testing.T) {
	r := New(2)
	require.True(t, r.Write(domain.EventRecord{ID: domain.EventTick}))
	require.True(t, r.Write(domain.EventRecord{ID: domain.EventTick}))
	assert.False(t, r.Write(domain.EventRecord{ID: domain.EventTick}))
	assert.Equal(t, 0, r.Available())
}

func TestAvailableAndBufferedTrackEachOther(t *testing.T) {
	r := New(3)
	assert.Equal(t, 3, r.Available())
	assert.Equal(t, 0, r.Buffered())

	r.Write(domain.EventRecord{})
	assert.Equal(t, 2, r.Available())
	assert.Equal(t, 1, r.Buffered())

	r.Read()
	assert.Equal(t, 3, r.Available())
	assert.Equal(t, 0, r.Buffered())
}

func TestWrapAroundPreservesOrder(t *testing.T) {
	r := New(3)
	r.Write(domain.EventRecord{InReplyTo: 1})
	r.Write(domain.EventRecord{InReplyTo: 2})
	r.Read() // head advances past slot 0
	r.Write(domain.EventRecord{InReplyTo: 3})
	r.Write(domain.EventRecord{InReplyTo: 4})

	var got []uint64
	for {
		rec, ok := r.Read()
		if !ok {
			break
		}
		got = append(got, rec.InReplyTo)
	}
	assert.Equal(t, []uint64{2, 3, 4}, got)
}

func TestDrainReturnsAllInOrderAndEmpties(t *testing.T) {
	r := New(4)
	r.Write(domain.EventRecord{InReplyTo: 10})
	r.Write(domain.EventRecord{InReplyTo: 11})

	drained := r.Drain()
	assert.Equal(t, []uint64{10, 11}, []uint64{drained[0].InReplyTo, drained[1].InReplyTo})
	assert.Equal(t, 0, r.Buffered())
}
