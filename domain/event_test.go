package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventIDName(t *testing.T) {
	assert.Equal(t, "none", EventNone.Name())
	assert.Equal(t, "tick", EventTick.Name())
	assert.Equal(t, "script-input-dispatch", EventScriptInputDispatch.Name())
	assert.Equal(t, "", EventID(-1).Name())
	assert.Equal(t, "", EventID(999).Name())
}

func TestEventIDValid(t *testing.T) {
	assert.True(t, EventNone.Valid())
	assert.True(t, EventScriptInputDispatch.Valid())
	assert.False(t, EventID(-1).Valid())
	assert.False(t, EventID(16).Valid())
}

func TestAllEventsMaskHasEveryBit(t *testing.T) {
	mask := AllEventsMask()
	for id := EventID(0); id <= EventScriptInputDispatch; id++ {
		assert.NotZero(t, mask&id.Bit(), "bit for %s missing", id.Name())
	}
}

func TestClientAPIVersionLayout(t *testing.T) {
	v := ClientAPIVersion(1, 7)
	assert.Equal(t, uint32(1)<<16|7, v)
	assert.Equal(t, uint16(1), uint16(v>>16))
	assert.Equal(t, uint16(7), uint16(v&0xFFFF))
}
