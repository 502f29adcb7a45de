package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "request buffer full", ErrorString(EventBufferFull))
	assert.Equal(t, "core not initialized", ErrorString(Uninitialized))
	assert.Equal(t, "unknown error", ErrorString(ErrorCode(-99)))
}

func TestErrorIsMatchesByCodeOnly(t *testing.T) {
	err := NewError(NotFound, "get_property", errors.New("no such property"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrPropertyError))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(PropertyError, "set_property", cause)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestErrorMessageFormat(t *testing.T) {
	err := NewError(InvalidParameter, "command", nil)
	assert.Equal(t, "command: invalid parameter", err.Error())
}
