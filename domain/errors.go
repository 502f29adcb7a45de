package domain

import "fmt"

// ErrorCode is one of the seven stable, negative error categories the
// client API can report. Zero means success and is never wrapped in an
// Error value.
type ErrorCode int

const (
	Success             ErrorCode = 0
	EventBufferFull     ErrorCode = -1
	InvalidParameter    ErrorCode = -2
	NoMem               ErrorCode = -3
	NotFound            ErrorCode = -4
	PropertyError       ErrorCode = -5
	PropertyUnavailable ErrorCode = -6
	Uninitialized       ErrorCode = -7
)

var errorStrings = map[ErrorCode]string{
	Success:             "success",
	EventBufferFull:     "request buffer full",
	InvalidParameter:    "invalid parameter",
	NoMem:               "memory allocation failed",
	NotFound:            "not found",
	PropertyError:       "error accessing property",
	PropertyUnavailable: "property unavailable",
	Uninitialized:       "core not initialized",
}

// ErrorString returns the stable, human-readable description of code, or
// "unknown error" for an unrecognized code.
func ErrorString(code ErrorCode) string {
	if s, ok := errorStrings[code]; ok {
		return s
	}
	return "unknown error"
}

// Error wraps one of the ErrorCode categories with the operation that
// failed and, optionally, an underlying cause. Callers can match against
// the category with errors.Is(err, domain.ErrNotFound) etc., or unwrap to
// the cause for diagnostics.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, ErrorString(e.Code), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, ErrorString(e.Code))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match against a bare sentinel (e.g. domain.ErrNotFound)
// purely by error code, ignoring Op and Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError builds an *Error for op, wrapping cause (which may be nil).
func NewError(code ErrorCode, op string, cause error) *Error {
	return &Error{Code: code, Op: op, Err: cause}
}

// Sentinel errors for fast errors.Is checks without constructing a new
// value, one per non-success ErrorCode.
var (
	ErrEventBufferFull     = &Error{Code: EventBufferFull}
	ErrInvalidParameter    = &Error{Code: InvalidParameter}
	ErrNoMem               = &Error{Code: NoMem}
	ErrNotFound            = &Error{Code: NotFound}
	ErrPropertyError       = &Error{Code: PropertyError}
	ErrPropertyUnavailable = &Error{Code: PropertyUnavailable}
	ErrUninitialized       = &Error{Code: Uninitialized}
)
