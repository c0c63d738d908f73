package speaker

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeConnection indicates a network-level failure (dial, read or
	// write on the control connection)
	ErrTypeConnection ErrorType = iota
	// ErrTypeNotConnected indicates an operation that requires an
	// established connection was called without one
	ErrTypeNotConnected
	// ErrTypeInvalidArgument indicates a caller-supplied value was rejected
	// before anything was sent to the speaker
	ErrTypeInvalidArgument
	// ErrTypeTimeout indicates the speaker did not answer within the
	// request timeout
	ErrTypeTimeout
	// ErrTypeRejected indicates the speaker answered with a non-ok result
	ErrTypeRejected
	// ErrTypeGroup indicates a multiroom group operation failed partway
	ErrTypeGroup
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeConnection:
		return "Connection Error"
	case ErrTypeNotConnected:
		return "Not Connected"
	case ErrTypeInvalidArgument:
		return "Invalid Argument"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeRejected:
		return "Command Rejected"
	case ErrTypeGroup:
		return "Group Operation Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error represents a failure while talking to a speaker.
type Error struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable error message
	Addr    string    // Speaker address (for context)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Addr != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Addr)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same type, so callers can test categories with
// errors.Is(err, &speaker.Error{Type: speaker.ErrTypeTimeout}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Type == t.Type
}

// NewConnectionError creates a network-level error
func NewConnectionError(message, addr string, err error) *Error {
	return &Error{Type: ErrTypeConnection, Message: message, Addr: addr, Err: err}
}

// NewNotConnectedError creates an error for operations without a connection
func NewNotConnectedError(addr string) *Error {
	return &Error{Type: ErrTypeNotConnected, Message: "speaker is not connected", Addr: addr}
}

// NewInvalidArgumentError creates a validation error
func NewInvalidArgumentError(message string) *Error {
	return &Error{Type: ErrTypeInvalidArgument, Message: message}
}

// NewTimeoutError creates an error for a request the speaker never answered
func NewTimeoutError(method, addr string, err error) *Error {
	return &Error{
		Type:    ErrTypeTimeout,
		Message: fmt.Sprintf("no %s response from speaker", method),
		Addr:    addr,
		Err:     err,
	}
}

// NewRejectedError creates an error for a non-ok speaker response
func NewRejectedError(method, addr string) *Error {
	return &Error{
		Type:    ErrTypeRejected,
		Message: fmt.Sprintf("speaker rejected %s", method),
		Addr:    addr,
	}
}

// NewGroupError creates an error for a failed group operation
func NewGroupError(message string, err error) *Error {
	return &Error{Type: ErrTypeGroup, Message: message, Err: err}
}

// IsTimeout reports whether err is a speaker timeout error
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrTypeTimeout
}

// IsNotConnected reports whether err is a not-connected error
func IsNotConnected(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrTypeNotConnected
}
