package protocol

import "fmt"

// MalformedFrameError reports bytes on the notification stream that could
// not be decoded as a message. It is recoverable: the decoder discards the
// offending bytes and resynchronizes at the next status line, so callers
// should log it and keep reading.
type MalformedFrameError struct {
	// Reason describes what was wrong with the input.
	Reason string

	// Discarded is the number of bytes dropped to resynchronize.
	Discarded int

	// Err is the underlying parse error, if any.
	Err error
}

func (e *MalformedFrameError) Error() string {
	msg := fmt.Sprintf("malformed frame: %s", e.Reason)
	if e.Discarded > 0 {
		msg += fmt.Sprintf(" (%d bytes discarded)", e.Discarded)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *MalformedFrameError) Unwrap() error {
	return e.Err
}
