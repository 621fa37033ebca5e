package irc

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLine is returned for a received line that cannot be parsed.
	// It is never fatal to a session.
	ErrMalformedLine = errors.New("malformed line")

	// ErrConnectionClosed means the server closed the stream.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrConnectionFault wraps any lower-level I/O error other than an orderly close.
	ErrConnectionFault = errors.New("connection fault")

	// ErrRegistrationFailed means the handshake ended before the welcome numeric.
	ErrRegistrationFailed = errors.New("registration failed")

	// ErrInvalidLine is returned by Send for lines containing CR, LF or NUL.
	ErrInvalidLine = errors.New("outbound line contains forbidden characters")

	// ErrNotConnected is returned when sending before a stream is attached.
	ErrNotConnected = errors.New("not connected")

	// ErrSessionStarted is returned when extensions are replaced after Run began.
	ErrSessionStarted = errors.New("session already running")
)

// ExtensionFault records an error or panic raised by an extension handler.
type ExtensionFault struct {
	Extension string
	Message   *Message
	Err       error
}

func (f *ExtensionFault) Error() string {
	return fmt.Sprintf("extension %q failed on %q: %v", f.Extension, f.Message.Raw(), f.Err)
}

func (f *ExtensionFault) Unwrap() error { return f.Err }

// HookFault records an error or panic raised by a hook.
type HookFault struct {
	Command string
	Message *Message
	Err     error
}

func (f *HookFault) Error() string {
	return fmt.Sprintf("hook for %s failed on %q: %v", f.Command, f.Message.Raw(), f.Err)
}

func (f *HookFault) Unwrap() error { return f.Err }

// panicError converts a recovered panic value into an error.
func panicError(v interface{}) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
