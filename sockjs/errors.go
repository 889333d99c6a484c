package sockjs

import (
	"errors"
	"fmt"
)

// ErrSessionNotOpen is returned by operations that require an active
// session (Send/Recv-style calls) once the session has moved past its
// active lifetime.
var ErrSessionNotOpen = errors.New("sockjs: session not in open state")

// ErrConnectionDone is the default, unqualified reason passed to
// ConnectionLost when the host environment has nothing more specific
// to say: an ordinary, expected end of the underlying transport.
var ErrConnectionDone = errors.New("sockjs: connection done")

// errSessionExpired is the value the session-timeout clock delivers on
// expiry. It never reaches the application: the owning Session
// translates it under its lock into either a SessionTimeoutError or,
// when the application had already initiated the close, a plain
// ErrConnectionDone.
var errSessionExpired = errors.New("sockjs: session expired")

// InvalidDataKind distinguishes the two ways an inbound frame body can
// fail to decode.
type InvalidDataKind int

const (
	// NoPayload means the inbound request body was empty.
	NoPayload InvalidDataKind = iota
	// BadJSON means the inbound request body was not valid JSON.
	BadJSON
)

// InvalidData reports that dataReceived was given a body it could not
// use. It carries the exact wire message the caller should relay back
// to the peer as an HTTP error body.
type InvalidData struct {
	Kind InvalidDataKind
	Err  error
}

func (e *InvalidData) Error() string {
	return fmt.Sprintf("sockjs: could not decode data: %s", e.wireMessage())
}

func (e *InvalidData) Unwrap() error { return e.Err }

// WireMessage is the exact body an HTTP handler should write back to
// the peer for this failure.
func (e *InvalidData) WireMessage() []byte { return []byte(e.wireMessage()) }

func (e *InvalidData) wireMessage() string {
	switch e.Kind {
	case NoPayload:
		return "Payload expected.\n"
	case BadJSON:
		return "Broken JSON encoding.\n"
	default:
		return "Broken JSON encoding.\n"
	}
}

// SessionTimeoutError is the reason handed to the wrapped
// application's ConnectionLost when a detached session has exceeded
// its inactivity window.
type SessionTimeoutError struct{}

func (SessionTimeoutError) Error() string { return "sockjs: session timeout" }

// IsSessionTimeout reports whether err is (or wraps) a SessionTimeoutError.
func IsSessionTimeout(err error) bool {
	var e SessionTimeoutError
	return errors.As(err, &e)
}

// ProtocolMisuseError is raised when the programmer, not the peer,
// has misused a timer: scheduling a stopped heartbeat, or
// starting/resetting an expired session timeout.
type ProtocolMisuseError struct {
	Msg string
}

func (e *ProtocolMisuseError) Error() string { return "sockjs: protocol misuse: " + e.Msg }
