package sockjs

// Application is the user-supplied protocol this package carries: a
// generic byte-oriented connection that receives decoded JSON
// payloads and writes JSON-serialisable values.
//
// ConnectionMade is called exactly once, during the session's first
// attach. ConnectionLost is called exactly once, when the session's
// termination signal fires. DataReceived is called once per decoded
// inbound message.
type Application interface {
	ConnectionMade(conn Conn)
	DataReceived(v interface{})
	ConnectionLost(reason error)
}

// Conn is the bidirectional connection a Session hands to its
// Application: write a JSON-serialisable value, or close the session
// with a given reason.
type Conn interface {
	Write(v interface{}) error
	Close(reason CloseReason) error
	ID() string
}

// FinishNotifier is a one-shot signal that a Request's underlying HTTP
// response has ended, obtained from Request.NotifyFinish. Cancel is
// called by the adapter on a clean detach; a cancelled notifier must
// never subsequently fire.
type FinishNotifier interface {
	// Done delivers exactly one value: nil if the peer finished the
	// request normally, or a non-nil error if the connection dropped.
	// It is never sent to after Cancel has been called.
	Done() <-chan error
	Cancel()
}

// Request is the minimal surface a host HTTP layer must implement for
// request-based transports (XHR, XHRStreaming). Write appends raw,
// already-framed bytes to the response body.
type Request interface {
	Write(p []byte) error
	Finish()
	NotifyFinish() FinishNotifier
}
