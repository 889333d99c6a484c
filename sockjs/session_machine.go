package sockjs

// SJState is one of the seven states of the request-session state
// machine.
type SJState int

const (
	// StateNever means the session has never been attached to any request.
	StateNever SJState = iota
	// StateHave means a request is currently attached.
	StateHave
	// StateGoneEmpty means no request is attached and the buffer is empty.
	StateGoneEmpty
	// StateGonePending means no request is attached and the buffer holds data.
	StateGonePending
	// StateLoseEmpty means the session was told to close while HAVE or GONE_EMPTY.
	StateLoseEmpty
	// StateLosePending means the session was told to close while GONE_PENDING; the buffer was discarded.
	StateLosePending
	// StateDisconnected is terminal.
	StateDisconnected
)

func (s SJState) String() string {
	switch s {
	case StateNever:
		return "NEVER"
	case StateHave:
		return "HAVE"
	case StateGoneEmpty:
		return "GONE_EMPTY"
	case StateGonePending:
		return "GONE_PENDING"
	case StateLoseEmpty:
		return "LOSE_EMPTY"
	case StateLosePending:
		return "LOSE_PENDING"
	case StateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// sessionHooks are the outputs the RequestSessionMachine calls into,
// implemented by RequestSessionAdapter. The machine holds a non-owning
// handle to its hooks; the adapter's owner owns both.
type sessionHooks interface {
	// openRequest assigns the given request as current.
	openRequest(req Request)
	// establishConnection wires the request's underlying transport.
	establishConnection(req Request)
	// beginRequest arms the finished-notifier and the per-attach heartbeat.
	beginRequest()
	// completeConnection performs the one-time handshake with the
	// wrapped application: writes the open frame and calls
	// Application.ConnectionMade exactly once.
	completeConnection()
	// completeDataReceived decodes and delivers inbound data. A
	// malformed frame surfaces as an error to the original caller of
	// Receive without otherwise affecting the session.
	completeDataReceived(data []byte) error
	// completeWrite writes one data frame for the given messages,
	// used both for direct writes and for a buffer flush on attach.
	completeWrite(messages []interface{})
	// completeHeartbeat writes a heartbeat frame.
	completeHeartbeat()
	// finishCurrentRequest ends the attached request and starts the session timeout.
	finishCurrentRequest()
	// closeDuplicateRequest evicts a newcomer request with reason, leaving the incumbent untouched.
	closeDuplicateRequest(req Request, reason CloseReason)
	// completeLoseConnection passes a lose-connection signal down to the transport.
	completeLoseConnection()
	// writeCurrentClose emits a close frame on the still-attached
	// request, ahead of finishCurrentRequest ending it.
	writeCurrentClose(reason CloseReason)
	// writeCloseReason emits a previously stored close frame to a late-attaching request.
	writeCloseReason(req Request, reason CloseReason)
	// dropRequest clears the current request without finishing it (the peer is already gone).
	dropRequest()
	// closeProtocol ends the wrapped application's connection and fires the termination signal.
	closeProtocol(reason error)
}

// RequestSessionMachine is the central state machine for request-based
// (polling/streaming) transports: it outlives any single HTTP
// request, interleaving attach/detach with buffered writes,
// heartbeats, close-frame propagation and session-timeout expiry.
//
// Callers must serialise access externally; this type does no locking
// of its own.
type RequestSessionMachine struct {
	state       SJState
	buffer      []interface{}
	closeReason *CloseReason
	hooks       sessionHooks
}

// NewRequestSessionMachine builds a machine in its initial NEVER state.
func NewRequestSessionMachine(hooks sessionHooks) *RequestSessionMachine {
	return &RequestSessionMachine{state: StateNever, hooks: hooks}
}

// State returns the machine's current state, for diagnostics/tests.
func (m *RequestSessionMachine) State() SJState { return m.state }

// Attach binds req as the current request, performing whatever setup
// the current state calls for (open handshake, buffer flush, or
// evicting a duplicate/late arrival).
func (m *RequestSessionMachine) Attach(req Request) {
	switch m.state {
	case StateNever:
		m.state = StateHave
		m.hooks.openRequest(req)
		m.hooks.establishConnection(req)
		m.hooks.beginRequest()
		m.hooks.completeConnection()

	case StateHave:
		m.hooks.closeDuplicateRequest(req, StillOpen)

	case StateGoneEmpty:
		m.state = StateHave
		m.hooks.openRequest(req)
		m.hooks.beginRequest()

	case StateGonePending:
		m.state = StateHave
		m.hooks.openRequest(req)
		// The new attachment needs its notifier and heartbeat armed
		// before the flush, or a streaming request could sit attached
		// with neither.
		m.hooks.beginRequest()
		buffered := m.buffer
		m.buffer = nil
		m.hooks.completeWrite(buffered)

	case StateLoseEmpty, StateLosePending:
		if m.closeReason != nil {
			m.hooks.writeCloseReason(req, *m.closeReason)
		}

	case StateDisconnected:
		// No transition defined; a disconnected session has no request to attach to.
	}
}

// Detach releases the current request, leaving the session without an
// output channel until the next attach.
func (m *RequestSessionMachine) Detach() {
	switch m.state {
	case StateHave:
		m.state = StateGoneEmpty
		m.hooks.finishCurrentRequest()
	case StateGoneEmpty, StateGonePending, StateLosePending:
		// idempotent / no-op
	}
}

// Write sends data — the payload of one write call — immediately if a
// request is attached, and otherwise holds it in the buffer. Each
// buffered payload flushes as one element of the aggregated data frame
// the next attach emits.
func (m *RequestSessionMachine) Write(data []interface{}) {
	switch m.state {
	case StateHave:
		m.hooks.completeWrite(data)
	case StateGoneEmpty:
		m.state = StateGonePending
		m.buffer = append(m.buffer, data)
	case StateGonePending:
		m.buffer = append(m.buffer, data)
	}
}

// Receive delivers inbound bytes from the wire. It returns a non-nil
// error only when data failed to decode; the session itself is
// unaffected either way.
func (m *RequestSessionMachine) Receive(data []byte) error {
	switch m.state {
	case StateHave, StateGoneEmpty, StateGonePending:
		return m.hooks.completeDataReceived(data)
	}
	return nil
}

// Heartbeat sends a heartbeat if a request is attached; otherwise the
// output is suppressed, never queued.
func (m *RequestSessionMachine) Heartbeat() {
	if m.state == StateHave {
		m.hooks.completeHeartbeat()
	}
}

// WriteClose remembers reason; it does not itself emit a close frame.
// The frame is sent either when LoseConnection follows on the
// still-attached request, or to the next request that attaches after
// the session has started closing.
func (m *RequestSessionMachine) WriteClose(reason CloseReason) {
	switch m.state {
	case StateHave, StateGoneEmpty, StateGonePending:
		r := reason
		m.closeReason = &r
	}
}

// LoseConnection tells the session to finish up: emit any stored close
// reason on the current request, discard any pending buffer, and hand
// off to completeLoseConnection.
func (m *RequestSessionMachine) LoseConnection() {
	switch m.state {
	case StateHave:
		m.state = StateLoseEmpty
		if m.closeReason != nil {
			m.hooks.writeCurrentClose(*m.closeReason)
		}
		m.hooks.finishCurrentRequest()
		m.hooks.completeLoseConnection()
	case StateGoneEmpty:
		m.state = StateLoseEmpty
		m.hooks.completeLoseConnection()
	case StateGonePending:
		// The peer has chosen to close; queued data is lost on purpose.
		m.state = StateLosePending
		m.buffer = nil
		m.hooks.completeLoseConnection()
	}
}

// ConnectionLost tears the session down for good: the underlying
// transport (the request, or the process holding it) is gone.
func (m *RequestSessionMachine) ConnectionLost(reason error) {
	switch m.state {
	case StateHave:
		m.state = StateDisconnected
		m.hooks.dropRequest()
		m.hooks.closeProtocol(reason)

	case StateGoneEmpty:
		m.state = StateDisconnected
		m.hooks.closeProtocol(reason)

	case StateGonePending:
		m.state = StateDisconnected
		m.hooks.dropRequest()
		m.hooks.closeProtocol(timedOutReason(reason))

	case StateLoseEmpty:
		m.state = StateDisconnected
		m.hooks.closeProtocol(reason)

	case StateLosePending:
		m.state = StateDisconnected
		m.hooks.closeProtocol(timedOutReason(reason))
	}
}

// timedOutReason converts a plain, unqualified "connection done"
// reason into a SessionTimeout failure, so callers can distinguish an
// orderly close from a session that dropped buffered data on the way
// out.
func timedOutReason(reason error) error {
	if reason == ErrConnectionDone {
		return SessionTimeoutError{}
	}
	return reason
}
