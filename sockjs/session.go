package sockjs

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// Session is a request-based (XHR / XHRStreaming) SockJS session: it
// wires a RequestSessionMachine to a RequestSessionAdapter behind a
// single mutex, which is the entire serialisation boundary the rest of
// the package relies on. Nothing below Session ever locks on its own.
type Session struct {
	mu      sync.Mutex
	machine *RequestSessionMachine
	adapter *RequestSessionAdapter
}

// NewSession builds a session that has never been attached to a
// request (SJState StateNever). The session timeout starts running
// immediately, so an abandoned, never-attached session still expires.
func NewSession(id string, variant Variant, cfg Config, app Application, clock clockwork.Clock) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	adapter := NewRequestSessionAdapter(id, variant, cfg, app, clock)
	s := &Session{adapter: adapter}
	s.machine = NewRequestSessionMachine(adapter)

	adapter.triggerHeartbeat = s.onHeartbeatFire
	adapter.triggerDetach = s.onAutoDetach
	adapter.reportConnectionLost = s.onConnectionLost
	adapter.writeMessage = s.writeMessage
	adapter.closeSession = s.closeSession
	return s
}

// ID is the session's wire identifier, as carried in the request URL.
func (s *Session) ID() string { return s.adapter.id }

// State reports the current SJState, chiefly for tests and diagnostics.
func (s *Session) State() SJState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Attach binds an incoming HTTP request to the session.
func (s *Session) Attach(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Attach(req)
}

// Detach releases whatever request is currently attached, as if its
// handler had returned on its own (used by a host that times out a
// streaming request itself rather than waiting on MaximumBytes).
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Detach()
}

// DataReceived delivers one inbound POST body. A non-nil error means
// the body was malformed (see InvalidData); the session is otherwise
// unaffected and the caller should write err's wire message back to
// the peer verbatim.
func (s *Session) DataReceived(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Receive(data)
}

// Done reports the session's termination reason exactly once, when the
// wrapped Application's ConnectionLost fires.
func (s *Session) Done() <-chan error { return s.adapter.Done() }

// onHeartbeatFire runs on the heartbeat timer's own goroutine; it must
// acquire the lock before touching the machine.
func (s *Session) onHeartbeatFire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Heartbeat()
}

// onAutoDetach fires synchronously from inside a hook method that the
// machine is already calling under lock (completeConnection,
// completeWrite, completeHeartbeat) — it must NOT re-acquire the lock.
func (s *Session) onAutoDetach() {
	s.machine.Detach()
}

// onConnectionLost runs on whichever goroutine noticed the underlying
// transport went away: the finished-notifier watcher, or the session
// timeout's own clock goroutine. Both require the lock. A timeout
// expiry is translated here, where disconnecting can be read safely:
// expiry on a session nobody closed is a SessionTimeout failure;
// expiry after the application initiated the close is an orderly end.
func (s *Session) onConnectionLost(reason error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reason == errSessionExpired {
		if s.adapter.disconnecting {
			reason = ErrConnectionDone
		} else {
			reason = SessionTimeoutError{}
		}
	}
	s.machine.ConnectionLost(reason)
}

// writeMessage backs Conn.Write for the Application this session wraps.
func (s *Session) writeMessage(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.machine.State() {
	case StateHave, StateGoneEmpty, StateGonePending:
		s.machine.Write([]interface{}{v})
		return nil
	default:
		return ErrSessionNotOpen
	}
}

// closeSession backs Conn.Close: store the close reason, then start
// losing the connection. Idempotent — a second close while already
// disconnecting changes nothing.
func (s *Session) closeSession(reason CloseReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter.disconnecting {
		return nil
	}
	s.adapter.disconnecting = true
	s.machine.WriteClose(reason)
	s.machine.LoseConnection()
	return nil
}
