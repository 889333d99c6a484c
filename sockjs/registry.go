package sockjs

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/sockjscore/sockjs/internal/logging"
)

// ErrInvalidSessionID is returned when a session-URL segment (server
// id, session id, or transport name) is empty or contains a dot.
var ErrInvalidSessionID = errors.New("sockjs: invalid session identifier")

// SessionRegistry owns every live request-based Session, keyed by its
// wire session id, and is the attach/write entry point an HTTP handler
// calls into.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      Config
	clock    clockwork.Clock
	newApp   func() Application
}

// NewSessionRegistry builds a registry. newApp is called once per
// session to build the Application instance that session's Conn will
// be handed to.
func NewSessionRegistry(cfg Config, newApp func() Application, clock clockwork.Clock) *SessionRegistry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		cfg:      cfg.WithDefaults(),
		clock:    clock,
		newApp:   newApp,
	}
}

// ValidateSegment checks one session-URL path segment: it must be
// non-empty and must not contain a dot.
func ValidateSegment(segment string) error {
	if segment == "" || strings.Contains(segment, ".") {
		return ErrInvalidSessionID
	}
	return nil
}

func validateSegments(segments ...string) error {
	for _, seg := range segments {
		if err := ValidateSegment(seg); err != nil {
			return err
		}
	}
	return nil
}

// AttachToSession validates the URL segments, finds or creates the
// session named sessionID, and attaches req to it. kind selects
// Polling or Streaming framing for a newly created session; it is
// ignored for one that already exists. The streaming byte cutoff
// comes from the registry's Config, so hosts tune it in one place.
func (r *SessionRegistry) AttachToSession(serverID, sessionID, transport string, kind TransportKind, req Request) (*Session, error) {
	if err := validateSegments(serverID, sessionID, transport); err != nil {
		return nil, err
	}

	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	if !ok {
		session = NewSession(sessionID, r.variantFor(kind), r.cfg, r.newApp(), r.clock)
		r.sessions[sessionID] = session
		go r.watchTermination(sessionID, session)
	}
	r.mu.Unlock()

	session.Attach(req)
	return session, nil
}

func (r *SessionRegistry) variantFor(kind TransportKind) Variant {
	if kind == Streaming {
		return StreamingVariant(r.cfg.XHRStreamingMaximumBytes)
	}
	return PollingVariant()
}

// WriteToSession validates the URL segments and delivers one inbound
// request body to the named session. ErrSessionNotOpen is returned if
// no such session exists.
func (r *SessionRegistry) WriteToSession(serverID, sessionID, transport string, data []byte) error {
	if err := validateSegments(serverID, sessionID, transport); err != nil {
		return err
	}

	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotOpen
	}
	return session.DataReceived(data)
}

// Lookup returns the named session, if any, for hosts that need direct
// access to a live request-based session.
func (r *SessionRegistry) Lookup(sessionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}

// watchTermination removes session from the registry once it
// terminates. An ordinary connection-done, an application-initiated
// close, and a session timeout are the expected ways out; anything
// else gets a log line.
func (r *SessionRegistry) watchTermination(sessionID string, session *Session) {
	reason := <-session.Done()

	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if isExpectedTermination(reason) {
		return
	}

	logger := logging.Scoped("registry")
	logger.Warn().
		Str("session_id", sessionID).
		Str("correlation_id", uuid.NewString()).
		Err(reason).
		Msg("session terminated unexpectedly")
}

func isExpectedTermination(reason error) bool {
	if reason == nil || reason == ErrConnectionDone {
		return true
	}
	if IsSessionTimeout(reason) {
		return true
	}
	var ac AppClosedError
	return errors.As(reason, &ac)
}
