package sockjs

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultSessionTimeout is the default inactivity window for a
// detached session.
const DefaultSessionTimeout = 5 * time.Second

type timeoutState int

const (
	timeoutIdle timeoutState = iota
	timeoutArmed
	timeoutExpired
)

// SessionTimeoutTimer is a one-shot idle timer: it runs only while a
// session has no attached request, and once expired it is terminal —
// restarting it would race with the teardown already under way.
type SessionTimeoutTimer struct {
	mu       sync.Mutex
	length   time.Duration
	clock    clockwork.Clock
	state    timeoutState
	pending  clockwork.Timer
	onExpire func()
}

// NewSessionTimeoutTimer builds an idle timer that calls onExpire
// exactly once, the first time Start runs out without an intervening
// Reset or Stop.
func NewSessionTimeoutTimer(length time.Duration, clock clockwork.Clock, onExpire func()) *SessionTimeoutTimer {
	if length <= 0 {
		length = DefaultSessionTimeout
	}
	return &SessionTimeoutTimer{length: length, clock: clock, onExpire: onExpire}
}

// Start arms the timer (idle -> armed). Fails if already expired.
func (t *SessionTimeoutTimer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == timeoutExpired {
		return &ProtocolMisuseError{Msg: "cannot start an expired session timeout"}
	}
	if t.state == timeoutIdle {
		t.state = timeoutArmed
		t.pending = t.clock.AfterFunc(t.length, t.expire)
	}
	return nil
}

// Reset cancels a pending fire and returns to idle (armed -> idle).
// Fails if already expired.
func (t *SessionTimeoutTimer) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == timeoutExpired {
		return &ProtocolMisuseError{Msg: "cannot reset an expired session timeout"}
	}
	t.cancelLocked()
	t.state = timeoutIdle
	return nil
}

// Stop cancels a pending fire (armed -> idle). Idempotent; does not
// change an already-expired timer.
func (t *SessionTimeoutTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != timeoutArmed {
		return
	}
	t.cancelLocked()
	t.state = timeoutIdle
}

func (t *SessionTimeoutTimer) cancelLocked() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *SessionTimeoutTimer) expire() {
	t.mu.Lock()
	if t.state != timeoutArmed {
		t.mu.Unlock()
		return
	}
	t.state = timeoutExpired
	t.pending = nil
	cb := t.onExpire
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}
