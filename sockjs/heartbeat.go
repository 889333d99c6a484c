package sockjs

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultHeartbeatPeriod is the default interval between heartbeat
// frames.
const DefaultHeartbeatPeriod = 25 * time.Second

// HeartbeatTimer schedules a recurring heartbeat, but only fires after
// a full period of silence: every call to Schedule pushes the next
// fire back out, so a quiet connection gets exactly one heartbeat per
// period and a busy one gets none.
type HeartbeatTimer struct {
	mu             sync.Mutex
	period         time.Duration
	clock          clockwork.Clock
	writeHeartbeat func()
	pending        clockwork.Timer
	stopped        bool
}

// NewHeartbeatTimer builds a timer that invokes writeHeartbeat on
// every fire and rearms itself afterward. The timer is inert until
// Schedule is called the first time.
func NewHeartbeatTimer(period time.Duration, clock clockwork.Clock, writeHeartbeat func()) *HeartbeatTimer {
	if period <= 0 {
		period = DefaultHeartbeatPeriod
	}
	return &HeartbeatTimer{period: period, clock: clock, writeHeartbeat: writeHeartbeat}
}

// Schedule arms the next fire `period` from now, or resets an
// already-pending one back out to `period` from now.
func (h *HeartbeatTimer) Schedule() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return &ProtocolMisuseError{Msg: "can't schedule a stopped heartbeat"}
	}
	h.rearmLocked()
	return nil
}

func (h *HeartbeatTimer) rearmLocked() {
	if h.pending == nil {
		h.pending = h.clock.AfterFunc(h.period, h.fire)
	} else {
		h.pending.Reset(h.period)
	}
}

// Stop permanently cancels the heartbeat. Idempotent; terminal — a
// subsequent Schedule returns a ProtocolMisuseError.
func (h *HeartbeatTimer) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	if h.pending != nil {
		h.pending.Stop()
		h.pending = nil
	}
}

func (h *HeartbeatTimer) fire() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	cb := h.writeHeartbeat
	h.mu.Unlock()

	if cb != nil {
		cb()
	}

	h.mu.Lock()
	if !h.stopped {
		h.rearmLocked()
	}
	h.mu.Unlock()
}
