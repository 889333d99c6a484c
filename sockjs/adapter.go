package sockjs

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RequestSessionAdapter implements sessionHooks: it is the only thing
// RequestSessionMachine calls out to, and owns everything the state
// machine itself has no opinion about — the current request, the
// finished-notifier watch, the per-attach heartbeat, the session
// timeout, and the handshake with the wrapped Application.
//
// Its sessionHooks methods run under the lock the owning Session holds
// around every RequestSessionMachine call; it keeps none of its own.
// The timer and finished-notifier callbacks and the Conn methods run
// without that lock and reach the session only through the callbacks
// the Session wires in, which take the lock themselves.
type RequestSessionAdapter struct {
	id      string
	variant Variant
	codec   *Codec
	app     Application
	clock   clockwork.Clock

	heartbeatPeriod time.Duration
	heartbeat       *HeartbeatTimer // nil whenever no request is attached
	sessionTimeout  *SessionTimeoutTimer

	request      Request
	finish       FinishNotifier
	bytesWritten int

	connMade      bool
	connLostOnce  bool
	disconnecting bool

	termination     chan error
	terminationOnce sync.Once

	// The following are wired by the owning Session after both it and
	// the adapter exist, closing the machine/adapter cycle without
	// either side owning the other.
	triggerHeartbeat     func()
	triggerDetach        func()
	reportConnectionLost func(error)
	writeMessage         func(v interface{}) error
	closeSession         func(reason CloseReason) error
}

// NewRequestSessionAdapter builds an adapter for a single session. The
// session timeout starts running immediately: a session with no
// request ever attached is, for timeout purposes, indistinguishable
// from one that just detached.
func NewRequestSessionAdapter(id string, variant Variant, cfg Config, app Application, clock clockwork.Clock) *RequestSessionAdapter {
	a := &RequestSessionAdapter{
		id:              id,
		variant:         variant,
		codec:           cfg.Codec,
		app:             app,
		clock:           clock,
		heartbeatPeriod: cfg.HeartbeatPeriod,
		termination:     make(chan error, 1),
	}
	a.sessionTimeout = NewSessionTimeoutTimer(cfg.SessionTimeout, clock, a.handleSessionTimeout)
	_ = a.sessionTimeout.Start()
	return a
}

// Done reports the session's termination reason exactly once.
func (a *RequestSessionAdapter) Done() <-chan error { return a.termination }

// handleSessionTimeout runs on the timeout clock's goroutine. It only
// reports the expiry; the owning Session translates it into either a
// SessionTimeout failure or an orderly close once it holds the lock
// and can look at disconnecting.
func (a *RequestSessionAdapter) handleSessionTimeout() {
	if a.reportConnectionLost != nil {
		a.reportConnectionLost(errSessionExpired)
	}
}

func (a *RequestSessionAdapter) fireHeartbeat() {
	if a.triggerHeartbeat != nil {
		a.triggerHeartbeat()
	}
}

// watchFinish runs on its own goroutine for the lifetime of one
// attached request; it only ever reaches back into the session through
// reportConnectionLost, which acquires the Session's lock itself. A
// notifier cancelled by finishCurrentRequest never sends, so a clean
// detach is never reported as a lost connection.
func (a *RequestSessionAdapter) watchFinish(f FinishNotifier) {
	err, ok := <-f.Done()
	if !ok {
		return
	}
	if a.reportConnectionLost == nil {
		return
	}
	if err == nil {
		err = ErrConnectionDone
	}
	a.reportConnectionLost(err)
}

func (a *RequestSessionAdapter) scheduleHeartbeat() {
	if a.heartbeat != nil {
		_ = a.heartbeat.Schedule()
	}
}

// writeFrame sends one frame to the current request. Request-based
// transports terminate every frame with a newline; the WebSocket
// transport does not.
func (a *RequestSessionAdapter) writeFrame(frame []byte) {
	_ = a.request.Write(append(frame, '\n'))
}

// --- sessionHooks ---

func (a *RequestSessionAdapter) openRequest(req Request) {
	a.request = req
	a.bytesWritten = 0
	a.sessionTimeout.Stop()
}

// establishConnection is a no-op here: the Request abstraction already
// wires its underlying transport before Attach is ever called.
func (a *RequestSessionAdapter) establishConnection(req Request) {}

func (a *RequestSessionAdapter) beginRequest() {
	f := a.request.NotifyFinish()
	a.finish = f
	go a.watchFinish(f)

	a.heartbeat = NewHeartbeatTimer(a.heartbeatPeriod, a.clock, a.fireHeartbeat)
	_ = a.heartbeat.Schedule()
}

func (a *RequestSessionAdapter) completeConnection() {
	if prelude := a.variant.prelude(); prelude != nil {
		a.writeFrame(prelude)
	}
	a.writeFrame(writeOpen())
	a.scheduleHeartbeat()

	if !a.connMade {
		a.connMade = true
		a.app.ConnectionMade(a)
	}

	if a.variant.Kind == Polling && a.triggerDetach != nil {
		a.triggerDetach()
	}
}

func (a *RequestSessionAdapter) completeDataReceived(data []byte) error {
	v, err := dataReceived(a.codec, data)
	if err != nil {
		return err
	}
	a.app.DataReceived(v)
	return nil
}

func (a *RequestSessionAdapter) completeWrite(messages []interface{}) {
	if len(messages) == 0 {
		return
	}
	frame, err := writeData(a.codec, messages)
	if err != nil {
		// An application value that cannot round-trip through the
		// codec is a caller bug, not a session fault; drop the frame.
		return
	}
	a.writeFrame(frame)
	a.bytesWritten += len(frame) + 1
	a.scheduleHeartbeat()

	if a.variant.detachesAfterFrame(a.bytesWritten) {
		if a.triggerDetach != nil {
			a.triggerDetach()
		}
	}
}

func (a *RequestSessionAdapter) completeHeartbeat() {
	a.writeFrame(writeHeartbeat())
	a.scheduleHeartbeat()

	if a.variant.Kind == Polling && a.triggerDetach != nil {
		a.triggerDetach()
	}
}

func (a *RequestSessionAdapter) finishCurrentRequest() {
	if a.finish != nil {
		a.finish.Cancel()
		a.finish = nil
	}
	if a.request != nil {
		a.request.Finish()
		a.request = nil
	}
	if a.heartbeat != nil {
		a.heartbeat.Stop()
		a.heartbeat = nil
	}
	_ = a.sessionTimeout.Start()
}

func (a *RequestSessionAdapter) closeDuplicateRequest(req Request, reason CloseReason) {
	deliverCloseAndFinish(a.codec, req, reason)
}

// completeLoseConnection is a no-op: request-based transports have no
// raw byte-stream connection beneath Request to notify separately.
func (a *RequestSessionAdapter) completeLoseConnection() {}

// writeCurrentClose emits a close frame on the still-attached request,
// just before finishCurrentRequest ends it.
func (a *RequestSessionAdapter) writeCurrentClose(reason CloseReason) {
	if a.request == nil {
		return
	}
	if frame, err := writeClose(a.codec, reason); err == nil {
		a.writeFrame(frame)
	}
}

func (a *RequestSessionAdapter) writeCloseReason(req Request, reason CloseReason) {
	deliverCloseAndFinish(a.codec, req, reason)
}

func (a *RequestSessionAdapter) dropRequest() {
	a.request = nil
	a.finish = nil
	if a.heartbeat != nil {
		a.heartbeat.Stop()
		a.heartbeat = nil
	}
}

func (a *RequestSessionAdapter) closeProtocol(reason error) {
	a.sessionTimeout.Stop()
	if a.heartbeat != nil {
		a.heartbeat.Stop()
		a.heartbeat = nil
	}
	if !a.connLostOnce {
		a.connLostOnce = true
		a.app.ConnectionLost(reason)
	}
	a.terminationOnce.Do(func() {
		a.termination <- reason
	})
}

// deliverCloseAndFinish writes a close frame to req, best-effort, and
// ends it regardless — used both for evicting a duplicate attach and
// for relaying a stored close reason to a late arrival.
func deliverCloseAndFinish(codec *Codec, req Request, reason CloseReason) {
	if frame, err := writeClose(codec, reason); err == nil {
		_ = req.Write(append(frame, '\n'))
	}
	req.Finish()
}

// --- Conn, handed to the wrapped Application ---

func (a *RequestSessionAdapter) ID() string { return a.id }

func (a *RequestSessionAdapter) Write(v interface{}) error {
	if a.writeMessage == nil {
		return ErrSessionNotOpen
	}
	return a.writeMessage(v)
}

func (a *RequestSessionAdapter) Close(reason CloseReason) error {
	if a.closeSession == nil {
		return ErrSessionNotOpen
	}
	return a.closeSession(reason)
}
