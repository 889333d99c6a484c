package sockjs

import "sync"

type wsState int

const (
	wsNotYetConnected wsState = iota
	wsConnected
	wsDisconnected
)

// wsTransport is the output target of wsMachine: the framing sink
// sitting on top of the raw byte-stream transport.
type wsTransport interface {
	writeOpen()
	writeData(messages []interface{}) error
	writeHeartbeat()
	writeClose(reason CloseReason) error
	loseConnection()
}

// wsMachine is the always-connected SockJS state machine used by the
// WebSocket transport: notYetConnected -> connected -> disconnected,
// with no buffering and no request interleaving.
type wsMachine struct {
	mu          sync.Mutex
	state       wsState
	transport   wsTransport
	heartbeater *HeartbeatTimer
	received    func(v interface{})
}

// newWSMachine builds a machine that delivers decoded inbound values to
// received. Decoding itself happens one layer up, before receive is
// called.
func newWSMachine(heartbeater *HeartbeatTimer, received func(v interface{})) *wsMachine {
	return &wsMachine{heartbeater: heartbeater, received: received}
}

// connect establishes the connection: store the transport, write the
// open frame, and start the heartbeat clock.
func (m *wsMachine) connect(t wsTransport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != wsNotYetConnected {
		return
	}
	m.transport = t
	m.state = wsConnected
	m.transport.writeOpen()
	_ = m.heartbeater.Schedule()
}

// write sends data and resets the heartbeat clock.
func (m *wsMachine) write(data []interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != wsConnected {
		return ErrSessionNotOpen
	}
	if err := m.transport.writeData(data); err != nil {
		return err
	}
	return m.heartbeater.Schedule()
}

// receive delivers one already-decoded inbound value. The callback
// runs with the lock released, so it may safely call back into write
// or disconnect without deadlocking.
func (m *wsMachine) receive(v interface{}) {
	m.mu.Lock()
	if m.state != wsConnected {
		m.mu.Unlock()
		return
	}
	cb := m.received
	m.mu.Unlock()
	if cb != nil {
		cb(v)
	}
}

// heartbeat writes a heartbeat frame; it does not reschedule itself,
// the heartbeat clock rearms on its own (see HeartbeatTimer.fire).
func (m *wsMachine) heartbeat() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != wsConnected {
		return
	}
	m.transport.writeHeartbeat()
}

// disconnect closes the session for reason: write the close frame,
// tell the transport to lose the connection, and stop the heartbeat
// synchronously so a pending fire can never land on a dead transport.
func (m *wsMachine) disconnect(reason CloseReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case wsNotYetConnected:
		m.state = wsDisconnected
	case wsConnected:
		m.state = wsDisconnected
		t := m.transport
		m.transport = nil
		_ = t.writeClose(reason)
		t.loseConnection()
		m.heartbeater.Stop()
	}
}

// close marks the connection closed because the transport told us so
// (as opposed to us telling the transport). Idempotent.
func (m *wsMachine) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == wsDisconnected {
		return
	}
	m.state = wsDisconnected
	m.transport = nil
	m.heartbeater.Stop()
}
