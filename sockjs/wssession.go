package sockjs

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/sockjscore/sockjs/internal/wsconn"
)

// wsTransportImpl is the wsTransport implementation backing a live
// WebSocket connection: SockJS framing on top of internal/wsconn's
// negotiated-type message transport. No newline follows a frame here;
// that is a request-transport rule only.
type wsTransportImpl struct {
	conn  *wsconn.Conn
	codec *Codec
}

func (t *wsTransportImpl) writeOpen() { _ = t.conn.WriteMessage(writeOpen()) }

func (t *wsTransportImpl) writeData(messages []interface{}) error {
	frame, err := writeData(t.codec, messages)
	if err != nil {
		return err
	}
	return t.conn.WriteMessage(frame)
}

func (t *wsTransportImpl) writeHeartbeat() { _ = t.conn.WriteMessage(writeHeartbeat()) }

func (t *wsTransportImpl) writeClose(reason CloseReason) error {
	frame, err := writeClose(t.codec, reason)
	if err != nil {
		return err
	}
	return t.conn.WriteMessage(frame)
}

func (t *wsTransportImpl) loseConnection() {
	_ = t.conn.CloseWithReason(websocket.CloseNormalClosure, "")
}

// AppClosedError is the reason handed to Application.ConnectionLost
// when the application itself, not the peer, ended a WebSocket
// session via Conn.Close.
type AppClosedError struct{ Reason CloseReason }

func (e AppClosedError) Error() string {
	return "sockjs: closed by application: " + e.Reason.Reason
}

// WSSession is the always-connected SockJS session used for the
// WebSocket transport: no buffering, no request interleaving, one
// physical connection for the session's whole life.
type WSSession struct {
	mu      sync.Mutex
	id      string
	cfg     Config
	codec   *Codec
	app     Application
	machine *wsMachine

	termination     chan error
	terminationOnce sync.Once
	connLostOnce    bool
}

// NewWSSession builds a WebSocket session. Serve must be called
// exactly once, with the upgraded connection, to drive it.
func NewWSSession(id string, cfg Config, app Application, clock clockwork.Clock) *WSSession {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &WSSession{
		id:          id,
		cfg:         cfg,
		codec:       cfg.Codec,
		app:         app,
		termination: make(chan error, 1),
	}
	heartbeater := NewHeartbeatTimer(cfg.HeartbeatPeriod, clock, s.fireHeartbeat)
	s.machine = newWSMachine(heartbeater, s.delivered)
	return s
}

func (s *WSSession) fireHeartbeat()          { s.machine.heartbeat() }
func (s *WSSession) delivered(v interface{}) { s.app.DataReceived(v) }

// ID is the session's wire identifier.
func (s *WSSession) ID() string { return s.id }

// Write sends v as a data frame. Satisfies Conn.
func (s *WSSession) Write(v interface{}) error {
	return s.machine.write([]interface{}{v})
}

// Close ends the session with reason, from the application side.
// Satisfies Conn. The termination reason is settled before the socket
// is torn down, so the read loop's own failure report cannot win the
// race against it.
func (s *WSSession) Close(reason CloseReason) error {
	s.reportDone(AppClosedError{Reason: reason})
	s.machine.disconnect(reason)
	return nil
}

// Done reports the session's termination reason exactly once.
func (s *WSSession) Done() <-chan error { return s.termination }

func (s *WSSession) reportDone(reason error) {
	s.mu.Lock()
	if !s.connLostOnce {
		s.connLostOnce = true
		s.app.ConnectionLost(reason)
	}
	s.mu.Unlock()
	s.terminationOnce.Do(func() {
		s.termination <- reason
	})
}

// Serve drives ws for the session's whole life: writes the open frame,
// notifies the application, then reads inbound frames until the
// connection ends or a decode failure forces a close. It blocks until
// the connection is done and does not return an error — the
// termination reason is available from Done.
//
// Empty inbound frames are discarded without comment. A frame that
// fails to decode closes the connection silently: no close frame, no
// error body.
func (s *WSSession) Serve(ws *websocket.Conn, subprotocol string) {
	conn := wsconn.New(ws, subprotocol, wsconn.Options{
		EnableCompression: s.cfg.EnableCompression,
		AutoFragmentSize:  s.cfg.AutoFragmentSize,
	})
	s.machine.connect(&wsTransportImpl{conn: conn, codec: s.codec})
	s.app.ConnectionMade(s)

	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			// On a subprotocol mismatch wsconn has already failed the
			// connection with an unsupported-data close; either way
			// the transport is gone.
			s.machine.close()
			s.reportDone(err)
			return
		}
		if len(raw) == 0 {
			continue
		}

		v, decodeErr := dataReceived(s.codec, raw)
		if decodeErr != nil {
			s.machine.close()
			_ = conn.Close()
			s.reportDone(decodeErr)
			return
		}
		if emptyPayload(v) {
			continue
		}
		s.machine.receive(v)
	}
}

// emptyPayload reports whether a decoded inbound value carries nothing
// worth delivering: a null, an empty string, or an empty array.
func emptyPayload(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	default:
		return false
	}
}
