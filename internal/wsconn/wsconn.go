// Package wsconn adapts a *websocket.Conn into the minimal
// message-oriented transport the sockjs package's WebSocket session
// consumes: one negotiated frame type (text or binary) for the whole
// connection's life, and a close path that sends a proper close
// control frame before tearing the socket down. Payloads travel as raw
// text or binary frames; no base64 wrapping is ever applied.
package wsconn

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a close control frame write may block.
const writeWait = 5 * time.Second

// ErrUnsupportedFrameType is returned by ReadMessage when a peer sends
// a frame whose type (text/binary) does not match the subprotocol
// negotiated at handshake time. The peer has already been sent a
// CloseUnsupportedData control frame by the time this returns.
var ErrUnsupportedFrameType = errors.New("wsconn: frame type does not match negotiated subprotocol")

// Options carries the per-connection knobs a host may tune.
type Options struct {
	// EnableCompression turns on permessage-deflate for outbound
	// messages, when the upgrade negotiated it.
	EnableCompression bool
	// AutoFragmentSize caps how much of an outbound message is handed
	// to gorilla's streaming message writer at a time. That writer
	// buffers what it is given, so the frame boundaries on the wire
	// follow its write buffer, not this size. Zero disables it.
	AutoFragmentSize int
}

// Conn is a single negotiated-frame-type wrapper around a gorilla
// websocket connection.
type Conn struct {
	ws           *websocket.Conn
	messageType  int
	fragmentSize int
}

// MessageTypeFor maps a negotiated WebSocket subprotocol name to the
// gorilla/websocket frame type SockJS uses for it: "binary" negotiates
// binary frames, anything else (including "") negotiates text frames.
func MessageTypeFor(subprotocol string) int {
	if subprotocol == "binary" {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// New wraps ws, framing every message as MessageTypeFor(subprotocol).
func New(ws *websocket.Conn, subprotocol string, opts Options) *Conn {
	ws.EnableWriteCompression(opts.EnableCompression)
	return &Conn{
		ws:           ws,
		messageType:  MessageTypeFor(subprotocol),
		fragmentSize: opts.AutoFragmentSize,
	}
}

// WriteMessage sends p as one message of the negotiated type. When
// AutoFragmentSize is set and p exceeds it, p is written through
// NextWriter in chunks of that size.
func (c *Conn) WriteMessage(p []byte) error {
	if c.fragmentSize <= 0 || len(p) <= c.fragmentSize {
		return c.ws.WriteMessage(c.messageType, p)
	}
	w, err := c.ws.NextWriter(c.messageType)
	if err != nil {
		return err
	}
	for len(p) > 0 {
		n := c.fragmentSize
		if n > len(p) {
			n = len(p)
		}
		if _, err := w.Write(p[:n]); err != nil {
			_ = w.Close()
			return err
		}
		p = p[n:]
	}
	return w.Close()
}

// ReadMessage blocks for the next inbound frame. A frame of the wrong
// type is rejected with a CloseUnsupportedData control frame and
// ErrUnsupportedFrameType; any other read error is returned as-is.
func (c *Conn) ReadMessage() ([]byte, error) {
	mt, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	if mt != c.messageType {
		c.sendClose(websocket.CloseUnsupportedData, "message payload type does not match the negotiated subprotocol")
		return nil, ErrUnsupportedFrameType
	}
	return data, nil
}

// Close sends a normal-closure control frame and closes the socket.
func (c *Conn) Close() error {
	c.sendClose(websocket.CloseNormalClosure, "")
	return c.ws.Close()
}

// CloseWithReason sends a close control frame carrying code/reason
// before closing the socket.
func (c *Conn) CloseWithReason(code int, reason string) error {
	c.sendClose(code, reason)
	return c.ws.Close()
}

func (c *Conn) sendClose(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
