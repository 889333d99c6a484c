package wsconn

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestMessageTypeForNegotiatesBinaryOnlyForBinarySubprotocol(t *testing.T) {
	assert.Equal(t, websocket.BinaryMessage, MessageTypeFor("binary"))
	assert.Equal(t, websocket.TextMessage, MessageTypeFor(""))
	assert.Equal(t, websocket.TextMessage, MessageTypeFor("v13.stomp"))
}
