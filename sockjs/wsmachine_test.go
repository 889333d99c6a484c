package sockjs

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWSTransport struct {
	opened     bool
	data       [][]interface{}
	heartbeats int
	closed     *CloseReason
	lost       bool
	failWrite  error
}

func (f *fakeWSTransport) writeOpen() { f.opened = true }
func (f *fakeWSTransport) writeData(messages []interface{}) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	f.data = append(f.data, messages)
	return nil
}
func (f *fakeWSTransport) writeHeartbeat() { f.heartbeats++ }
func (f *fakeWSTransport) writeClose(reason CloseReason) error {
	r := reason
	f.closed = &r
	return nil
}
func (f *fakeWSTransport) loseConnection() { f.lost = true }

func newTestWSMachine() (*wsMachine, *fakeWSTransport, []interface{}) {
	var received []interface{}
	clock := clockwork.NewFakeClock()
	h := NewHeartbeatTimer(25*time.Second, clock, func() {})
	m := newWSMachine(h, func(v interface{}) {
		received = append(received, v)
	})
	return m, &fakeWSTransport{}, received
}

func TestWSMachineConnectWritesOpen(t *testing.T) {
	m, transport, _ := newTestWSMachine()
	m.connect(transport)
	assert.True(t, transport.opened)
}

func TestWSMachineWriteRequiresConnected(t *testing.T) {
	m, transport, _ := newTestWSMachine()
	err := m.write([]interface{}{"hi"})
	assert.ErrorIs(t, err, ErrSessionNotOpen)

	m.connect(transport)
	require.NoError(t, m.write([]interface{}{"hi"}))
	assert.Equal(t, [][]interface{}{{"hi"}}, transport.data)
}

func TestWSMachineHeartbeatOnlyWhileConnected(t *testing.T) {
	m, transport, _ := newTestWSMachine()
	m.heartbeat() // no-op before connect
	assert.Equal(t, 0, transport.heartbeats)

	m.connect(transport)
	m.heartbeat()
	assert.Equal(t, 1, transport.heartbeats)
}

func TestWSMachineDisconnectWritesCloseAndStopsHeartbeat(t *testing.T) {
	m, transport, _ := newTestWSMachine()
	m.connect(transport)
	m.disconnect(GoAway)

	require.NotNil(t, transport.closed)
	assert.Equal(t, GoAway, *transport.closed)
	assert.True(t, transport.lost)
	assert.Equal(t, wsDisconnected, m.state)
	var misuse *ProtocolMisuseError
	assert.ErrorAs(t, m.heartbeater.Schedule(), &misuse, "heartbeat was stopped")

	// A second disconnect is a no-op: state switch has no wsDisconnected case.
	m.disconnect(GoAway)
}

func TestWSMachineCloseIsIdempotent(t *testing.T) {
	m, transport, _ := newTestWSMachine()
	m.connect(transport)
	m.close()
	m.close()
	assert.Equal(t, wsDisconnected, m.state)
	assert.Nil(t, m.transport)
}
