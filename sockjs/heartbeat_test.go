package sockjs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeatTimerFiresOncePerQuietPeriod(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var fires int32
	h := NewHeartbeatTimer(10*time.Second, clock, func() {
		atomic.AddInt32(&fires, 1)
	})
	require.NoError(t, h.Schedule())

	clock.BlockUntil(1)
	clock.Advance(10 * time.Second)
	clock.BlockUntil(1) // the fire handler rearms before returning
	assert.Equal(t, int32(1), atomic.LoadInt32(&fires))

	clock.Advance(10 * time.Second)
	clock.BlockUntil(1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fires))
}

func TestHeartbeatTimerScheduleSuppressesFire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var fires int32
	h := NewHeartbeatTimer(10*time.Second, clock, func() {
		atomic.AddInt32(&fires, 1)
	})
	require.NoError(t, h.Schedule())

	clock.BlockUntil(1)
	clock.Advance(6 * time.Second)
	require.NoError(t, h.Schedule()) // pushes the fire back out to 10s from now
	clock.Advance(6 * time.Second)
	clock.BlockUntil(1)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fires), "fire suppressed by the reschedule")

	clock.Advance(4 * time.Second)
	clock.BlockUntil(1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fires))
}

func TestHeartbeatTimerStopIsTerminal(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := NewHeartbeatTimer(time.Second, clock, func() {})
	h.Stop()
	h.Stop() // idempotent
	err := h.Schedule()
	require.Error(t, err)
	var misuse *ProtocolMisuseError
	require.ErrorAs(t, err, &misuse)
}
