package sockjs

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSegmentRejectsEmptyAndDotted(t *testing.T) {
	assert.NoError(t, ValidateSegment("abc123"))
	assert.ErrorIs(t, ValidateSegment(""), ErrInvalidSessionID)
	assert.ErrorIs(t, ValidateSegment("a.b"), ErrInvalidSessionID)
}

func TestRegistryAttachCreatesSessionOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := NewSessionRegistry(Config{}, func() Application { return newRecordingApp() }, clock)

	s1, err := reg.AttachToSession("srv", "sess1", "xhr", Polling, newRecordingRequest())
	require.NoError(t, err)

	s2, err := reg.AttachToSession("srv", "sess1", "xhr", Polling, newRecordingRequest())
	require.NoError(t, err)

	assert.Same(t, s1, s2, "second attach reuses the existing session")
}

func TestRegistryAttachRejectsInvalidSegments(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := NewSessionRegistry(Config{}, func() Application { return newRecordingApp() }, clock)

	_, err := reg.AttachToSession("srv", "bad.id", "xhr", Polling, newRecordingRequest())
	assert.ErrorIs(t, err, ErrInvalidSessionID)

	_, err = reg.AttachToSession("", "sess1", "xhr", Polling, newRecordingRequest())
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}

func TestRegistryWriteToSessionRoutesToExistingSession(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var app *recordingApp
	reg := NewSessionRegistry(Config{}, func() Application {
		app = newRecordingApp()
		return app
	}, clock)

	_, err := reg.AttachToSession("srv", "sess1", "xhr_streaming", Streaming, newRecordingRequest())
	require.NoError(t, err)

	require.NoError(t, reg.WriteToSession("srv", "sess1", "xhr_streaming", []byte(`["hi"]`)))
	require.Len(t, app.received, 1)
	assert.Equal(t, []interface{}{"hi"}, app.received[0])
}

func TestRegistryWriteToSessionUnknownIDFails(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := NewSessionRegistry(Config{}, func() Application { return newRecordingApp() }, clock)
	err := reg.WriteToSession("srv", "nope", "xhr", []byte(`[]`))
	assert.ErrorIs(t, err, ErrSessionNotOpen)
}

func TestRegistryWriteToSessionRejectsInvalidSegments(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := NewSessionRegistry(Config{}, func() Application { return newRecordingApp() }, clock)
	err := reg.WriteToSession("srv", "bad.id", "xhr", []byte(`[]`))
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}

func TestRegistryStreamingCutoffComesFromConfig(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var app *recordingApp
	cfg := Config{XHRStreamingMaximumBytes: 5}
	reg := NewSessionRegistry(cfg, func() Application {
		app = newRecordingApp()
		return app
	}, clock)

	req := newRecordingRequest()
	s, err := reg.AttachToSession("srv", "sess1", "xhr_streaming", Streaming, req)
	require.NoError(t, err)
	require.Equal(t, StateHave, s.State())

	// a["x"] plus its newline crosses the configured 5-byte cutoff.
	require.NoError(t, app.conn().Write("x"))

	assert.Equal(t, StateGoneEmpty, s.State())
	assert.True(t, req.finished)
}

func TestRegistryRemovesSessionOnTermination(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := Config{SessionTimeout: time.Second}
	reg := NewSessionRegistry(cfg, func() Application { return newRecordingApp() }, clock)

	_, err := reg.AttachToSession("srv", "sess1", "xhr", Polling, newRecordingRequest())
	require.NoError(t, err)

	clock.BlockUntil(1)
	clock.Advance(time.Second)

	require.Eventually(t, func() bool {
		_, ok := reg.Lookup("sess1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
