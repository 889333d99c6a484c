package sockjs

import "time"

// Config collects the protocol's tunable knobs. Loading it from
// environment, flags or files is a host-process concern — a caller
// builds one and passes it to NewSessionRegistry.
type Config struct {
	// HeartbeatPeriod is the interval between heartbeat frames.
	// Default 25s.
	HeartbeatPeriod time.Duration
	// SessionTimeout is how long a detached session may sit idle
	// before it is torn down. Default 5s.
	SessionTimeout time.Duration
	// XHRStreamingMaximumBytes is the cumulative byte count after
	// which an XHRStreaming request is detached to bound client-side
	// buffering.
	XHRStreamingMaximumBytes int
	// EnableCompression turns on permessage-deflate for outbound
	// messages on WebSocket connections built through internal/wsconn,
	// when the host's upgrade negotiated it.
	EnableCompression bool
	// AutoFragmentSize is the chunk size in which outbound WebSocket
	// messages longer than it are handed to the message writer (see
	// wsconn.Options); 0 disables chunking.
	AutoFragmentSize int
	// Subprotocol is the negotiated WebSocket subprotocol; "binary"
	// switches read/write to binary frames.
	Subprotocol string
	// Codec supplies the JSON encode/decode hooks. A nil Codec means
	// DefaultCodec (no hooks).
	Codec *Codec
}

// WithDefaults returns a copy of cfg with zero-valued knobs replaced
// by their documented defaults.
func (cfg Config) WithDefaults() Config {
	if cfg.HeartbeatPeriod <= 0 {
		cfg.HeartbeatPeriod = DefaultHeartbeatPeriod
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	if cfg.XHRStreamingMaximumBytes <= 0 {
		cfg.XHRStreamingMaximumBytes = 128 * 1024
	}
	if cfg.Codec == nil {
		cfg.Codec = DefaultCodec
	}
	return cfg
}
