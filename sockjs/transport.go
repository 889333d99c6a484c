package sockjs

// TransportKind tags the two request-based transport flavours that
// share RequestSessionMachine: XHR polls one frame at a time,
// XHRStreaming holds the request open behind a byte-count cutoff.
type TransportKind int

const (
	// Polling is the XHR transport: one frame per request, then detach.
	Polling TransportKind = iota
	// Streaming is the XHRStreaming transport: a byte prelude, then
	// frames accumulate on one request until MaximumBytes is reached.
	Streaming
)

// streamingPreludeBytes is the 'h' padding XHRStreaming writes ahead of
// the open frame, forcing the browser to detect the content type
// before any real data arrives.
const streamingPreludeBytes = 2048

// Variant describes one request-based transport's framing behaviour.
type Variant struct {
	Kind TransportKind
	// MaximumBytes is the cumulative data-frame byte count after which
	// a Streaming request is detached. Unused for Polling.
	MaximumBytes int
}

// PollingVariant returns the XHR transport variant.
func PollingVariant() Variant { return Variant{Kind: Polling} }

// StreamingVariant returns the XHRStreaming transport variant with the
// given cutoff; a non-positive value falls back to the package default.
func StreamingVariant(maximumBytes int) Variant {
	if maximumBytes <= 0 {
		maximumBytes = 128 * 1024
	}
	return Variant{Kind: Streaming, MaximumBytes: maximumBytes}
}

// prelude returns the bytes a newly attached request must receive
// before the open frame, if any.
func (v Variant) prelude() []byte {
	if v.Kind == Streaming {
		b := make([]byte, streamingPreludeBytes)
		for i := range b {
			b[i] = frameHeartbeatByte
		}
		return b
	}
	return nil
}

// detachesAfterFrame reports whether writing one frame should
// immediately detach the current request, rather than holding it open.
func (v Variant) detachesAfterFrame(bytesWrittenAfter int) bool {
	switch v.Kind {
	case Polling:
		return true
	case Streaming:
		return bytesWrittenAfter >= v.MaximumBytes
	default:
		return false
	}
}
