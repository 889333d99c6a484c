package sockjs

import (
	"bytes"
	"encoding/json"
)

// EncoderHook is consulted when a value can't be marshalled directly
// by encoding/json; it must return a JSON-marshallable replacement.
type EncoderHook func(v interface{}) (replacement interface{}, handled bool, err error)

// DecoderHook is invoked on every decoded JSON object (a JSON object,
// i.e. a map) found anywhere in a decoded value, innermost first, and
// may return a replacement value.
type DecoderHook func(obj map[string]interface{}) interface{}

// Codec encodes/decodes SockJS payload JSON with no inter-token
// whitespace and optional caller hooks.
type Codec struct {
	EncodeHook EncoderHook
	DecodeHook DecoderHook
}

// DefaultCodec is used wherever a Config omits one.
var DefaultCodec = &Codec{}

// Marshal renders v as compact JSON, consulting EncodeHook for values
// encoding/json can't marshal on its own.
func (c *Codec) Marshal(v interface{}) ([]byte, error) {
	if c == nil {
		c = DefaultCodec
	}
	out, err := json.Marshal(v)
	if err == nil {
		return compact(out), nil
	}
	if c.EncodeHook == nil {
		return nil, err
	}
	replacement, handled, hookErr := c.EncodeHook(v)
	if hookErr != nil {
		return nil, hookErr
	}
	if !handled {
		return nil, err
	}
	out, err = json.Marshal(replacement)
	if err != nil {
		return nil, err
	}
	return compact(out), nil
}

// compact strips the whitespace encoding/json otherwise never inserts
// for the scalar/slice/map shapes this protocol serialises, but which
// Indent-style encoders could have left behind; kept defensive since
// the marshal path above may in principle be fed a hook result that
// contains pre-formatted JSON (json.RawMessage).
func compact(b []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return b
	}
	return buf.Bytes()
}

// Unmarshal decodes data into a generic JSON value (nil, bool,
// float64, string, []interface{}, or map[string]interface{}) and
// applies DecodeHook, innermost-first, to every object encountered.
func (c *Codec) Unmarshal(data []byte) (interface{}, error) {
	if c == nil {
		c = DefaultCodec
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if c.DecodeHook == nil {
		return v, nil
	}
	return c.applyHook(v), nil
}

func (c *Codec) applyHook(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			t[k] = c.applyHook(child)
		}
		return c.DecodeHook(t)
	case []interface{}:
		for i, child := range t {
			t[i] = c.applyHook(child)
		}
		return t
	default:
		return v
	}
}
