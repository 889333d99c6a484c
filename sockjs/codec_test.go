package sockjs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecMarshalCompact(t *testing.T) {
	out, err := DefaultCodec.Marshal([]interface{}{"a", 1, map[string]interface{}{"x": 1}})
	require.NoError(t, err)
	assert.Equal(t, `["a",1,{"x":1}]`, string(out))
	assert.NotContains(t, string(out), " ")
	assert.NotContains(t, string(out), "\n")
}

func TestCodecUnmarshalAppliesDecodeHookInnermostFirst(t *testing.T) {
	var seen []string
	codec := &Codec{
		DecodeHook: func(obj map[string]interface{}) interface{} {
			if tag, ok := obj["_tag"]; ok {
				seen = append(seen, tag.(string))
			}
			return obj
		},
	}
	body := []byte(`{"_tag":"outer","inner":{"_tag":"inner"}}`)
	_, err := codec.Unmarshal(body)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, "inner", seen[0])
	assert.Equal(t, "outer", seen[1])
}

type unmarshalable struct{ Ch chan int }

func TestCodecMarshalFallsBackToEncodeHook(t *testing.T) {
	codec := &Codec{
		EncodeHook: func(v interface{}) (interface{}, bool, error) {
			if o, ok := v.(unmarshalable); ok {
				return len(o.Ch), true, nil
			}
			return nil, false, nil
		},
	}
	out, err := codec.Marshal(unmarshalable{Ch: make(chan int, 3)})
	require.NoError(t, err)
	assert.Equal(t, "0", string(out))
}

func TestCodecMarshalPropagatesEncodeHookError(t *testing.T) {
	boom := errors.New("boom")
	codec := &Codec{
		EncodeHook: func(v interface{}) (interface{}, bool, error) {
			return nil, true, boom
		},
	}
	_, err := codec.Marshal(make(chan int))
	require.Error(t, err)
}
