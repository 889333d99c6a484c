package sockjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOpenAndHeartbeatAreSingleBytes(t *testing.T) {
	assert.Equal(t, []byte("o"), writeOpen())
	assert.Equal(t, []byte("h"), writeHeartbeat())
}

func TestWriteClose(t *testing.T) {
	out, err := writeClose(DefaultCodec, GoAway)
	require.NoError(t, err)
	assert.Equal(t, `c[3000,"Go away!"]`, string(out))
}

func TestWriteData(t *testing.T) {
	out, err := writeData(DefaultCodec, []interface{}{"hello", 1})
	require.NoError(t, err)
	assert.Equal(t, `a["hello",1]`, string(out))
}

func TestDataReceivedEmptyBodyIsNoPayload(t *testing.T) {
	_, err := dataReceived(DefaultCodec, nil)
	require.Error(t, err)
	var inv *InvalidData
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, NoPayload, inv.Kind)
	assert.Equal(t, "Payload expected.\n", string(inv.WireMessage()))
}

func TestDataReceivedBadJSON(t *testing.T) {
	_, err := dataReceived(DefaultCodec, []byte("not json"))
	require.Error(t, err)
	var inv *InvalidData
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, BadJSON, inv.Kind)
	assert.Equal(t, "Broken JSON encoding.\n", string(inv.WireMessage()))
}

func TestDataReceivedValidJSON(t *testing.T) {
	v, err := dataReceived(DefaultCodec, []byte(`["hi"]`))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"hi"}, v)
}
