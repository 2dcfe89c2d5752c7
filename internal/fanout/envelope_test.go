package fanout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeEncodeDecodeRoundTrip(t *testing.T) {
	e := Envelope{UserID: "user-1", ActionType: "notification", Payload: []byte(`{"text":"hi"}`)}

	b, err := e.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"user_id":"user-1"`)

	decoded, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, e.UserID, decoded.UserID)
	assert.Equal(t, e.ActionType, decoded.ActionType)
	assert.JSONEq(t, string(e.Payload), string(decoded.Payload))
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestChannelFor(t *testing.T) {
	assert.Equal(t, "fanout:broadcast", channelFor(BroadcastUserID))
	assert.Equal(t, "fanout:user:abc", channelFor("abc"))
}
