package fanout

import (
	"encoding/json"
	"testing"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return &Hub{logger: zerolog.Nop(), byUser: make(map[string]map[*socket]struct{})}
}

func registerSocket(h *Hub, userID string, queueSize int) *socket {
	s := &socket{userID: userID, send: make(chan outboundFrame, queueSize)}
	set, ok := h.byUser[userID]
	if !ok {
		set = make(map[*socket]struct{})
		h.byUser[userID] = set
	}
	set[s] = struct{}{}
	return s
}

func TestEnqueue_DeliversTextFrame(t *testing.T) {
	h := newTestHub()
	s := registerSocket(h, "user-1", 1)

	h.enqueue(s, Envelope{ActionType: "ping", Payload: []byte(`{"ok":true}`)})

	frame := <-s.send
	assert.Equal(t, websocket.MessageText, frame.messageType)

	var decoded struct {
		ActionType string          `json:"actionType"`
		Payload    json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(frame.data, &decoded))
	assert.Equal(t, "ping", decoded.ActionType)
	assert.JSONEq(t, `{"ok":true}`, string(decoded.Payload))
}

func TestEnqueue_DropsWhenQueueFull(t *testing.T) {
	h := newTestHub()
	s := registerSocket(h, "user-1", 1)

	h.enqueue(s, Envelope{ActionType: "first"})
	h.enqueue(s, Envelope{ActionType: "second"})

	assert.Len(t, s.send, 1)
	frame := <-s.send
	var decoded struct {
		ActionType string `json:"actionType"`
	}
	require.NoError(t, json.Unmarshal(frame.data, &decoded))
	assert.Equal(t, "first", decoded.ActionType)
}

func TestDeliver_BroadcastReachesEverySocket(t *testing.T) {
	h := newTestHub()
	a := registerSocket(h, "user-a", 1)
	b := registerSocket(h, "user-b", 1)

	h.deliver(Envelope{UserID: BroadcastUserID, ActionType: "announce"})

	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)
}

func TestDeliver_PerUserOnlyReachesThatUser(t *testing.T) {
	h := newTestHub()
	a := registerSocket(h, "user-a", 1)
	b := registerSocket(h, "user-b", 1)

	h.deliver(Envelope{UserID: "user-a", ActionType: "direct"})

	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 0)
}
