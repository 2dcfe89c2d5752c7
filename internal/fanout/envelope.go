// Package fanout is the websocket fan-out plane of spec.md §4.3:
// handler -> broker -> wsserver -> browser. The original topology used
// a single ZeroMQ PUSH/PULL socket pair feeding a PUB/SUB proxy
// (original_source/services/message_proxy, websocket_server);
// SPEC_FULL.md §3 substitutes Redis pub/sub for the PUB/SUB half and a
// plain TCP ingress for the PUSH/PULL half, keeping the same three-hop
// shape. The original's two frames travel as one JSON message that
// carries the routing key in its user_id field (see wireEnvelope).
package fanout

import (
	"encoding/json"
	"fmt"
)

// BroadcastUserID is the routing key original_source's websocket_server
// treats as "forward to every connected socket" rather than one user's
// sockets.
const BroadcastUserID = "*"

// Envelope is the two-frame message the original passed as
// (user_id, payload) over its ZMQ PUB/SUB socket: a routing key plus
// the JSON body delivered verbatim to the browser.
type Envelope struct {
	UserID     string          `json:"-"`
	ActionType string          `json:"actionType"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// wireEnvelope is what actually crosses the broker's TCP ingress and
// the Redis channel: the routing key travels alongside the payload
// since Redis pub/sub, unlike ZMQ SUB, does not let a single
// subscription filter on a binary-prefix topic the way the original
// did — the broker decides the destination channel itself instead.
type wireEnvelope struct {
	UserID     string          `json:"user_id"`
	ActionType string          `json:"actionType"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Encode serializes e for transport over the broker ingress socket.
func (e Envelope) Encode() ([]byte, error) {
	w := wireEnvelope{UserID: e.UserID, ActionType: e.ActionType, Payload: e.Payload}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("fanout: encode envelope: %w", err)
	}
	return b, nil
}

// Decode parses a wire-format envelope back out.
func Decode(b []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return Envelope{}, fmt.Errorf("fanout: decode envelope: %w", err)
	}
	return Envelope{UserID: w.UserID, ActionType: w.ActionType, Payload: w.Payload}, nil
}

// channelFor returns the Redis channel a browser-facing envelope
// publishes to: one shared broadcast channel, or a per-user channel a
// wsserver only subscribes to while at least one of that user's
// sockets is open (mirroring WebSocket.subscribe/unsubscribe in
// original_source's websocket_server.py).
func channelFor(userID string) string {
	if userID == BroadcastUserID {
		return "fanout:broadcast"
	}
	return "fanout:user:" + userID
}
