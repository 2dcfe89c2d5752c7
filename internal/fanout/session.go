package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
)

// actionFrame is the {"actionType": "..."} envelope the handshake
// writes back to the browser, matching send_json(actionType=...) in
// original_source's websocket_server.py.
type actionFrame struct {
	ActionType string `json:"actionType"`
}

// ServeHTTP upgrades r to a websocket connection and drives the
// AUTH REQUEST / AUTH OK / AUTH FAILED handshake, then registers the
// authenticated socket with the hub until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket accept failed")
		return
	}

	s := &socket{conn: conn, send: make(chan outboundFrame, sendQueueSize)}
	ctx := r.Context()

	userID, ok := h.authenticate(ctx, s)
	if !ok {
		conn.Close(websocket.StatusPolicyViolation, "authentication failed")
		return
	}
	s.userID = userID

	h.addSocket(ctx, s)
	defer h.removeSocket(ctx, s)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, s)
	}()

	h.readLoop(ctx, s)
	conn.Close(websocket.StatusNormalClosure, "")
	<-writerDone
}

// authenticate runs the AUTH REQUEST / AUTH OK / AUTH FAILED handshake
// over text frames until the client presents a valid token or reaches
// maxAuthFailures.
func (h *Hub) authenticate(ctx context.Context, s *socket) (string, bool) {
	failures := 0
	for {
		if err := h.writeJSON(ctx, s, actionFrame{ActionType: "AUTH REQUEST"}); err != nil {
			return "", false
		}

		_, data, err := s.conn.Read(ctx)
		if err != nil {
			return "", false
		}

		userID, err := h.issuer.Verify(string(data))
		if err != nil {
			failures++
			if writeErr := h.writeJSON(ctx, s, actionFrame{ActionType: "AUTH FAILED"}); writeErr != nil {
				return "", false
			}
			if failures >= maxAuthFailures {
				h.logger.Warn().Msg("max auth failure count reached")
				return "", false
			}
			continue
		}

		if err := h.writeJSON(ctx, s, actionFrame{ActionType: "AUTH OK"}); err != nil {
			return "", false
		}
		return userID, true
	}
}

func (h *Hub) writeJSON(ctx context.Context, s *socket, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.conn.Write(ctx, websocket.MessageText, body)
}

// readLoop discards any further client frames after authentication;
// the protocol is server-to-client push only past the handshake. It
// exists solely to detect connection closure.
func (h *Hub) readLoop(ctx context.Context, s *socket) {
	for {
		if _, _, err := s.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, s *socket) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.Write(ctx, frame.messageType, frame.data); err != nil {
				var closeErr websocket.CloseError
				if !errors.As(err, &closeErr) {
					h.logger.Debug().Err(err).Msg("websocket write failed")
				}
				return
			}
		}
	}
}
