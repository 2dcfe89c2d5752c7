package fanout

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// maxAuthFailures matches original_source's max_auth_fails: a socket
// that fails AUTH REQUEST this many times is dropped.
const maxAuthFailures = 3

// heartbeatInterval matches the 45-second PeriodicCallback the original
// uses to keep the nginx proxy from timing out an idle connection.
const heartbeatInterval = 45 * time.Second

// sendQueueSize bounds each socket's outbound buffer. Once a slow
// reader's buffer is full, further messages to it are dropped rather
// than let its backlog grow unbounded, the non-blocking delivery
// semantics spec.md §4.3 calls for.
const sendQueueSize = 64

// Hub holds every live websocket connection, grouped by authenticated
// user id, and relays Redis-delivered envelopes onto the matching
// sockets. It is the Go analogue of the WebSocket class-level
// `sockets` registry in original_source's websocket_server.py.
type Hub struct {
	redis  *redis.Client
	issuer TokenIssuer
	logger zerolog.Logger

	mu      sync.Mutex
	byUser  map[string]map[*socket]struct{}
	userSub *redis.PubSub
}

// outboundFrame is one queued write: either a JSON text frame carrying
// an envelope, or the 2-byte binary heartbeat ping.
type outboundFrame struct {
	messageType websocket.MessageType
	data        []byte
}

type socket struct {
	conn   *websocket.Conn
	userID string
	send   chan outboundFrame
}

// NewHub wires the Redis client used both for per-user SUBSCRIBE
// management and the permanent broadcast subscription.
func NewHub(rdb *redis.Client, issuer TokenIssuer, logger zerolog.Logger) *Hub {
	return &Hub{
		redis:  rdb,
		issuer: issuer,
		logger: logger,
		byUser: make(map[string]map[*socket]struct{}),
	}
}

// Run subscribes to the broadcast channel and the (initially empty)
// per-user channel set, dispatching every received envelope until ctx
// is canceled. Call it once, in its own goroutine, before accepting
// connections.
func (h *Hub) Run(ctx context.Context) error {
	broadcast := h.redis.Subscribe(ctx, channelFor(BroadcastUserID))
	defer broadcast.Close()

	h.mu.Lock()
	h.userSub = h.redis.Subscribe(ctx)
	h.mu.Unlock()
	defer h.userSub.Close()

	go h.relay(ctx, broadcast.Channel())
	h.relay(ctx, h.userSub.Channel())
	return ctx.Err()
}

func (h *Hub) relay(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			envelope, err := Decode([]byte(msg.Payload))
			if err != nil {
				h.logger.Warn().Err(err).Msg("hub received malformed envelope")
				continue
			}
			h.deliver(envelope)
		}
	}
}

func (h *Hub) deliver(e Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	targets := h.byUser[e.UserID]
	if e.UserID == BroadcastUserID {
		h.logger.Debug().Msg("forwarding message to all users")
		for _, sockets := range h.byUser {
			for s := range sockets {
				h.enqueue(s, e)
			}
		}
		return
	}

	h.logger.Debug().Str("user_id", e.UserID).Msg("forwarding message to user")
	for s := range targets {
		h.enqueue(s, e)
	}
}

func (h *Hub) enqueue(s *socket, e Envelope) {
	body, err := json.Marshal(struct {
		ActionType string          `json:"actionType"`
		Payload    json.RawMessage `json:"payload,omitempty"`
	}{ActionType: e.ActionType, Payload: e.Payload})
	if err != nil {
		return
	}
	select {
	case s.send <- outboundFrame{messageType: websocket.MessageText, data: body}:
	default:
		h.logger.Warn().Str("user_id", s.userID).Msg("socket send queue full, dropping message")
	}
}

// addSocket registers s under its authenticated user, subscribing to
// that user's channel if it is the first socket for them.
func (h *Hub) addSocket(ctx context.Context, s *socket) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.byUser[s.userID]
	if !ok {
		set = make(map[*socket]struct{})
		h.byUser[s.userID] = set
		h.userSub.Subscribe(ctx, channelFor(s.userID))
	}
	set[s] = struct{}{}
}

// removeSocket drops s from its user's set, unsubscribing from that
// user's channel once their last socket is gone (mirrors on_close in
// original_source's websocket_server.py).
func (h *Hub) removeSocket(ctx context.Context, s *socket) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.byUser[s.userID]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.byUser, s.userID)
		h.userSub.Unsubscribe(ctx, channelFor(s.userID))
	}
}

// Heartbeat sends a 2-byte binary ping to every connected socket every
// 45 seconds until ctx is canceled, keeping idle connections alive
// through an upstream proxy's read timeout.
func (h *Hub) Heartbeat(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.mu.Lock()
			for _, set := range h.byUser {
				for s := range set {
					select {
					case s.send <- outboundFrame{messageType: websocket.MessageBinary, data: []byte("<3")}:
					default:
					}
				}
			}
			h.mu.Unlock()
		}
	}
}
