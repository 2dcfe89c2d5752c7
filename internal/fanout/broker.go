package fanout

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// maxEnvelopeSize bounds a single ingress frame, guarding the broker
// against a misbehaving producer exhausting memory on a bad length
// prefix.
const maxEnvelopeSize = 1 << 20

// Broker is the PULL->PUB forwarder of original_source's
// message_proxy.py: it accepts envelopes over a plain TCP ingress and
// republishes each one to the Redis channel its routing key resolves
// to, decoupling producers (HTTP handlers, via Publisher) from the
// wsserver processes that actually hold browser connections.
type Broker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewBroker wraps a Redis client used as the PUB half of the forward.
func NewBroker(rdb *redis.Client, logger zerolog.Logger) *Broker {
	return &Broker{redis: rdb, logger: logger}
}

// Serve accepts connections on ln until ctx is canceled, forwarding
// every envelope each connection sends.
func (b *Broker) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fanout: broker accept: %w", err)
		}
		go b.handleConn(ctx, conn)
	}
}

func (b *Broker) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	for {
		var length [4]byte
		if _, err := io.ReadFull(conn, length[:]); err != nil {
			if !errors.Is(err, io.EOF) {
				b.logger.Debug().Err(err).Msg("broker ingress connection closed")
			}
			return
		}

		size := binary.BigEndian.Uint32(length[:])
		if size > maxEnvelopeSize {
			b.logger.Warn().Uint32("size", size).Msg("broker ingress frame too large, closing connection")
			return
		}

		body := make([]byte, size)
		if _, err := io.ReadFull(conn, body); err != nil {
			b.logger.Debug().Err(err).Msg("broker ingress frame truncated")
			return
		}

		envelope, err := Decode(body)
		if err != nil {
			b.logger.Warn().Err(err).Msg("broker received malformed envelope")
			continue
		}

		if err := b.redis.Publish(ctx, channelFor(envelope.UserID), body).Err(); err != nil {
			b.logger.Error().Err(err).Str("channel", channelFor(envelope.UserID)).Msg("broker publish failed")
		}
	}
}
