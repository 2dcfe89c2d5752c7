// Package redisconn opens the Redis client the fan-out plane uses as
// its pub/sub transport, grounded on the teacher's
// internal/database.NewRedis (same ParseURL/MaxRetries/PoolSize shape,
// generalized from a generic cache client to the pub/sub broker
// substituted for the original's ZeroMQ proxy, SPEC_FULL.md §3).
package redisconn

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/akz4ol/baselayer/internal/config"
)

// Open connects to Redis per cfg and verifies the connection with a
// bounded ping before returning.
func Open(cfg config.RedisConfig, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.MaxRetries = cfg.MaxRetries
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info().Str("addr", opts.Addr).Msg("connected to redis")
	return client, nil
}
