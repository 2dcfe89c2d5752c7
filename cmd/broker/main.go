// Package main runs the fan-out broker: the PULL->PUB forwarder
// standing between HTTP handlers and wsserver processes
// (internal/fanout.Broker, spec.md §4.3).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/akz4ol/baselayer/internal/config"
	"github.com/akz4ol/baselayer/internal/fanout"
	"github.com/akz4ol/baselayer/internal/logging"
	"github.com/akz4ol/baselayer/internal/redisconn"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := logging.New(cfg.Logging).With().Str("service", "broker").Logger()

	rdb, err := redisconn.Open(cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	addr, err := ingressAddr(cfg.Ports.WebsocketPathIn)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid websocket ingress address")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to listen on ingress address")
	}
	defer ln.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	broker := fanout.NewBroker(rdb, logger)

	logger.Info().Str("addr", addr).Msg("broker listening for envelopes")
	if err := broker.Serve(ctx, ln); err != nil {
		logger.Fatal().Err(err).Msg("broker exited")
	}

	logger.Info().Msg("broker shutdown complete")
}

// ingressAddr strips the tcp:// scheme cfg.Ports.WebsocketPathIn
// carries over from the original's ZeroMQ endpoint string, since
// net.Listen wants a bare host:port.
func ingressAddr(raw string) (string, error) {
	const scheme = "tcp://"
	if len(raw) > len(scheme) && raw[:len(scheme)] == scheme {
		return raw[len(scheme):], nil
	}
	if raw == "" {
		return "", fmt.Errorf("empty ingress address")
	}
	return raw, nil
}
