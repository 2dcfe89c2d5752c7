// Package main runs one websocket-server process: it holds browser
// connections and relays envelopes the broker publishes to Redis
// (internal/fanout.Hub, spec.md §4.3).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

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
	if cfg.App.SecretKey == "" {
		panic("APP_SECRET_KEY is required to verify websocket auth tokens")
	}

	logger := logging.New(cfg.Logging).With().Str("service", "wsserver").Logger()

	rdb, err := redisconn.Open(cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	issuer := fanout.NewTokenIssuer(cfg.App.SecretKey)
	hub := fanout.NewHub(rdb, issuer, logger)

	go func() {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("hub relay loop exited")
		}
	}()
	go hub.Heartbeat(ctx)

	r := chi.NewRouter()
	r.Get("/websocket", hub.ServeHTTP)

	addr := fmt.Sprintf(":%d", cfg.Ports.Websocket)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("listening for incoming websocket connections")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("wsserver exited")
	}

	logger.Info().Msg("wsserver shutdown complete")
}
