// Package main runs the provisioning status plane: a placeholder
// server returning 503 on every route until the real application is
// ready to take its place (spec.md §4.4, internal/supervisor.StatusPlane).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/akz4ol/baselayer/internal/config"
	"github.com/akz4ol/baselayer/internal/logging"
	"github.com/akz4ol/baselayer/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := logging.New(cfg.Logging).With().Str("service", "statusd").Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	plane := supervisor.NewStatusPlane("baselayer")
	addr := fmt.Sprintf(":%d", cfg.Ports.Status)
	srv := &http.Server{Addr: addr, Handler: plane}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info().Str("addr", addr).Msg("status plane listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("statusd exited")
	}

	logger.Info().Msg("statusd shutdown complete")
}
