// Package main runs the migration manager: applies pending migrations
// at startup, then serves GET / with {"migrated": bool} for other
// processes' migration gates to poll (spec.md §4.4).
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
	"github.com/akz4ol/baselayer/internal/store"
	"github.com/akz4ol/baselayer/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := logging.New(cfg.Logging).With().Str("service", "migrator").Logger()

	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	runner := store.NewMigrationRunner(db, logger)
	migrations := store.CoreSchema

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	applied, err := runner.HeadApplied(ctx, migrations)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to inspect migration status")
	}
	if !applied {
		logger.Info().Msg("attempting migration")
		if err := runner.Run(ctx, migrations); err != nil {
			logger.Error().Err(err).Msg("migration failed")
		} else {
			logger.Info().Msg("migration succeeded")
		}
	}

	manager := supervisor.NewMigrationManager(runner, migrations)

	addr := fmt.Sprintf(":%d", cfg.Ports.MigrationManager)
	srv := &http.Server{Addr: addr, Handler: manager}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info().Str("addr", addr).Msg("migration manager listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("migrator exited")
	}

	logger.Info().Msg("migrator shutdown complete")
}
