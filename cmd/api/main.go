// Package main runs the handler process: waits for the migration gate
// to open, then serves internal/httpapi's router (spec.md §4.4's
// process topology, core entry point).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/akz4ol/baselayer/internal/audit"
	"github.com/akz4ol/baselayer/internal/config"
	"github.com/akz4ol/baselayer/internal/fanout"
	"github.com/akz4ol/baselayer/internal/httpapi"
	"github.com/akz4ol/baselayer/internal/logging"
	"github.com/akz4ol/baselayer/internal/oauth"
	"github.com/akz4ol/baselayer/internal/signedcookie"
	"github.com/akz4ol/baselayer/internal/store"
	"github.com/akz4ol/baselayer/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if cfg.App.SecretKey == "" {
		panic("APP_SECRET_KEY is required")
	}

	logger := logging.New(cfg.Logging).With().Str("service", "api").Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gateURL := fmt.Sprintf("http://127.0.0.1:%d/", cfg.Ports.MigrationManager)
	logger.Info().Str("url", gateURL).Msg("waiting for migration gate")
	if err := supervisor.WaitForMigration(ctx, gateURL); err != nil {
		logger.Fatal().Err(err).Msg("migration gate wait aborted")
	}

	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	users := store.NewUserRepository(db.DB)
	tokens := store.NewTokenRepository(db.DB, cfg.Auth.BcryptCost)
	signer := signedcookie.New(cfg.App.SecretKey)
	issuer := fanout.NewTokenIssuer(cfg.App.SecretKey)

	var auditSink audit.Sink = audit.NopSink{}
	if cfg.ClickHouse.Addr != "" {
		sink, err := audit.NewClickHouseSink(ctx, cfg.ClickHouse, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to clickhouse")
		}
		defer sink.Close()
		auditSink = sink
	}
	auditReader, _ := auditSink.(audit.Reader)
	if auditReader == nil {
		auditReader = audit.NopSink{}
	}

	var provider *oauth.Provider
	if cfg.OAuth.IssuerURL != "" {
		provider, err = oauth.NewProvider(ctx, cfg.OAuth, cfg.App.SecretKey, oauthResolver{users: users}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize oauth provider")
		}
	}

	router := httpapi.New(httpapi.Dependencies{
		Logger:      logger,
		Tokens:      tokens,
		Users:       users,
		Signer:      signer,
		TokenIssuer: issuer,
		Audit:       auditReader,
		OAuth:       provider,
	})

	addr := fmt.Sprintf(":%d", cfg.Ports.AppInternal)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info().Str("addr", addr).Msg("handler process ready to accept connections")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("api exited")
	}

	logger.Info().Msg("api shutdown complete")
}

// oauthResolver implements oauth.UserResolver by looking up a user
// already linked to the given OIDC subject — baselayer does not
// provision new users from a social login, only links pre-existing
// accounts (spec.md's User.oauth_uid is set by an out-of-core admin
// flow, not this endpoint).
type oauthResolver struct {
	users *store.UserRepository
}

func (r oauthResolver) ResolveOAuthUID(ctx context.Context, oauthUID, email string) (string, error) {
	user, err := r.users.GetByOAuthUID(ctx, oauthUID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("no user linked to oauth subject %s", oauthUID)
	}
	return user.ID.String(), nil
}
