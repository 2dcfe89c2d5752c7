// Package store is the pgx-backed execution layer: connection setup,
// schema migrations, and repositories for the core tables of spec.md
// §3 plus the two bundled example entities (groups, group_users).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/akz4ol/baselayer/internal/config"
)

// Postgres wraps the connection pool every process in the topology
// opens against the core schema.
type Postgres struct {
	DB     *sql.DB
	logger zerolog.Logger
}

// Open connects to Postgres per cfg and verifies the connection.
func Open(cfg config.DatabaseConfig, logger zerolog.Logger) (*Postgres, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database,
	)
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.PoolSize + cfg.MaxOverflow)
	db.SetMaxIdleConns(cfg.PoolSize)
	db.SetConnMaxLifetime(cfg.PoolRecycle)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to postgres")

	return &Postgres{DB: db, logger: logger}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error { return p.DB.Close() }

// Health reports whether the pool can reach the database.
func (p *Postgres) Health() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return p.DB.PingContext(ctx) == nil
}
