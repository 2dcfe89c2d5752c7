package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// MigrationRunner applies named SQL migrations exactly once, tracked
// in a schema_migrations table — the same shape and protocol as the
// teacher's gateway/internal/database.MigrationRunner, adapted to take
// migrations from an in-memory map (CoreSchema in schema.go) rather than an
// embedded filesystem, since baselayer ships one fixed core schema
// plus whatever an embedding application appends.
type MigrationRunner struct {
	db     *Postgres
	logger zerolog.Logger
}

// NewMigrationRunner builds a runner bound to db.
func NewMigrationRunner(db *Postgres, logger zerolog.Logger) *MigrationRunner {
	return &MigrationRunner{db: db, logger: logger}
}

// Run applies every migration in `migrations` (name -> SQL body) not
// yet recorded in schema_migrations, in name-sorted order.
func (m *MigrationRunner) Run(ctx context.Context, migrations map[string]string) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := m.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("read applied migrations: %w", err)
	}

	names := make([]string, 0, len(migrations))
	for name := range migrations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if applied[name] {
			continue
		}
		m.logger.Info().Str("migration", name).Msg("applying migration")
		if err := m.apply(ctx, name, migrations[name]); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// Exists reports whether any migration has ever been recorded,
// creating the schema_migrations table first if it is missing.
func (m *MigrationRunner) Exists(ctx context.Context) (bool, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return false, err
	}
	var count int
	err := m.db.DB.QueryRowContext(ctx, "SELECT count(*) FROM schema_migrations").Scan(&count)
	return count > 0, err
}

// HeadApplied reports whether every migration in `migrations` has
// already been recorded, the inspection cmd/migrator's cached status
// handler performs on each request (spec.md §4.4).
func (m *MigrationRunner) HeadApplied(ctx context.Context, migrations map[string]string) (bool, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return false, err
	}
	applied, err := m.appliedMigrations(ctx)
	if err != nil {
		return false, err
	}
	for name := range migrations {
		if !applied[name] {
			return false, nil
		}
	}
	return true, nil
}

func (m *MigrationRunner) createMigrationsTable(ctx context.Context) error {
	_, err := m.db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	return err
}

func (m *MigrationRunner) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.DB.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (m *MigrationRunner) apply(ctx context.Context, name, body string) error {
	tx, err := m.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)",
		name, time.Now(),
	); err != nil {
		return err
	}
	return tx.Commit()
}
