// Package cronlog records the outcome of out-of-core cron-job
// invocations into the cron_job_runs table (SPEC_FULL.md §6 item 1,
// grounded on original_source/app/models/cron_job_run.py). The cron
// runner itself is out of scope (spec.md §1); this is only the
// bookkeeping table's repository.
package cronlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded invocation of a named cron script.
type Run struct {
	ID         uuid.UUID
	ScriptName string
	ExitStatus int
	Stdout     string
	Duration   time.Duration
	CreatedAt  time.Time
}

// Repository is the pgx-backed writer/reader for cron_job_runs.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps a connection pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts one completed run.
func (r *Repository) Record(ctx context.Context, run Run) error {
	if run.ID == (uuid.UUID{}) {
		run.ID = uuid.New()
	}
	const q = `
		INSERT INTO cron_job_runs (id, script_name, exit_status, stdout, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q,
		run.ID, run.ScriptName, run.ExitStatus, run.Stdout, run.Duration.Milliseconds(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record cron run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs of a given script, most recent
// first, for operator inspection (e.g. cmd/baselayerctl).
func (r *Repository) Recent(ctx context.Context, scriptName string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
		SELECT id, script_name, exit_status, stdout, duration_ms, created_at
		FROM cron_job_runs
		WHERE script_name = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, q, scriptName, limit)
	if err != nil {
		return nil, fmt.Errorf("query cron runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.ScriptName, &run.ExitStatus, &run.Stdout, &durationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cron run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
