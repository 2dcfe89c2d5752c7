package audit

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog"

	"github.com/akz4ol/baselayer/internal/config"
)

// schemaDDL creates the append-only access_denials table: one row per
// denied or leaked access attempt, sorted by table name, then time.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS access_denials (
	at           DateTime64(3),
	table_name   String,
	mode         String,
	principal_id String,
	row_id       String,
	strict       UInt8
) ENGINE = MergeTree
ORDER BY (table_name, at)
`

// ClickHouseSink is the audit-trail sink backing internal/session's
// leak-policy and strict-denial reporting.
type ClickHouseSink struct {
	conn   clickhouse.Conn
	logger zerolog.Logger
}

// NewClickHouseSink connects to ClickHouse and ensures the
// access_denials table exists.
func NewClickHouseSink(ctx context.Context, cfg config.ClickHouseConfig, logger zerolog.Logger) (*ClickHouseSink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	if err := conn.Exec(ctx, schemaDDL); err != nil {
		return nil, fmt.Errorf("ensure access_denials table: %w", err)
	}
	return &ClickHouseSink{conn: conn, logger: logger}, nil
}

// RecordDenial inserts a single audit row. Failures are returned, not
// swallowed — the caller (internal/session) logs and continues, since
// a down audit sink must never block the access decision itself.
func (s *ClickHouseSink) RecordDenial(ctx context.Context, event Event) error {
	strict := uint8(0)
	if event.Strict {
		strict = 1
	}
	return s.conn.Exec(ctx,
		"INSERT INTO access_denials (at, table_name, mode, principal_id, row_id, strict) VALUES (?, ?, ?, ?, ?, ?)",
		event.At, event.Table, event.Mode, event.PrincipalID, event.InaccessibleID, strict,
	)
}

// Recent returns the most recent audit rows, newest first, up to
// limit — the "queryable" half of the append-only audit store
// SPEC_FULL.md §3 calls for.
func (s *ClickHouseSink) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.conn.Query(ctx,
		"SELECT at, table_name, mode, principal_id, row_id, strict FROM access_denials ORDER BY at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query access_denials: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var strict uint8
		if err := rows.Scan(&e.At, &e.Table, &e.Mode, &e.PrincipalID, &e.InaccessibleID, &strict); err != nil {
			return nil, fmt.Errorf("scan access_denials row: %w", err)
		}
		e.Strict = strict != 0
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}
