// Package audit records every access-denial and leak-policy event to
// a durable, queryable store, extending the webhook notification
// internal/session already posts (SPEC_FULL.md §3: "the natural
// column-store home for high-volume access-denial telemetry").
package audit

import (
	"context"
	"time"
)

// Event is one denied or leaked row-access attempt.
type Event struct {
	Table          string
	Mode           string
	PrincipalID    string
	InaccessibleID string
	Strict         bool
	At             time.Time
}

// Sink persists Events. Strict-policy denials and warn-policy leaks
// both go through it; internal/session decides whether the request
// also gets rejected or merely warned, audit just needs the record.
type Sink interface {
	RecordDenial(ctx context.Context, event Event) error
	Close() error
}

// Reader is the queryable half of a Sink, implemented by
// *ClickHouseSink. Handlers depend on this narrower interface rather
// than the concrete type so a NopSink can stand in when no
// ClickHouseConfig.Addr is configured.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// NopSink discards events, used where no ClickHouseConfig.Addr is
// configured rather than threading a nil *ClickHouseSink through
// internal/session.
type NopSink struct{}

func (NopSink) RecordDenial(context.Context, Event) error { return nil }
func (NopSink) Close() error                               { return nil }
func (NopSink) Recent(context.Context, int) ([]Event, error) { return nil, nil }
