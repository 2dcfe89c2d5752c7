package session

import (
	"context"
	"database/sql"
)

// Unverified is a raw session without a Principal, for read-only
// internal operations such as resolving the Principal itself (spec.md
// §4.2, "Fallback (unverified) session"). It performs no access
// verification and must never be used to execute handler business
// logic.
type Unverified struct {
	ctx context.Context
	db  DB
}

// OpenUnverified wraps db for a single non-transactional read-only
// operation.
func OpenUnverified(ctx context.Context, db *sql.DB) *Unverified {
	return &Unverified{ctx: ctx, db: dbAdapter{db: db}}
}

// DB exposes the underlying connection pool.
func (u *Unverified) DB() DB { return u.db }

// Context returns the bound context.
func (u *Unverified) Context() context.Context { return u.ctx }
