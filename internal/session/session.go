// Package session implements the verified transactional session of
// spec.md §4.2: a per-request unit of work that tracks every row read
// and mutated, then verifies — atomically, at commit — that the
// acting principal was entitled to touch each one.
//
// There is no global or goroutine-local session lookup anywhere in
// this tree (SPEC_FULL.md §5, "No global scoped session"): a handler
// opens one with Open, threads it explicitly through its call chain,
// and closes it with Commit or Rollback.
package session

import (
	"context"
	"database/sql"

	"github.com/akz4ol/baselayer/internal/access"
	"github.com/akz4ol/baselayer/internal/apperr"
	"github.com/akz4ol/baselayer/internal/audit"
	"github.com/akz4ol/baselayer/internal/config"
	"github.com/akz4ol/baselayer/internal/domain"
	"github.com/akz4ol/baselayer/internal/webhook"
	"github.com/rs/zerolog"
)

// pendingOp is a mutation queued against a row, to be executed during
// Commit's flush step and verified against the row's declared policy
// either before (delete) or after (create) that flush.
type pendingOp struct {
	row  access.RowID
	exec func(ctx context.Context, db DB) error
}

// VerifiedSession is the request-scoped unit of work described above.
type VerifiedSession struct {
	ctx       context.Context
	principal domain.Principal
	reg       *access.Registry
	security  config.SecurityConfig
	slack     *webhook.SlackClient
	audit     audit.Sink
	log       zerolog.Logger

	db  DB
	txc committer

	readRows   []access.RowID
	updateRows []access.RowID
	deletes    []pendingOp
	creates    []pendingOp
}

// committer is the subset of *sql.Tx Commit needs to end the
// transaction, factored out so the commit protocol can be exercised in
// tests against a fake in place of a live connection.
type committer interface {
	Commit() error
	Rollback() error
}

// Deps bundles the dependencies Open needs beyond the request context
// and principal.
type Deps struct {
	Registry *access.Registry
	Security config.SecurityConfig
	Slack    *webhook.SlackClient
	Audit    audit.Sink
	Log      zerolog.Logger
}

// Open begins a transaction scoped to one request and returns a
// VerifiedSession bound to principal. The caller must end it with
// exactly one of Commit or Rollback.
func Open(ctx context.Context, db *sql.DB, principal domain.Principal, deps Deps) (*VerifiedSession, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal("begin transaction", err)
	}
	sink := deps.Audit
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &VerifiedSession{
		ctx:       ctx,
		principal: principal,
		reg:       deps.Registry,
		security:  deps.Security,
		slack:     deps.Slack,
		audit:     sink,
		log:       deps.Log,
		db:        txAdapter{tx: tx},
		txc:       tx,
	}, nil
}

// newSession constructs a VerifiedSession directly from a DB and
// committer, bypassing Open's real BeginTx call. Used by tests to
// drive the commit protocol against fakes.
func newSession(ctx context.Context, principal domain.Principal, reg *access.Registry, security config.SecurityConfig, slack *webhook.SlackClient, log zerolog.Logger, db DB, txc committer) *VerifiedSession {
	return &VerifiedSession{
		ctx: ctx, principal: principal, reg: reg, security: security,
		slack: slack, audit: audit.NopSink{}, log: log, db: db, txc: txc,
	}
}

// Tx exposes the underlying transaction to repository code that needs
// to issue statements outside the tracked read/create/update/delete
// protocol (e.g. raw lookups that don't themselves need verification,
// such as reading a row the caller already knows it owns).
func (s *VerifiedSession) Tx() DB { return s.db }

// Principal returns the session's acting principal.
func (s *VerifiedSession) Principal() domain.Principal { return s.principal }

// TrackRead registers rows loaded during the request that are neither
// modified nor deleted.
func (s *VerifiedSession) TrackRead(rows ...access.RowID) {
	s.readRows = append(s.readRows, rows...)
}

// TrackUpdate registers a row loaded and then modified in place. The
// modification itself must already have been applied to the database
// by the time Commit runs verification — callers update eagerly (Go
// has no deferred unit-of-work flush), so the update bucket is
// verified using the row's already-current state.
func (s *VerifiedSession) TrackUpdate(rows ...access.RowID) {
	s.updateRows = append(s.updateRows, rows...)
}

// QueueDelete registers a row for deletion. exec must issue the DELETE
// statement; it runs during Commit's flush step, after delete rows
// have been verified accessible (deleting first would make the row
// unjoinable for the accessible-ids check).
func (s *VerifiedSession) QueueDelete(row access.RowID, exec func(ctx context.Context, db DB) error) {
	s.deletes = append(s.deletes, pendingOp{row: row, exec: exec})
}

// QueueCreate registers a new row. exec must issue the INSERT
// statement and assign the row's generated id; it runs during
// Commit's flush step, before create rows are verified (the policy
// may reference other rows created in the same flush or the row's own
// assigned id).
func (s *VerifiedSession) QueueCreate(row access.RowID, exec func(ctx context.Context, db DB) error) {
	s.creates = append(s.creates, pendingOp{row: row, exec: exec})
}

// Commit runs the five-step protocol of spec.md §4.2: verify
// read/update/delete, flush pending deletes and creates, verify
// create, then commit — or roll back and return an *apperr.Error on
// any access-control leak under a strict policy.
func (s *VerifiedSession) Commit() error {
	deleteRows := make([]access.RowID, len(s.deletes))
	for i, op := range s.deletes {
		deleteRows[i] = op.row
	}

	if err := s.bulkVerify(access.Read, s.readRows); err != nil {
		return s.abort(err)
	}
	if err := s.bulkVerify(access.Update, s.updateRows); err != nil {
		return s.abort(err)
	}
	if err := s.bulkVerify(access.Delete, deleteRows); err != nil {
		return s.abort(err)
	}

	for _, op := range s.deletes {
		if err := op.exec(s.ctx, s.db); err != nil {
			return s.abort(apperr.Internal("delete flush", err))
		}
	}
	for _, op := range s.creates {
		if err := op.exec(s.ctx, s.db); err != nil {
			return s.abort(apperr.Internal("create flush", err))
		}
	}

	createRows := make([]access.RowID, len(s.creates))
	for i, op := range s.creates {
		createRows[i] = op.row
	}
	if err := s.bulkVerify(access.Create, createRows); err != nil {
		return s.abort(err)
	}

	if err := s.txc.Commit(); err != nil {
		return apperr.Internal("commit transaction", err)
	}
	return nil
}

// Rollback aborts the session without running verification, for
// handlers that bail out early on a non-access error.
func (s *VerifiedSession) Rollback() error {
	return s.txc.Rollback()
}

func (s *VerifiedSession) abort(err error) error {
	if rbErr := s.txc.Rollback(); rbErr != nil {
		s.log.Error().Err(rbErr).Msg("rollback failed after verification error")
	}
	return err
}
