package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/akz4ol/baselayer/internal/access"
	"github.com/akz4ol/baselayer/internal/apperr"
	"github.com/akz4ol/baselayer/internal/config"
	"github.com/akz4ol/baselayer/internal/domain"
	"github.com/akz4ol/baselayer/internal/registry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteRow struct {
	id     string
	policy access.Policy
}

func (n noteRow) Table() string { return "notes" }
func (n noteRow) AccessPolicies() access.Policies {
	return access.Policies{Read: n.policy, Update: n.policy, Delete: n.policy, Create: n.policy}
}
func (n noteRow) RowID() string { return n.id }

type fakeRows struct {
	ids []string
	i   int
}

func (f *fakeRows) Next() bool { f.i++; return f.i <= len(f.ids) }
func (f *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = f.ids[f.i-1]
	return nil
}
func (f *fakeRows) Close() error { return nil }
func (f *fakeRows) Err() error   { return nil }

// fakeDB treats the trailing argument of any query as the candidate id
// list and reports every id not present in `accessible` as
// inaccessible, independent of the actual compiled SQL text — this
// isolates the session's commit-protocol orchestration from the SQL
// compilation already covered by internal/access's own tests.
type fakeDB struct {
	accessible map[string]bool
	execErr    error
	execCalls  int
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.execCalls++
	return nil, f.execErr
}

func (f *fakeDB) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	ids := args[len(args)-1].([]string)
	var inaccessible []string
	for _, id := range ids {
		if !f.accessible[id] {
			inaccessible = append(inaccessible, id)
		}
	}
	return &fakeRows{ids: inaccessible}, nil
}

func (f *fakeDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row { return nil }

type fakeCommitter struct {
	committed bool
	rolledBack bool
}

func (f *fakeCommitter) Commit() error   { f.committed = true; return nil }
func (f *fakeCommitter) Rollback() error { f.rolledBack = true; return nil }

func testRegistry() *access.Registry {
	return access.NewRegistry(registry.New())
}

func testPrincipal() *domain.User {
	return (&domain.User{ID: uuid.New()}).WithPermissions([]string{"Comment"})
}

func newTestSession(db *fakeDB, txc *fakeCommitter, strict bool) *VerifiedSession {
	return newSession(
		context.Background(),
		testPrincipal(),
		testRegistry(),
		config.SecurityConfig{Strict: strict},
		nil,
		zerolog.Nop(),
		db,
		txc,
	)
}

func TestCommit_AllAccessibleCommits(t *testing.T) {
	row := noteRow{id: "r1", policy: access.Public()}
	db := &fakeDB{accessible: map[string]bool{"r1": true}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, true)
	s.TrackRead(row)

	err := s.Commit()
	require.NoError(t, err)
	assert.True(t, txc.committed)
	assert.False(t, txc.rolledBack)
}

func TestCommit_StrictLeakReturnsAccessErrorAndRollsBack(t *testing.T) {
	row := noteRow{id: "r1", policy: access.Restricted()}
	db := &fakeDB{accessible: map[string]bool{}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, true)
	s.TrackRead(row)

	err := s.Commit()
	require.Error(t, err)
	assert.True(t, apperr.IsAccess(err))
	assert.True(t, txc.rolledBack)
	assert.False(t, txc.committed)
}

func TestCommit_WarnPolicyStillRollsBackWithoutAccessError(t *testing.T) {
	row := noteRow{id: "r1", policy: access.Restricted()}
	db := &fakeDB{accessible: map[string]bool{}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, false)
	s.TrackRead(row)

	err := s.Commit()
	require.Error(t, err)
	assert.False(t, apperr.IsAccess(err))
	assert.True(t, txc.rolledBack)
	assert.False(t, txc.committed)
}

func TestCommit_DeleteVerifiedBeforeFlushCreateAfter(t *testing.T) {
	deleted := noteRow{id: "d1", policy: access.Public()}
	created := &noteRow{id: "", policy: access.Public()}
	db := &fakeDB{accessible: map[string]bool{"d1": true, "c1": true}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, true)

	deleteExecuted := false
	s.QueueDelete(deleted, func(ctx context.Context, db DB) error {
		deleteExecuted = true
		return nil
	})
	s.QueueCreate(created, func(ctx context.Context, db DB) error {
		created.id = "c1" // simulate INSERT ... RETURNING id assigning the pk
		return nil
	})

	err := s.Commit()
	require.NoError(t, err)
	assert.True(t, deleteExecuted)
	assert.Equal(t, "c1", created.id)
	assert.True(t, txc.committed)
}

func TestCommit_CreateFlushErrorRollsBack(t *testing.T) {
	created := &noteRow{id: "", policy: access.Public()}
	db := &fakeDB{accessible: map[string]bool{}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, true)

	wantErr := errors.New("insert failed")
	s.QueueCreate(created, func(ctx context.Context, db DB) error { return wantErr })

	err := s.Commit()
	require.Error(t, err)
	assert.True(t, txc.rolledBack)
}

func TestBulkVerify_SkipsUnassignedIDs(t *testing.T) {
	row := &noteRow{id: "", policy: access.Restricted()}
	db := &fakeDB{accessible: map[string]bool{}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, true)

	err := s.bulkVerify(access.Create, []access.RowID{row})
	assert.NoError(t, err)
}

func TestBulkVerify_DedupesRepeatedIDs(t *testing.T) {
	row1 := noteRow{id: "same", policy: access.Public()}
	row2 := noteRow{id: "same", policy: access.Public()}
	db := &fakeDB{accessible: map[string]bool{"same": true}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, true)

	err := s.bulkVerify(access.Read, []access.RowID{row1, row2})
	assert.NoError(t, err)
}

func TestOpenUnverified(t *testing.T) {
	u := OpenUnverified(context.Background(), nil)
	assert.NotNil(t, u.DB())
	assert.NotNil(t, u.Context())
}

func TestLeakWarnPolicy_SlackDisabledSkipsWebhook(t *testing.T) {
	row := noteRow{id: "r1", policy: access.Restricted()}
	db := &fakeDB{accessible: map[string]bool{}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, false)
	s.security.SlackEnable = false

	err := s.bulkVerify(access.Read, []access.RowID{row})
	require.Error(t, err)
	assert.False(t, apperr.IsAccess(err))
}

func TestCommitDeadlineRespected(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	row := noteRow{id: "r1", policy: access.Public()}
	db := &fakeDB{accessible: map[string]bool{"r1": true}}
	txc := &fakeCommitter{}
	s := newSession(ctx, testPrincipal(), testRegistry(), config.SecurityConfig{Strict: true}, nil, zerolog.Nop(), db, txc)
	s.TrackRead(row)

	err := s.Commit()
	require.NoError(t, err)
}
