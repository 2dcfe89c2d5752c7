package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akz4ol/baselayer/internal/access"
	"github.com/akz4ol/baselayer/internal/apperr"
	"github.com/akz4ol/baselayer/internal/audit"
)

type fakeAuditSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeAuditSink) RecordDenial(ctx context.Context, event audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeAuditSink) Close() error { return nil }

func TestHandleInaccessible_RecordsAuditEventUnderWarnPolicy(t *testing.T) {
	row := noteRow{id: "r1", policy: access.Restricted()}
	db := &fakeDB{accessible: map[string]bool{}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, false)

	sink := &fakeAuditSink{}
	s.audit = sink

	err := s.bulkVerify(access.Read, []access.RowID{row})
	require.Error(t, err)
	assert.False(t, apperr.IsAccess(err))

	require.Len(t, sink.events, 1)
	assert.Equal(t, "notes", sink.events[0].Table)
	assert.Equal(t, "r1", sink.events[0].InaccessibleID)
	assert.False(t, sink.events[0].Strict)
}

func TestHandleInaccessible_RecordsAuditEventUnderStrictPolicy(t *testing.T) {
	row := noteRow{id: "r1", policy: access.Restricted()}
	db := &fakeDB{accessible: map[string]bool{}}
	txc := &fakeCommitter{}
	s := newTestSession(db, txc, true)

	sink := &fakeAuditSink{}
	s.audit = sink

	err := s.bulkVerify(access.Read, []access.RowID{row})
	require.Error(t, err)
	assert.True(t, apperr.IsAccess(err))

	require.Len(t, sink.events, 1)
	assert.True(t, sink.events[0].Strict)
}
