package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNopSinkDiscardsEvents(t *testing.T) {
	sink := NopSink{}

	err := sink.RecordDenial(context.Background(), Event{
		Table:       "comments",
		Mode:        "read",
		PrincipalID: "user-1",
		At:          time.Now(),
	})
	assert.NoError(t, err)

	events, err := sink.Recent(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, sink.Close())
}

func TestNopSinkSatisfiesSinkAndReader(t *testing.T) {
	var _ Sink = NopSink{}
	var _ Reader = NopSink{}
}
