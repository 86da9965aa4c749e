package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEntries(t *testing.T, s *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{SessionID: "s1", EventType: EventSessionCreated, OccurredAt: base, Summary: "store.db uploaded"},
		{SessionID: "s1", EventType: EventTablesSelected, OccurredAt: base.Add(time.Minute), Summary: "2 tables selected"},
		{SessionID: "s1", EventType: EventGenerationRun, OccurredAt: base.Add(2 * time.Minute), Summary: "9 pages generated"},
		{SessionID: "s2", EventType: EventSessionCreated, OccurredAt: base, Summary: "other.db uploaded"},
	}
	for _, e := range entries {
		require.NoError(t, s.Record(ctx, e))
	}
}

func TestMemoryStoreBySession(t *testing.T) {
	s := NewMemoryStore()
	seedEntries(t, s)

	entries, total, err := s.BySession(context.Background(), "s1", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, EventGenerationRun, entries[0].EventType)
	assert.Equal(t, EventSessionCreated, entries[2].EventType)
}

func TestMemoryStoreFilters(t *testing.T) {
	s := NewMemoryStore()
	seedEntries(t, s)
	ctx := context.Background()

	since := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	entries, total, err := s.BySession(ctx, "s1", QueryOptions{Since: &since})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, entries, 2)

	entries, _, err = s.BySession(ctx, "s1", QueryOptions{Types: []string{EventTablesSelected}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2 tables selected", entries[0].Summary)

	entries, total, err = s.BySession(ctx, "s1", QueryOptions{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, entries, 1)

	entries, _, err = s.BySession(ctx, "missing", QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
