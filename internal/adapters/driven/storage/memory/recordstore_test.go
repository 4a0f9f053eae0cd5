package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

func newRecord(id, source string, page int, hash string) *domain.Record {
	return &domain.Record{ID: id, Source: source, Page: page, Content: "content " + id, ContentHash: hash}
}

func TestRecordStore_InsertAndGet(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	inserted, err := store.InsertRecord(ctx, newRecord("r1", "E2/AS1", 3, "h1"))
	require.NoError(t, err)
	assert.True(t, inserted)

	got, err := store.GetRecord(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "E2/AS1", got.Source)
	assert.False(t, got.IsProcessed())

	missing, err := store.GetRecord(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecordStore_InsertDuplicateHash(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	_, err := store.InsertRecord(ctx, newRecord("r1", "a", 1, "same"))
	require.NoError(t, err)

	inserted, err := store.InsertRecord(ctx, newRecord("r2", "b", 1, "same"))
	require.NoError(t, err)
	assert.False(t, inserted)

	c, _ := store.Counts(ctx)
	assert.Equal(t, 1, c.Total)
}

func TestRecordStore_InsertIDConflict(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	_, err := store.InsertRecord(ctx, newRecord("r1", "a", 1, "h1"))
	require.NoError(t, err)

	inserted, err := store.InsertRecord(ctx, newRecord("r1", "a", 1, "h1"))
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = store.InsertRecord(ctx, newRecord("r1", "a", 2, "h2"))
	assert.ErrorIs(t, err, domain.ErrIDConflict)
	assert.False(t, inserted)

	inserted, err = store.InsertRecord(ctx, newRecord("r2", "a", 2, "h2"))
	require.NoError(t, err)
	assert.True(t, inserted, "hash of the rejected record stays free")
}

func TestRecordStore_InsertInvalid(t *testing.T) {
	store := NewRecordStore()
	_, err := store.InsertRecord(context.Background(), &domain.Record{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordStore_NextUnprocessed_Order(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	for _, r := range []*domain.Record{
		newRecord("c", "b-doc", 1, "h1"),
		newRecord("b", "a-doc", 2, "h2"),
		newRecord("a", "a-doc", 2, "h3"),
		newRecord("d", "a-doc", 1, "h4"),
	} {
		_, err := store.InsertRecord(ctx, r)
		require.NoError(t, err)
	}

	batch, err := store.NextUnprocessed(ctx, 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, []string{"d", "a", "b"}, []string{batch[0].ID, batch[1].ID, batch[2].ID})

	again, err := store.NextUnprocessed(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, batch, again)
}

func TestRecordStore_UpdateMetadata(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	_, _ = store.InsertRecord(ctx, newRecord("r1", "a", 1, "h1"))
	_, _ = store.InsertRecord(ctx, newRecord("r2", "a", 2, "h2"))

	updated, err := store.UpdateMetadata(ctx, "r1", domain.RecordMetadata{Section: "4.1 Scope", Clause: "E2"})
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = store.UpdateMetadata(ctx, "r1", domain.RecordMetadata{Section: "other"})
	require.NoError(t, err)
	assert.False(t, updated, "processed records are not rewritten")

	updated, err = store.UpdateMetadata(ctx, "r2", domain.RecordMetadata{})
	require.NoError(t, err)
	assert.True(t, updated)

	got, _ := store.GetRecord(ctx, "r1")
	require.NotNil(t, got.Section)
	assert.Equal(t, "4.1 Scope", *got.Section)

	batch, _ := store.NextUnprocessed(ctx, 10)
	assert.Empty(t, batch)

	c, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrichmentCounts{Total: 2, Processed: 2, WithSection: 1, WithClause: 1}, c)

	_, err = store.UpdateMetadata(ctx, "missing", domain.RecordMetadata{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
