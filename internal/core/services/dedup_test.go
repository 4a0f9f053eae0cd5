package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driven/storage/memory"
)

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeContent("  a\n\tb   c \n"))
	assert.Equal(t, "", NormalizeContent(" \n "))
}

func TestHashContent(t *testing.T) {
	a := HashContent("Minimum cover shall be 35mm.")
	b := HashContent("Minimum  cover\nshall be 35mm.  ")
	c := HashContent("Minimum cover shall be 40mm.")

	assert.Len(t, a, 64)
	assert.Equal(t, a, b, "layout differences normalise away")
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, HashContent("Minimum cover shall be 35mm."))
}

func TestDeduplicator_SeenAndMark(t *testing.T) {
	d := NewDeduplicator(memory.NewSeenStore())
	ctx := context.Background()

	hash, seen, err := d.Check(ctx, "Table 7.1 Wind Zones")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.MarkSeen(ctx, hash))

	_, seen, err = d.Check(ctx, "Table 7.1   Wind Zones")
	require.NoError(t, err)
	assert.True(t, seen)
}

// dedupFailingStore fails every call.
type dedupFailingStore struct{}

func (dedupFailingStore) Seen(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (dedupFailingStore) MarkSeen(context.Context, string) error {
	return errors.New("redis down")
}

func TestDeduplicator_StoreErrors(t *testing.T) {
	d := NewDeduplicator(dedupFailingStore{})
	ctx := context.Background()

	_, err := d.Seen(ctx, "h")
	assert.ErrorContains(t, err, "redis down")

	err = d.MarkSeen(ctx, "h")
	assert.ErrorContains(t, err, "redis down")
}
