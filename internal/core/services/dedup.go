package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
)

// NormalizeContent collapses whitespace runs and trims the ends.
// Two chunks that differ only in layout normalise to the same text.
func NormalizeContent(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

// HashContent returns the hex SHA-256 of the normalised full content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(NormalizeContent(content)))
	return hex.EncodeToString(sum[:])
}

// Deduplicator rejects content that has already been ingested.
// Its lifecycle follows the SeenStore it wraps: an in-memory store scopes
// it to one run, a persistent store makes it durable across runs.
type Deduplicator struct {
	store driven.SeenStore
}

// NewDeduplicator creates a deduplicator backed by store.
func NewDeduplicator(store driven.SeenStore) *Deduplicator {
	return &Deduplicator{store: store}
}

// Seen reports whether the hash has been marked.
func (d *Deduplicator) Seen(ctx context.Context, hash string) (bool, error) {
	seen, err := d.store.Seen(ctx, hash)
	if err != nil {
		return false, fmt.Errorf("seen lookup: %w", err)
	}
	return seen, nil
}

// MarkSeen records the hash.
func (d *Deduplicator) MarkSeen(ctx context.Context, hash string) error {
	if err := d.store.MarkSeen(ctx, hash); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// Check hashes content and reports whether it has been seen.
func (d *Deduplicator) Check(ctx context.Context, content string) (string, bool, error) {
	hash := HashContent(content)
	seen, err := d.Seen(ctx, hash)
	return hash, seen, err
}
