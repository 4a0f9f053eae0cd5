package services

import (
	"context"
	"fmt"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
)

// EnrichmentCursor selects unprocessed records in a stable order and
// marks them processed one at a time.
//
// Selection is not safe for concurrent workers: two workers calling
// NextBatch before either commits receive the same batch.
type EnrichmentCursor struct {
	store     driven.RecordStore
	batchSize int
	retry     RetryPolicy
}

// NewEnrichmentCursor creates a cursor over store.
func NewEnrichmentCursor(store driven.RecordStore, batchSize int) *EnrichmentCursor {
	if batchSize < 1 {
		batchSize = domain.DefaultAppSettings().Enrichment.BatchSize
	}
	return &EnrichmentCursor{
		store:     store,
		batchSize: batchSize,
		retry:     DefaultRetryPolicy(),
	}
}

// SetRetryPolicy replaces the transient-error retry policy.
func (c *EnrichmentCursor) SetRetryPolicy(p RetryPolicy) {
	c.retry = p
}

// BatchSize returns the default batch size.
func (c *EnrichmentCursor) BatchSize() int {
	return c.batchSize
}

// NextBatch returns up to limit unprocessed records ordered by
// (source, page, id). A limit below 1 uses the cursor's batch size.
// Without intervening commits, repeated calls return the same batch.
func (c *EnrichmentCursor) NextBatch(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit < 1 {
		limit = c.batchSize
	}
	var batch []domain.Record
	err := retry(ctx, c.retry, "next_batch", func() error {
		var err error
		batch, err = c.store.NextUnprocessed(ctx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("select batch: %w", err)
	}
	return batch, nil
}

// Commit writes metadata for one record as an independent write.
// Empty metadata is still written so the record is not selected again.
// Returns false if the record had already been processed.
func (c *EnrichmentCursor) Commit(ctx context.Context, record domain.Record, meta domain.RecordMetadata) (bool, error) {
	var updated bool
	err := retry(ctx, c.retry, "commit", func() error {
		var err error
		updated, err = c.store.UpdateMetadata(ctx, record.ID, meta)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("commit record %s: %w", record.ID, err)
	}
	return updated, nil
}
