package driven

import (
	"context"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

// RecordStore persists ingested records and their enrichment metadata.
type RecordStore interface {
	// InsertRecord stores a new record.
	// Returns false and no error if a record with the same content hash exists,
	// or if the same id is stored with the same content hash.
	// Returns domain.ErrIDConflict if the id is stored with a different hash.
	InsertRecord(ctx context.Context, record *domain.Record) (bool, error)

	// GetRecord retrieves a record by ID.
	// Returns nil and no error if the record does not exist.
	GetRecord(ctx context.Context, id string) (*domain.Record, error)

	// NextUnprocessed returns up to limit records whose section is unset,
	// ordered by (source, page, id) ascending. Repeated calls with no
	// intervening writes return the same batch.
	NextUnprocessed(ctx context.Context, limit int) ([]domain.Record, error)

	// UpdateMetadata writes enrichment metadata for one record.
	// The write only applies if the record is still unprocessed; returns
	// false and no error otherwise.
	UpdateMetadata(ctx context.Context, id string, meta domain.RecordMetadata) (bool, error)

	// Counts returns aggregate enrichment counts.
	Counts(ctx context.Context) (domain.EnrichmentCounts, error)
}
