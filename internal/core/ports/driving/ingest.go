package driving

import (
	"context"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

// Ingestor accepts records from upstream extraction.
type Ingestor interface {
	// Ingest deduplicates and stores records.
	// Invalid and duplicate records are counted, not returned as errors.
	Ingest(ctx context.Context, records []domain.Record) (domain.IngestResult, error)
}
