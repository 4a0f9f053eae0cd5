package driving

import (
	"context"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

// Enricher runs the enrichment job.
type Enricher interface {
	// Run sweeps unprocessed records until none remain, the run halts,
	// or ctx is cancelled. Returns nil when completed or stopped and
	// domain.ErrHalted when restarts are exhausted.
	Run(ctx context.Context) error

	// Status returns the persisted state of the job.
	// Returns nil and no error if the job has never run.
	Status(ctx context.Context) (*domain.ProcessState, error)

	// Counts returns live aggregate counts from the record store.
	Counts(ctx context.Context) (domain.EnrichmentCounts, error)
}
