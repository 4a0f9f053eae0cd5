package driven

import (
	"context"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

// ProcessStateStore persists one status row per job for crash recovery
// and external monitoring.
type ProcessStateStore interface {
	// GetState retrieves the state for a job.
	// Returns nil and no error if the job has never run.
	GetState(ctx context.Context, jobID string) (*domain.ProcessState, error)

	// SaveState upserts the state row keyed by its ID.
	SaveState(ctx context.Context, state *domain.ProcessState) error
}
