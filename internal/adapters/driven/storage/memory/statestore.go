package memory

import (
	"context"
	"sync"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
)

// Ensure ProcessStateStore implements the interface.
var _ driven.ProcessStateStore = (*ProcessStateStore)(nil)

// ProcessStateStore is an in-memory implementation of driven.ProcessStateStore.
type ProcessStateStore struct {
	mu     sync.RWMutex
	states map[string]domain.ProcessState
}

// NewProcessStateStore creates a new in-memory process state store.
func NewProcessStateStore() *ProcessStateStore {
	return &ProcessStateStore{
		states: make(map[string]domain.ProcessState),
	}
}

// SaveState upserts the state row keyed by its ID.
func (s *ProcessStateStore) SaveState(_ context.Context, state *domain.ProcessState) error {
	if state == nil || state.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ID] = *state
	return nil
}

// GetState retrieves the state for a job, or nil if it has never run.
func (s *ProcessStateStore) GetState(_ context.Context, jobID string) (*domain.ProcessState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[jobID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}
