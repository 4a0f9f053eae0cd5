package memory

import (
	"context"
	"sync"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
)

// Ensure SeenStore implements the interface.
var _ driven.SeenStore = (*SeenStore)(nil)

// SeenStore is an in-memory driven.SeenStore. Its lifetime is the lifetime
// of the value, so it scopes deduplication to one run.
type SeenStore struct {
	mu     sync.RWMutex
	hashes map[string]struct{}
}

// NewSeenStore creates a new in-memory seen store.
func NewSeenStore() *SeenStore {
	return &SeenStore{
		hashes: make(map[string]struct{}),
	}
}

// Seen reports whether the hash has been marked.
func (s *SeenStore) Seen(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[hash]
	return ok, nil
}

// MarkSeen records the hash.
func (s *SeenStore) MarkSeen(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[hash] = struct{}{}
	return nil
}

// Len returns the number of marked hashes.
func (s *SeenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hashes)
}
