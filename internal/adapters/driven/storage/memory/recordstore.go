package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.Record
	hashes  map[string]string // content hash -> record ID
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]domain.Record),
		hashes:  make(map[string]string),
	}
}

// InsertRecord stores a new record unless its id or content hash is already present.
// A known id with different content is an ErrIDConflict.
func (s *RecordStore) InsertRecord(_ context.Context, record *domain.Record) (bool, error) {
	if record == nil || record.ID == "" {
		return false, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[record.ID]; ok {
		if existing.ContentHash != record.ContentHash {
			return false, domain.ErrIDConflict
		}
		return false, nil
	}
	if record.ContentHash != "" {
		if _, ok := s.hashes[record.ContentHash]; ok {
			return false, nil
		}
		s.hashes[record.ContentHash] = record.ID
	}
	s.records[record.ID] = copyRecord(*record)
	return true, nil
}

// GetRecord retrieves a record by ID.
func (s *RecordStore) GetRecord(_ context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	r = copyRecord(r)
	return &r, nil
}

// NextUnprocessed returns up to limit unprocessed records ordered by (source, page, id).
func (s *RecordStore) NextUnprocessed(_ context.Context, limit int) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []domain.Record
	for _, r := range s.records {
		if !r.IsProcessed() {
			pending = append(pending, copyRecord(r))
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		return a.ID < b.ID
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

// UpdateMetadata writes metadata if the record is still unprocessed.
func (s *RecordStore) UpdateMetadata(_ context.Context, id string, meta domain.RecordMetadata) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.IsProcessed() {
		return false, nil
	}
	section, clause, snippet := meta.Section, meta.Clause, meta.Snippet
	r.Section = &section
	r.Clause = &clause
	r.Snippet = &snippet
	s.records[id] = r
	return true, nil
}

// Counts returns aggregate enrichment counts.
func (s *RecordStore) Counts(_ context.Context) (domain.EnrichmentCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c domain.EnrichmentCounts
	for _, r := range s.records {
		c.Total++
		if !r.IsProcessed() {
			continue
		}
		c.Processed++
		if *r.Section != "" {
			c.WithSection++
		}
		if r.Clause != nil && *r.Clause != "" {
			c.WithClause++
		}
	}
	return c, nil
}

func copyRecord(r domain.Record) domain.Record {
	r.Section = copyString(r.Section)
	r.Clause = copyString(r.Clause)
	r.Snippet = copyString(r.Snippet)
	return r
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
