package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService admits records from upstream extraction into the store.
// Content already seen by the deduplicator is skipped before any write.
type IngestService struct {
	records driven.RecordStore
	dedup   *Deduplicator
	retry   RetryPolicy
	now     func() time.Time
}

// NewIngestService creates an ingest service.
func NewIngestService(records driven.RecordStore, seen driven.SeenStore) *IngestService {
	return &IngestService{
		records: records,
		dedup:   NewDeduplicator(seen),
		retry:   DefaultRetryPolicy(),
		now:     time.Now,
	}
}

// SetRetryPolicy overrides the retry policy for store calls.
func (s *IngestService) SetRetryPolicy(p RetryPolicy) {
	s.retry = p
}

// Ingest validates, deduplicates and stores records in order.
// Store failures abort the call; the result counts what was done so far.
func (s *IngestService) Ingest(ctx context.Context, records []domain.Record) (domain.IngestResult, error) {
	var result domain.IngestResult

	for i := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Received++

		rec := records[i]
		if err := rec.Validate(); err != nil {
			result.Invalid++
			logger.Debug("invalid record skipped", "source", rec.Source, "page", rec.Page, "error", err)
			continue
		}

		inserted, err := s.admit(ctx, &rec)
		if errors.Is(err, domain.ErrIDConflict) {
			result.Invalid++
			logger.Warn("record id reused with different content", "id", rec.ID, "source", rec.Source, "page", rec.Page)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("ingest %s p%d: %w", rec.Source, rec.Page, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Duplicates++
		}
	}

	logger.Info("ingest complete",
		"received", result.Received,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"invalid", result.Invalid)
	return result, nil
}

// admit stores one valid record unless its content has been seen.
func (s *IngestService) admit(ctx context.Context, rec *domain.Record) (bool, error) {
	var (
		hash string
		seen bool
	)
	err := retry(ctx, s.retry, "seen", func() error {
		var err error
		hash, seen, err = s.dedup.Check(ctx, rec.Content)
		return err
	})
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.ContentHash = hash
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	var inserted bool
	err = retry(ctx, s.retry, "insert", func() error {
		var err error
		inserted, err = s.records.InsertRecord(ctx, rec)
		return err
	})
	if err != nil {
		return false, err
	}

	// Reached only on insert or a content hash conflict. Mark in both
	// cases so later runs short-circuit before touching the store.
	if err := retry(ctx, s.retry, "mark_seen", func() error {
		return s.dedup.MarkSeen(ctx, hash)
	}); err != nil {
		return inserted, err
	}
	return inserted, nil
}
