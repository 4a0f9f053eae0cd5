package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

//go:embed schema.sql
var schema string

// connectTimeout bounds the initial ping.
const connectTimeout = 5 * time.Second

// Store is a PostgreSQL-backed storage that provides access to all store
// interfaces through wrapper types.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at dsn and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: database url is required", domain.ErrInvalidInput)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres ping: %v", domain.ErrStoreUnavailable, err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger.Debug("postgres store ready", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{pool: s.pool}
}

// ProcessStateStore returns a ProcessStateStore interface backed by this store.
func (s *Store) ProcessStateStore() driven.ProcessStateStore {
	return &processStateStore{pool: s.pool}
}

// SeenStore returns a SeenStore interface backed by this store.
func (s *Store) SeenStore() driven.SeenStore {
	return &seenStore{pool: s.pool}
}

// ==================== Record Store ====================

type recordStore struct {
	pool *pgxpool.Pool
}

var _ driven.RecordStore = (*recordStore)(nil)

const recordColumns = "id, source, page, content, content_hash, section, clause, snippet, created_at"

func (s *recordStore) InsertRecord(ctx context.Context, record *domain.Record) (bool, error) {
	if record == nil || record.ID == "" {
		return false, domain.ErrInvalidInput
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT DO NOTHING
	`, record.ID, record.Source, record.Page, record.Content, nilIfEmpty(record.ContentHash),
		record.Section, record.Clause, record.Snippet, createdAt.UTC())
	if err != nil {
		return false, classify("inserting record", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var hash *string
	err = s.pool.QueryRow(ctx, "SELECT content_hash FROM records WHERE id = $1", record.ID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("checking record id", err)
	}
	if hash == nil || *hash != record.ContentHash {
		return false, fmt.Errorf("record %s: %w", record.ID, domain.ErrIDConflict)
	}
	return false, nil
}

func (s *recordStore) GetRecord(ctx context.Context, id string) (*domain.Record, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+recordColumns+" FROM records WHERE id = $1", id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("scanning record", err)
	}
	return rec, nil
}

func (s *recordStore) NextUnprocessed(ctx context.Context, limit int) ([]domain.Record, error) {
	var limitArg any // NULL means no limit
	if limit > 0 {
		limitArg = limit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE section IS NULL
		ORDER BY source, page, id
		LIMIT $1
	`, limitArg)
	if err != nil {
		return nil, classify("querying unprocessed records", err)
	}
	defer rows.Close()

	var records []domain.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, classify("scanning record", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating records", err)
	}
	return records, nil
}

func (s *recordStore) UpdateMetadata(ctx context.Context, id string, meta domain.RecordMetadata) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE records
		SET section = $1, clause = $2, snippet = $3, processed_at = now()
		WHERE id = $4 AND section IS NULL
	`, meta.Section, meta.Clause, meta.Snippet, id)
	if err != nil {
		return false, classify("updating metadata", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM records WHERE id = $1)", id).Scan(&exists); err != nil {
		return false, classify("checking record", err)
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

func (s *recordStore) Counts(ctx context.Context) (domain.EnrichmentCounts, error) {
	var c domain.EnrichmentCounts
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(section),
			COUNT(*) FILTER (WHERE section <> ''),
			COUNT(*) FILTER (WHERE section IS NOT NULL AND clause <> '')
		FROM records
	`).Scan(&c.Total, &c.Processed, &c.WithSection, &c.WithClause)
	if err != nil {
		return domain.EnrichmentCounts{}, classify("counting records", err)
	}
	return c, nil
}

// ==================== Process State Store ====================

type processStateStore struct {
	pool *pgxpool.Pool
}

var _ driven.ProcessStateStore = (*processStateStore)(nil)

func (s *processStateStore) SaveState(ctx context.Context, state *domain.ProcessState) error {
	if state == nil || state.ID == "" {
		return domain.ErrInvalidInput
	}
	var heartbeat *time.Time
	if !state.LastHeartbeat.IsZero() {
		t := state.LastHeartbeat.UTC()
		heartbeat = &t
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO process_state (id, last_heartbeat, processed, total, with_section, with_clause, note, restart_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			last_heartbeat = EXCLUDED.last_heartbeat,
			processed = EXCLUDED.processed,
			total = EXCLUDED.total,
			with_section = EXCLUDED.with_section,
			with_clause = EXCLUDED.with_clause,
			note = EXCLUDED.note,
			restart_count = EXCLUDED.restart_count
	`, state.ID, heartbeat, state.Processed, state.Total,
		state.WithSection, state.WithClause, string(state.Note), state.RestartCount)
	if err != nil {
		return classify("saving process state", err)
	}
	return nil
}

func (s *processStateStore) GetState(ctx context.Context, jobID string) (*domain.ProcessState, error) {
	var state domain.ProcessState
	var note string
	var heartbeat *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT id, last_heartbeat, processed, total, with_section, with_clause, note, restart_count
		FROM process_state WHERE id = $1
	`, jobID).Scan(&state.ID, &heartbeat, &state.Processed, &state.Total,
		&state.WithSection, &state.WithClause, &note, &state.RestartCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("scanning process state", err)
	}
	state.Note = domain.RunNote(note)
	if heartbeat != nil {
		state.LastHeartbeat = *heartbeat
	}
	return &state, nil
}

// ==================== Seen Store ====================

type seenStore struct {
	pool *pgxpool.Pool
}

var _ driven.SeenStore = (*seenStore)(nil)

func (s *seenStore) Seen(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM seen_hashes WHERE hash = $1)", hash).Scan(&exists)
	if err != nil {
		return false, classify("checking seen hash", err)
	}
	return exists, nil
}

func (s *seenStore) MarkSeen(ctx context.Context, hash string) error {
	if hash == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, "INSERT INTO seen_hashes (hash) VALUES ($1) ON CONFLICT (hash) DO NOTHING", hash)
	if err != nil {
		return classify("marking seen hash", err)
	}
	return nil
}

// ==================== Helpers ====================

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var rec domain.Record
	var hash *string
	if err := row.Scan(&rec.ID, &rec.Source, &rec.Page, &rec.Content, &hash,
		&rec.Section, &rec.Clause, &rec.Snippet, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if hash != nil {
		rec.ContentHash = *hash
	}
	return &rec, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// classify wraps err, marking server-side data errors as invalid input so
// callers do not retry them.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code[:2] {
		case "22", "23": // data exception, integrity constraint violation
			return fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidInput, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
