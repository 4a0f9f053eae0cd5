package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "stryda.db"

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.stryda/data/stryda.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".stryda", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// WAL lets the heartbeat read counts while the worker writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// ProcessStateStore returns a ProcessStateStore interface backed by this store.
func (s *Store) ProcessStateStore() driven.ProcessStateStore {
	return &processStateStore{store: s}
}

// SeenStore returns a SeenStore interface backed by this store.
func (s *Store) SeenStore() driven.SeenStore {
	return &seenStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// InsertRecord stores a new record. A content hash conflict is reported as
// not inserted; an id stored with different content is an ErrIDConflict.
func (s *recordStore) InsertRecord(ctx context.Context, record *domain.Record) (bool, error) {
	if record == nil || record.ID == "" {
		return false, domain.ErrInvalidInput
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO records (id, source, page, content, content_hash, section, clause, snippet, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, record.ID, record.Source, record.Page, record.Content, nullString(record.ContentHash),
		nullPtr(record.Section), nullPtr(record.Clause), nullPtr(record.Snippet), createdAt.UTC())
	if err != nil {
		return false, fmt.Errorf("inserting record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting record: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	return false, s.checkIDConflict(ctx, record)
}

// checkIDConflict reports whether a skipped insert collided on id with
// different content rather than on the content hash.
func (s *recordStore) checkIDConflict(ctx context.Context, record *domain.Record) error {
	var hash sql.NullString
	err := s.store.db.QueryRowContext(ctx, "SELECT content_hash FROM records WHERE id = ?", record.ID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking record id: %w", err)
	}
	if hash.String != record.ContentHash {
		return fmt.Errorf("record %s: %w", record.ID, domain.ErrIDConflict)
	}
	return nil
}

// GetRecord retrieves a record by ID.
func (s *recordStore) GetRecord(ctx context.Context, id string) (*domain.Record, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source, page, content, content_hash, section, clause, snippet, created_at
		FROM records WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	return rec, nil
}

// NextUnprocessed returns up to limit records whose section is unset.
func (s *recordStore) NextUnprocessed(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit < 1 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source, page, content, content_hash, section, clause, snippet, created_at
		FROM records
		WHERE section IS NULL
		ORDER BY source, page, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unprocessed records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// UpdateMetadata writes metadata only while the record's section is NULL.
func (s *recordStore) UpdateMetadata(ctx context.Context, id string, meta domain.RecordMetadata) (bool, error) {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE records
		SET section = ?, clause = ?, snippet = ?, processed_at = ?
		WHERE id = ? AND section IS NULL
	`, meta.Section, meta.Clause, meta.Snippet, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("updating metadata: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating metadata: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	var exists int
	err = s.store.db.QueryRowContext(ctx, "SELECT 1 FROM records WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("checking record: %w", err)
	}
	return false, nil
}

// Counts returns aggregate enrichment counts in one query.
func (s *recordStore) Counts(ctx context.Context) (domain.EnrichmentCounts, error) {
	var c domain.EnrichmentCounts
	err := s.store.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(section),
			COALESCE(SUM(CASE WHEN section <> '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN section IS NOT NULL AND clause <> '' THEN 1 ELSE 0 END), 0)
		FROM records
	`).Scan(&c.Total, &c.Processed, &c.WithSection, &c.WithClause)
	if err != nil {
		return domain.EnrichmentCounts{}, fmt.Errorf("counting records: %w", err)
	}
	return c, nil
}

// ==================== Process State Store ====================

// processStateStore implements driven.ProcessStateStore.
type processStateStore struct {
	store *Store
}

var _ driven.ProcessStateStore = (*processStateStore)(nil)

// SaveState upserts the job's row.
func (s *processStateStore) SaveState(ctx context.Context, state *domain.ProcessState) error {
	if state == nil || state.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO process_state (id, last_heartbeat, processed, total, with_section, with_clause, note, restart_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_heartbeat = excluded.last_heartbeat,
			processed = excluded.processed,
			total = excluded.total,
			with_section = excluded.with_section,
			with_clause = excluded.with_clause,
			note = excluded.note,
			restart_count = excluded.restart_count
	`, state.ID, nullTime(state.LastHeartbeat), state.Processed, state.Total,
		state.WithSection, state.WithClause, string(state.Note), state.RestartCount)
	if err != nil {
		return fmt.Errorf("saving process state: %w", err)
	}
	return nil
}

// GetState retrieves the job's row, or nil if it has never run.
func (s *processStateStore) GetState(ctx context.Context, jobID string) (*domain.ProcessState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, last_heartbeat, processed, total, with_section, with_clause, note, restart_count
		FROM process_state WHERE id = ?
	`, jobID)

	var state domain.ProcessState
	var note string
	var heartbeat sql.NullTime
	if err := row.Scan(&state.ID, &heartbeat, &state.Processed, &state.Total,
		&state.WithSection, &state.WithClause, &note, &state.RestartCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning process state: %w", err)
	}
	state.Note = domain.RunNote(note)
	if heartbeat.Valid {
		state.LastHeartbeat = heartbeat.Time
	}
	return &state, nil
}

// ==================== Seen Store ====================

// seenStore implements driven.SeenStore.
type seenStore struct {
	store *Store
}

var _ driven.SeenStore = (*seenStore)(nil)

// Seen reports whether the hash has been marked.
func (s *seenStore) Seen(ctx context.Context, hash string) (bool, error) {
	var exists int
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM seen_hashes WHERE hash = ?", hash).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen hash: %w", err)
	}
	return true, nil
}

// MarkSeen records the hash. Marking twice is a no-op.
func (s *seenStore) MarkSeen(ctx context.Context, hash string) error {
	if hash == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO seen_hashes (hash, seen_at) VALUES (?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("marking seen hash: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var hash, section, clause, snippet sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&rec.ID, &rec.Source, &rec.Page, &rec.Content, &hash,
		&section, &clause, &snippet, &createdAt); err != nil {
		return nil, err
	}
	rec.ContentHash = hash.String
	rec.Section = ptrFromNull(section)
	rec.Clause = ptrFromNull(clause)
	rec.Snippet = ptrFromNull(snippet)
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptrFromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
