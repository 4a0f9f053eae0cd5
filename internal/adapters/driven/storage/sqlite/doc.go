// Package sqlite provides a SQLite-based implementation of the record,
// process state and seen-hash stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. All stores share one database connection:
//
//   - RecordStore: ingested records and their enrichment metadata
//   - ProcessStateStore: one progress row per background job
//   - SeenStore: content hashes admitted by ingestion
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Atomicity
//
// Metadata writes are a single conditional UPDATE guarded by "section IS NULL",
// and process state is a single-row UPSERT. Neither needs in-process locking.
//
// # Data Location
//
// By default, the database is stored at ~/.stryda/data/stryda.db
package sqlite
