// Package postgres provides a PostgreSQL implementation of the record,
// process state and seen-hash stores using a pgx connection pool.
//
// It mirrors the SQLite adapter's schema and guarantees. The conditional
// "section IS NULL" UPDATE and the single-row UPSERT of process state are
// atomic at the database, so the executor and heartbeat can share a pool.
//
// Integration tests run only when STRYDA_TEST_POSTGRES_DSN is set.
package postgres
