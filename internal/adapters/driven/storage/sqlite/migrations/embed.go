// Package migrations holds the SQLite schema for records, run state and seen hashes.
package migrations

import "embed"

// FS holds the NNN_name.up.sql and NNN_name.down.sql scripts, applied in version order.
//
//go:embed *.sql
var FS embed.FS
