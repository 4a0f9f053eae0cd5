// Package filesystem reads records from JSON Lines files and watches a
// directory for new record files.
//
// Each line of a record file is one JSON object:
//
//	{"id": "optional", "source": "NZBC E2/AS1", "page": 12, "content": "..."}
//
// Malformed lines are reported with their line number and skipped.
package filesystem
