package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicate indicates the content has already been ingested.
	ErrDuplicate = errors.New("duplicate content")

	// ErrIDConflict indicates a record id is already stored with different content.
	// It wraps ErrInvalidInput so callers never retry it.
	ErrIDConflict = fmt.Errorf("%w: record id holds different content", ErrInvalidInput)

	// ErrHalted indicates an enrichment run exhausted its restarts.
	// The run requires operator intervention before it is resumed.
	ErrHalted = errors.New("enrichment halted")

	// ErrRunInProgress indicates the job is already running in this process.
	ErrRunInProgress = errors.New("run in progress")

	// ErrStoreUnavailable indicates the backing store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrAlertFailed indicates an alert could not be delivered.
	// Alert failures are logged and never escalated.
	ErrAlertFailed = errors.New("alert delivery failed")

	// ErrInvalidRule indicates a rule table entry could not be compiled.
	ErrInvalidRule = errors.New("invalid rule")
)
