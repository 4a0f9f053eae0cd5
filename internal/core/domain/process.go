package domain

import "time"

// JobEnrich is the process state key of the enrichment job.
const JobEnrich = "enrich"

// RunNote is the lifecycle state of an enrichment run.
type RunNote string

// Run states. Completed, halted and stopped are terminal.
const (
	NoteStarting   RunNote = "starting"
	NoteRunning    RunNote = "running"
	NoteStalled    RunNote = "stalled"
	NoteRestarting RunNote = "restarting"
	NoteHalted     RunNote = "halted"
	NoteCompleted  RunNote = "completed"
	NoteStopped    RunNote = "stopped"
)

// AllRunNotes returns every run state in lifecycle order.
func AllRunNotes() []RunNote {
	return []RunNote{
		NoteStarting, NoteRunning, NoteStalled, NoteRestarting,
		NoteHalted, NoteCompleted, NoteStopped,
	}
}

// IsValid returns true if the note is recognised.
func (n RunNote) IsValid() bool {
	for _, v := range AllRunNotes() {
		if v == n {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions follow this state.
func (n RunNote) IsTerminal() bool {
	return n == NoteHalted || n == NoteCompleted || n == NoteStopped
}

// String returns the string representation.
func (n RunNote) String() string {
	return string(n)
}

// ProcessState is the persisted status of a job.
// There is one row per job, upserted on every heartbeat and on
// terminal transitions.
type ProcessState struct {
	// ID is the job key, e.g. JobEnrich.
	ID string `json:"id"`

	// LastHeartbeat is when the heartbeat last wrote this row.
	LastHeartbeat time.Time `json:"last_heartbeat"`

	// Processed is the number of records with metadata written.
	Processed int `json:"processed"`

	// Total is the number of records in the store.
	Total int `json:"total"`

	// WithSection is the number of processed records that have a section.
	WithSection int `json:"with_section"`

	// WithClause is the number of processed records that have a clause.
	WithClause int `json:"with_clause"`

	// Note is the current run state.
	Note RunNote `json:"note"`

	// RestartCount is the number of automatic restarts this run.
	// Never exceeds the configured maximum.
	RestartCount int `json:"restart_count"`
}

// Apply copies aggregate counts into the state.
func (s *ProcessState) Apply(c EnrichmentCounts) {
	s.Processed = c.Processed
	s.Total = c.Total
	s.WithSection = c.WithSection
	s.WithClause = c.WithClause
}

// Remaining returns the number of records still to be processed.
func (s *ProcessState) Remaining() int {
	if s.Total < s.Processed {
		return 0
	}
	return s.Total - s.Processed
}

// EnrichmentCounts are the aggregate counts derived from the record store.
type EnrichmentCounts struct {
	Total       int `json:"total"`
	Processed   int `json:"processed"`
	WithSection int `json:"with_section"`
	WithClause  int `json:"with_clause"`
}
