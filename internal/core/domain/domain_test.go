package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Record Tests ====================

func TestRecord_IsProcessed(t *testing.T) {
	r := Record{ID: "r1"}
	assert.False(t, r.IsProcessed())

	empty := ""
	r.Section = &empty
	assert.True(t, r.IsProcessed(), "empty section is a terminal marker")
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{"valid", Record{Source: "E2/AS1", Page: 1, Content: "x"}, false},
		{"missing source", Record{Page: 1, Content: "x"}, true},
		{"missing content", Record{Source: "s", Page: 1}, true},
		{"page zero", Record{Source: "s", Page: 0, Content: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIngestResult_Add(t *testing.T) {
	total := IngestResult{Received: 1, Inserted: 1}
	total.Add(IngestResult{Received: 3, Inserted: 1, Duplicates: 1, Invalid: 1})
	assert.Equal(t, IngestResult{Received: 4, Inserted: 2, Duplicates: 1, Invalid: 1}, total)
}

// ==================== Locator Tests ====================

func TestLocatorType_IsValid(t *testing.T) {
	for _, lt := range []LocatorType{LocatorClause, LocatorTable, LocatorFigure, LocatorSection, LocatorPage} {
		assert.True(t, lt.IsValid(), lt.String())
	}
	assert.False(t, LocatorType("paragraph").IsValid())
}

func TestPageLocator(t *testing.T) {
	r := PageLocator()
	assert.Equal(t, LocatorPage, r.Type)
	assert.False(t, r.HasID())
	assert.Empty(t, r.Title)
}

// ==================== Process State Tests ====================

func TestRunNote_IsTerminal(t *testing.T) {
	tests := []struct {
		note     RunNote
		terminal bool
	}{
		{NoteStarting, false},
		{NoteRunning, false},
		{NoteStalled, false},
		{NoteRestarting, false},
		{NoteHalted, true},
		{NoteCompleted, true},
		{NoteStopped, true},
	}
	for _, tt := range tests {
		t.Run(tt.note.String(), func(t *testing.T) {
			assert.True(t, tt.note.IsValid())
			assert.Equal(t, tt.terminal, tt.note.IsTerminal())
		})
	}
	assert.False(t, RunNote("paused").IsValid())
	assert.Len(t, AllRunNotes(), len(tests))
}

func TestProcessState_Apply(t *testing.T) {
	s := ProcessState{ID: JobEnrich, RestartCount: 2}
	s.Apply(EnrichmentCounts{Total: 10, Processed: 4, WithSection: 3, WithClause: 1})

	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 4, s.Processed)
	assert.Equal(t, 3, s.WithSection)
	assert.Equal(t, 1, s.WithClause)
	assert.Equal(t, 2, s.RestartCount)
	assert.Equal(t, 6, s.Remaining())
}

func TestNewAlert(t *testing.T) {
	state := ProcessState{ID: JobEnrich, Processed: 5, Total: 9, RestartCount: 1}
	before := time.Now().UTC()
	a := NewAlert(AlertStalled, "no progress", state)

	assert.Equal(t, AlertStalled, a.Event)
	assert.Equal(t, "no progress", a.Message)
	assert.Equal(t, 5, a.Processed)
	assert.Equal(t, 9, a.Total)
	assert.Equal(t, JobEnrich, a.Job)
	assert.Equal(t, 1, a.RestartCount)
	assert.False(t, a.Timestamp.Before(before))
}

// ==================== Citation Tests ====================

func TestCitation_DedupKey(t *testing.T) {
	a := Citation{Source: "E2/AS1", Page: 12, LocatorID: "9.1"}
	b := Citation{Source: "E2/AS1", Page: 12, LocatorID: "9.1", Confidence: 0.2}
	c := Citation{Source: "E2/AS1", Page: 12}
	d := Citation{Source: "E2/AS1", Page: 13}

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
	assert.NotEqual(t, c.DedupKey(), d.DedupKey())
}

// ==================== Gate Config Tests ====================

func TestDefaultGateConfig(t *testing.T) {
	cfg := DefaultGateConfig()

	assert.True(t, cfg.IsGated("compliance"))
	assert.False(t, cfg.IsGated("general"))

	h1 := cfg.Requirement("h1_insulation")
	require.NotNil(t, h1)
	require.NotEmpty(t, h1.Fields)
	assert.Equal(t, "climate_zone", h1.Fields[0].Key)
	assert.NotEmpty(t, h1.Fields[0].Prompt)

	assert.Nil(t, cfg.Requirement("unknown"))
}

func TestDefaultAuthorityRules(t *testing.T) {
	rules := DefaultAuthorityRules()
	require.NotEmpty(t, rules)
	for _, r := range rules {
		assert.NotEmpty(t, r.Pattern)
		assert.Greater(t, r.Weight, DefaultAuthorityWeight)
	}
}
