package domain

import "time"

// Record is an ingested text chunk from a source document.
// Records are created once at ingestion and only ever have their
// metadata filled in afterwards. They are never deleted.
type Record struct {
	// ID is the unique identifier for the record.
	ID string

	// Source is the name of the document the chunk came from.
	Source string

	// Page is the 1-based page number within the source.
	Page int

	// Content is the chunk text.
	Content string

	// ContentHash is the digest of the normalised content.
	ContentHash string

	// Section is the extracted section locator.
	// Nil means the record has not been processed yet. An empty
	// string means it was processed and nothing was found.
	Section *string

	// Clause is the extracted clause or standard code.
	Clause *string

	// Snippet is a short excerpt of the content, at most SnippetMaxLen runes.
	Snippet *string

	// CreatedAt is when the record was ingested.
	CreatedAt time.Time
}

// SnippetMaxLen is the maximum length of a stored record snippet.
const SnippetMaxLen = 200

// IsProcessed reports whether the enrichment pass has visited the record.
func (r *Record) IsProcessed() bool {
	return r.Section != nil
}

// Validate checks the fields required at ingestion time.
func (r *Record) Validate() error {
	if r.Source == "" || r.Content == "" || r.Page < 1 {
		return ErrInvalidInput
	}
	return nil
}

// RecordMetadata is what an enrichment pass writes back to a record.
// Empty strings are a valid terminal value.
type RecordMetadata struct {
	Section string
	Clause  string
	Snippet string
}

// IngestResult summarises an ingestion call.
type IngestResult struct {
	// Received is the number of records passed in.
	Received int `json:"received"`

	// Inserted is the number of new records written.
	Inserted int `json:"inserted"`

	// Duplicates is the number of records skipped as already seen.
	Duplicates int `json:"duplicates"`

	// Invalid is the number of records rejected by validation.
	Invalid int `json:"invalid"`
}

// Add accumulates another result into this one.
func (r *IngestResult) Add(other IngestResult) {
	r.Received += other.Received
	r.Inserted += other.Inserted
	r.Duplicates += other.Duplicates
	r.Invalid += other.Invalid
}
