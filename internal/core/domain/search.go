package domain

// SearchHit is a single retrieval result supplied by the search collaborator.
type SearchHit struct {
	// Source is the name of the document the hit came from.
	Source string `json:"source"`

	// Page is the page number within the source.
	Page int `json:"page"`

	// Content is the full chunk text.
	Content string `json:"content"`

	// Snippet is an optional pre-computed excerpt.
	Snippet string `json:"snippet,omitempty"`

	// Score is the retrieval score, nominally in [0,1].
	Score float64 `json:"score"`
}
