package domain

import "strconv"

// CitationSnippetMaxLen is the maximum length of a citation snippet.
const CitationSnippetMaxLen = 180

// Citation is a ranked reference built from a search hit.
// Citations are constructed per query and never persisted.
type Citation struct {
	Source       string      `json:"source"`
	Page         int         `json:"page"`
	LocatorID    string      `json:"locator_id,omitempty"`
	LocatorTitle string      `json:"locator_title,omitempty"`
	LocatorType  LocatorType `json:"locator_type"`
	Snippet      string      `json:"snippet"`

	// Confidence is in [0,1].
	Confidence float64 `json:"confidence"`

	// Anchor is a stable deep-link fragment. Empty when LocatorID is empty.
	Anchor string `json:"anchor,omitempty"`

	// Authority is the precedence weight of the source.
	Authority int `json:"authority"`
}

// DedupKey returns the key two citations are considered equal under.
func (c Citation) DedupKey() string {
	id := c.LocatorID
	if id == "" {
		id = string(LocatorPage)
	}
	return c.Source + "\x00" + strconv.Itoa(c.Page) + "\x00" + id
}
