package driving

import "github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"

// CitationRanker turns retrieval hits into ranked citations.
type CitationRanker interface {
	// Rank scores, sorts, deduplicates and truncates hits.
	// Returns an empty slice for an empty query or no hits.
	Rank(hits []domain.SearchHit, query string, maxCitations int) []domain.Citation

	// PreferAuthoritative reorders citations by authority weight,
	// keeping confidence order within equal weights.
	PreferAuthoritative(citations []domain.Citation) []domain.Citation
}

// AuthorityResolver maps a source name to its precedence weight.
type AuthorityResolver interface {
	// Weight returns the highest matching rule weight, or the default.
	Weight(source string) int
}

// ContextGate detects queries that lack information needed to answer safely.
type ContextGate interface {
	// Evaluate returns nil when nothing is missing or the intent is not gated.
	Evaluate(query, intent string) *domain.MissingContext
}
