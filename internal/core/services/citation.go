package services

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// Ensure CitationRanker implements the interface.
var _ driving.CitationRanker = (*CitationRanker)(nil)

// Confidence boosts applied on top of the retrieval score.
const (
	boostTableFigure = 0.15
	boostClause      = 0.10
	boostSection     = 0.05
	maxOverlapBoost  = 0.10

	// minTermLen drops single-character query terms.
	minTermLen = 2

	snippetEllipsis = "..."
)

// nonAlphanumericRegex collapses everything but [a-z0-9] in anchors.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// CitationRanker converts retrieval hits into ranked citations.
// It is pure: the same hits and query always give the same citations.
type CitationRanker struct {
	extractor *MetadataExtractor
	authority driving.AuthorityResolver
}

// NewCitationRanker creates a ranker. A nil authority resolver uses the
// built-in authority table.
func NewCitationRanker(extractor *MetadataExtractor, authority driving.AuthorityResolver) *CitationRanker {
	if extractor == nil {
		extractor = NewMetadataExtractor()
	}
	if authority == nil {
		authority = NewAuthorityResolver(nil)
	}
	return &CitationRanker{
		extractor: extractor,
		authority: authority,
	}
}

// Rank scores each hit, orders by confidence descending (stable for
// ties), drops repeated (source, page, locator) keys and truncates.
// A maxCitations below 1 uses the default limit.
func (r *CitationRanker) Rank(hits []domain.SearchHit, query string, maxCitations int) []domain.Citation {
	if strings.TrimSpace(query) == "" || len(hits) == 0 {
		return []domain.Citation{}
	}
	terms := queryTerms(query)
	if maxCitations < 1 {
		maxCitations = domain.DefaultAppSettings().Citation.MaxCitations
	}

	citations := make([]domain.Citation, 0, len(hits))
	for _, hit := range hits {
		citations = append(citations, r.cite(hit, terms))
	}

	sort.SliceStable(citations, func(i, j int) bool {
		return citations[i].Confidence > citations[j].Confidence
	})

	seen := make(map[string]bool, len(citations))
	ranked := make([]domain.Citation, 0, maxCitations)
	for _, c := range citations {
		key := c.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		ranked = append(ranked, c)
		if len(ranked) == maxCitations {
			break
		}
	}

	logger.Debug("citations ranked", "hits", len(hits), "citations", len(ranked), "terms", len(terms))
	return ranked
}

// PreferAuthoritative returns citations reordered by authority weight,
// highest first, keeping the existing order within equal weights.
func (r *CitationRanker) PreferAuthoritative(citations []domain.Citation) []domain.Citation {
	out := append([]domain.Citation(nil), citations...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Authority > out[j].Authority
	})
	return out
}

func (r *CitationRanker) cite(hit domain.SearchHit, terms []string) domain.Citation {
	loc := r.extractor.Extract(hit.Content, hit.Source)

	c := domain.Citation{
		Source:       hit.Source,
		Page:         hit.Page,
		LocatorID:    loc.ID,
		LocatorTitle: loc.Title,
		LocatorType:  loc.Type,
		Snippet:      citationSnippet(hit, terms),
		Confidence:   clamp01(baseScore(hit.Score) + localityBoost(loc.Type) + overlapBoost(hit.Content, terms)),
		Authority:    r.authority.Weight(hit.Source),
	}
	if loc.ID != "" {
		c.Anchor = Anchor(hit.Source, hit.Page, loc.Type, loc.ID)
	}
	return c
}

// Anchor builds the deep-link fragment for a locator.
func Anchor(source string, page int, locatorType domain.LocatorType, locatorID string) string {
	raw := strings.Join([]string{source, "p" + strconv.Itoa(page), string(locatorType), locatorID}, "-")
	return strings.Trim(nonAlphanumericRegex.ReplaceAllString(strings.ToLower(raw), "-"), "-")
}

// ==================== Scoring ====================

func baseScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}

func localityBoost(t domain.LocatorType) float64 {
	switch t {
	case domain.LocatorTable, domain.LocatorFigure:
		return boostTableFigure
	case domain.LocatorClause:
		return boostClause
	case domain.LocatorSection:
		return boostSection
	default:
		return 0
	}
}

// overlapBoost scales with the fraction of query terms found in content.
func overlapBoost(content string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return maxOverlapBoost * float64(matched) / float64(len(terms))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// queryTerms lowercases the query and splits it on anything that is not a
// letter or digit. Duplicates and one-character terms are dropped.
func queryTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minTermLen || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// ==================== Snippets ====================

// citationSnippet prefers the hit's own snippet, then the sentence with
// the most query terms, then the start of the content.
func citationSnippet(hit domain.SearchHit, terms []string) string {
	text := strings.TrimSpace(hit.Snippet)
	if text == "" {
		text = bestSentence(hit.Content, terms)
	}
	return truncateWithEllipsis(NormalizeContent(text), domain.CitationSnippetMaxLen)
}

func bestSentence(content string, terms []string) string {
	best, bestHits := "", 0
	for _, sentence := range splitSentences(content) {
		lower := strings.ToLower(sentence)
		hits := 0
		for _, term := range terms {
			if strings.Contains(lower, term) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = sentence, hits
		}
	}
	if best == "" {
		return content
	}
	return best
}

// splitSentences splits content on sentence terminators and newlines.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func truncateWithEllipsis(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimRightFunc(string(runes[:maxLen-len(snippetEllipsis)]), unicode.IsSpace) + snippetEllipsis
}
