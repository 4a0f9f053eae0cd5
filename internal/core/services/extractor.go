package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

const (
	// maxHeaderLines is how far into a chunk heading rules look.
	maxHeaderLines = 20

	// minLineLen skips blank and stray short lines when scanning for headings.
	minLineLen = 3

	titleMaxLen   = 80
	captionMaxLen = 60
)

var (
	numberedHeaderRegex  = regexp.MustCompile(`^(\d+(?:\.\d+){1,3})\s+(.+)$`)
	standardHeadingRegex = regexp.MustCompile(`(?i)^(objectives?|functional requirements?|performance|acceptable solutions?|verification methods?):?$`)
	tableFigureRegex     = regexp.MustCompile(`(Table|Figure)\s+(\d+(?:\.\d+)*)(?:\s*[:\-—–]\s*|\s+)(\S.{0,79})`)
	whitespaceRegex      = regexp.MustCompile(`\s+`)
)

// captionTrimChars are stripped from the front of table and figure captions.
const captionTrimChars = " \t:-—–.,;"

// clauseCodeRegexes match building-code clauses, standards and grade codes.
var clauseCodeRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-H]\d+(?:/[A-Z]{2,4}\d*)?\b`),
	regexp.MustCompile(`\b(?:AS/)?NZS\s+\d+(?:\.\d+)?(?::\d{4})?\b`),
	regexp.MustCompile(`\b[GH]\d{2,3}\b`),
	regexp.MustCompile(`\bZ\d{2,3}\b`),
}

// headingStoplist holds boilerplate words that disqualify an ALL-CAPS line
// from being a section heading.
var headingStoplist = map[string]bool{
	"PAGE":       true,
	"PAGES":      true,
	"CHAPTER":    true,
	"PART":       true,
	"SECTION":    true,
	"VERSION":    true,
	"MINISTRY":   true,
	"CONTENTS":   true,
	"TABLE":      true,
	"FIGURE":     true,
	"AMENDMENT":  true,
	"COPYRIGHT":  true,
	"ISBN":       true,
	"DRAFT":      true,
	"EFFECTIVE":  true,
	"PUBLISHED":  true,
	"CONTINUED":  true,
	"APPENDIX":   true,
	"REFERENCES": true,
	"INDEX":      true,
}

// extractionRule is one step of the locator cascade.
// Rules are evaluated in order and the first match wins.
type extractionRule struct {
	name        string
	locatorType domain.LocatorType
	extract     func(content string, lines []string) (domain.ExtractionResult, bool)
}

// MetadataExtractor classifies chunk text with section, clause and
// table/figure locators using an ordered set of pattern rules.
// It is deterministic and has no side effects.
type MetadataExtractor struct {
	rules []extractionRule
}

// NewMetadataExtractor creates an extractor with the standard rule cascade.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{
		rules: []extractionRule{
			{name: "numbered_header", locatorType: domain.LocatorSection, extract: extractNumberedHeader},
			{name: "caps_heading", locatorType: domain.LocatorSection, extract: extractCapsHeading},
			{name: "standard_heading", locatorType: domain.LocatorSection, extract: extractStandardHeading},
			{name: "table_figure", extract: extractTableFigure},
			{name: "clause_code", locatorType: domain.LocatorClause, extract: extractClauseCode},
		},
	}
}

// Extract returns the locator for content. It never fails: empty content,
// content matching no rule, and internal errors all yield the page locator.
func (e *MetadataExtractor) Extract(content, source string) (result domain.ExtractionResult) {
	if strings.TrimSpace(content) == "" {
		return domain.PageLocator()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Debug("extraction failed, using page locator", "source", source, "panic", r)
			result = domain.PageLocator()
		}
	}()

	lines := headerLines(content)
	for _, rule := range e.rules {
		res, ok := rule.extract(content, lines)
		if !ok {
			continue
		}
		if rule.locatorType != "" {
			res.Type = rule.locatorType
		}
		logger.Debug("locator extracted", "source", source, "rule", rule.name, "type", res.Type, "id", res.ID)
		return res
	}
	return domain.PageLocator()
}

// Enrich derives the metadata written back to a record.
// Section comes from the heading rules and clause from the clause rule,
// independently of which rule wins Extract. Missing values are empty strings.
func (e *MetadataExtractor) Enrich(content, source string) (meta domain.RecordMetadata) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("enrichment failed, marking without metadata", "source", source, "panic", r)
			meta = domain.RecordMetadata{}
		}
	}()

	if strings.TrimSpace(content) == "" {
		return domain.RecordMetadata{}
	}

	lines := headerLines(content)
	for _, fn := range []func(string, []string) (domain.ExtractionResult, bool){
		extractNumberedHeader, extractCapsHeading, extractStandardHeading,
	} {
		if res, ok := fn(content, lines); ok {
			meta.Section = res.Title
			break
		}
	}
	if res, ok := extractClauseCode(content, lines); ok {
		meta.Clause = res.ID
	}
	meta.Snippet = Snippet(content, domain.SnippetMaxLen)
	return meta
}

// Snippet returns the whitespace-normalised content truncated to maxLen runes.
func Snippet(content string, maxLen int) string {
	return truncateRunes(NormalizeContent(content), maxLen)
}

// headerLines returns the trimmed lines heading rules consider.
func headerLines(content string) []string {
	raw := strings.Split(content, "\n")
	if len(raw) > maxHeaderLines {
		raw = raw[:maxHeaderLines]
	}
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if utf8.RuneCountInString(l) < minLineLen {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// ==================== Rules ====================

func extractNumberedHeader(_ string, lines []string) (domain.ExtractionResult, bool) {
	for _, line := range lines {
		m := numberedHeaderRegex.FindStringSubmatch(line)
		if m == nil || !strings.ContainsFunc(m[2], unicode.IsLetter) {
			continue
		}
		return domain.ExtractionResult{
			ID:    m[1],
			Title: truncateRunes(line, titleMaxLen),
		}, true
	}
	return domain.ExtractionResult{}, false
}

func extractCapsHeading(_ string, lines []string) (domain.ExtractionResult, bool) {
	for _, line := range lines {
		if isCapsHeading(line) {
			return domain.ExtractionResult{Title: truncateRunes(line, titleMaxLen)}, true
		}
	}
	return domain.ExtractionResult{}, false
}

func extractStandardHeading(_ string, lines []string) (domain.ExtractionResult, bool) {
	for _, line := range lines {
		if standardHeadingRegex.MatchString(line) {
			return domain.ExtractionResult{Title: strings.TrimSuffix(line, ":")}, true
		}
	}
	return domain.ExtractionResult{}, false
}

func extractTableFigure(content string, _ []string) (domain.ExtractionResult, bool) {
	m := tableFigureRegex.FindStringSubmatch(content)
	if m == nil {
		return domain.ExtractionResult{}, false
	}
	locatorType := domain.LocatorTable
	if m[1] == "Figure" {
		locatorType = domain.LocatorFigure
	}
	title := strings.TrimSpace(strings.TrimLeft(m[3], captionTrimChars))
	if title == "" {
		return domain.ExtractionResult{}, false
	}
	return domain.ExtractionResult{
		Type:  locatorType,
		ID:    m[2],
		Title: truncateRunes(title, captionMaxLen),
	}, true
}

func extractClauseCode(content string, _ []string) (domain.ExtractionResult, bool) {
	best, bestPos := "", -1
	for _, re := range clauseCodeRegexes {
		for _, loc := range re.FindAllStringIndex(content, -1) {
			code := whitespaceRegex.ReplaceAllString(content[loc[0]:loc[1]], " ")
			if bestPos < 0 || moreSpecificClause(code, loc[0], best, bestPos) {
				best, bestPos = code, loc[0]
			}
		}
	}
	if bestPos < 0 {
		return domain.ExtractionResult{}, false
	}
	return domain.ExtractionResult{ID: best}, true
}

// moreSpecificClause reports whether candidate a beats b: longer wins,
// then a "/" qualifier, then a ":" year, then the earlier position.
func moreSpecificClause(a string, aPos int, b string, bPos int) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	if as, bs := strings.Contains(a, "/"), strings.Contains(b, "/"); as != bs {
		return as
	}
	if ac, bc := strings.Contains(a, ":"), strings.Contains(b, ":"); ac != bc {
		return ac
	}
	return aPos < bPos
}

// ==================== Helper Functions ====================

// isCapsHeading reports whether line is an ALL-CAPS heading of at least
// two alphabetic words with no boilerplate word.
func isCapsHeading(line string) bool {
	if utf8.RuneCountInString(line) > titleMaxLen {
		return false
	}
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
	}
	alphaWords := 0
	for _, w := range strings.Fields(line) {
		word := strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if headingStoplist[word] {
			return false
		}
		letters := 0
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters >= 2 {
			alphaWords++
		}
	}
	return alphaWords >= 2
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
