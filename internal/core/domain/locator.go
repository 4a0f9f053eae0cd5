package domain

// LocatorType identifies the structural anchor a chunk points to.
type LocatorType string

// Locator types in decreasing order of specificity.
const (
	LocatorClause  LocatorType = "clause"
	LocatorTable   LocatorType = "table"
	LocatorFigure  LocatorType = "figure"
	LocatorSection LocatorType = "section"
	LocatorPage    LocatorType = "page"
)

// IsValid returns true if the locator type is recognised.
func (t LocatorType) IsValid() bool {
	switch t {
	case LocatorClause, LocatorTable, LocatorFigure, LocatorSection, LocatorPage:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t LocatorType) String() string {
	return string(t)
}

// ExtractionResult is the locator derived from a chunk's content.
// It is never persisted on its own.
type ExtractionResult struct {
	// Type is the kind of locator found.
	Type LocatorType

	// ID is the locator identifier, such as "4.2.3" or "E2/AS1".
	// Empty when the locator is a bare page.
	ID string

	// Title is the heading or caption text, if any.
	Title string
}

// PageLocator returns the fallback result used when nothing matches.
func PageLocator() ExtractionResult {
	return ExtractionResult{Type: LocatorPage}
}

// HasID reports whether the result carries a locator identifier.
func (r ExtractionResult) HasID() bool {
	return r.ID != ""
}
