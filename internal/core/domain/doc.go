// Package domain defines the core business entities for Stryda.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: An ingested text chunk and its enrichment metadata
//   - ExtractionResult: The locator derived from a chunk's content
//   - ProcessState: The persisted status of an enrichment run
//   - Citation: A ranked, deduplicated reference built from a search hit
//   - ContextRequirement: Fields a query must mention before it can be answered
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
