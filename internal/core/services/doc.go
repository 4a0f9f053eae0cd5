// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The enrichment side (Deduplicator, MetadataExtractor, EnrichmentCursor,
// Executor) sweeps the record store. The query side (AuthorityResolver,
// CitationRanker, MissingContextGate) is pure and never returns errors.
package services
