package mcp

import (
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Citations ranks retrieval hits into citations.
	Citations driving.CitationRanker

	// Gate detects queries that lack required context.
	Gate driving.ContextGate

	// Authority resolves source precedence weights.
	Authority driving.AuthorityResolver

	// Enricher exposes enrichment status. Optional.
	Enricher driving.Enricher

	// MaxCitations is the configured limit used when a rank_citations
	// call omits max_citations. Zero leaves the ranker's default.
	MaxCitations int
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Citations == nil {
		return ErrMissingCitationRanker
	}
	if p.Gate == nil {
		return ErrMissingContextGate
	}
	if p.Authority == nil {
		return ErrMissingAuthority
	}
	return nil
}
