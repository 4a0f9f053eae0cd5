package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

// RankCitationsInput is the input schema for the rank_citations tool.
type RankCitationsInput struct {
	Query               string             `json:"query" jsonschema:"the user question the hits were retrieved for"`
	Hits                []domain.SearchHit `json:"hits" jsonschema:"retrieval hits with source, page, content and score"`
	MaxCitations        int                `json:"max_citations,omitempty" jsonschema:"maximum number of citations to return (defaults to the configured limit)"`
	PreferAuthoritative bool               `json:"prefer_authoritative,omitempty" jsonschema:"order by source authority before confidence"`
}

// RankCitationsOutput is the output schema for the rank_citations tool.
type RankCitationsOutput struct {
	Citations []domain.Citation `json:"citations"`
	Count     int               `json:"count"`
}

// CheckContextInput is the input schema for the check_context tool.
type CheckContextInput struct {
	Query  string `json:"query" jsonschema:"the user question"`
	Intent string `json:"intent" jsonschema:"the classified intent or a requirement category"`
}

// CheckContextOutput is the output schema for the check_context tool.
type CheckContextOutput struct {
	Complete bool                   `json:"complete"`
	Missing  *domain.MissingContext `json:"missing,omitempty"`
}

// AuthorityInput is the input schema for the authority_weight tool.
type AuthorityInput struct {
	Source string `json:"source" jsonschema:"the source document name"`
}

// AuthorityOutput is the output schema for the authority_weight tool.
type AuthorityOutput struct {
	Source string `json:"source"`
	Weight int    `json:"weight"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rank_citations",
		Description: "Rank retrieval hits into deduplicated citations with clause and table locators",
	}, s.handleRankCitations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_context",
		Description: "Check whether a compliance question names everything needed to answer it",
	}, s.handleCheckContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "authority_weight",
		Description: "Return the precedence weight of a source document",
	}, s.handleAuthorityWeight)
}

// handleRankCitations handles the rank_citations tool invocation.
func (s *Server) handleRankCitations(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RankCitationsInput,
) (*mcp.CallToolResult, RankCitationsOutput, error) {
	maxCitations := input.MaxCitations
	if maxCitations < 1 {
		maxCitations = s.ports.MaxCitations
	}
	citations := s.ports.Citations.Rank(input.Hits, input.Query, maxCitations)
	if input.PreferAuthoritative {
		citations = s.ports.Citations.PreferAuthoritative(citations)
	}

	return nil, RankCitationsOutput{
		Citations: citations,
		Count:     len(citations),
	}, nil
}

// handleCheckContext handles the check_context tool invocation.
func (s *Server) handleCheckContext(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CheckContextInput,
) (*mcp.CallToolResult, CheckContextOutput, error) {
	missing := s.ports.Gate.Evaluate(input.Query, input.Intent)
	return nil, CheckContextOutput{
		Complete: missing == nil,
		Missing:  missing,
	}, nil
}

// handleAuthorityWeight handles the authority_weight tool invocation.
func (s *Server) handleAuthorityWeight(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AuthorityInput,
) (*mcp.CallToolResult, AuthorityOutput, error) {
	source := strings.TrimSpace(input.Source)
	if source == "" {
		return nil, AuthorityOutput{}, domain.ErrInvalidInput
	}

	return nil, AuthorityOutput{
		Source: source,
		Weight: s.ports.Authority.Weight(source),
	}, nil
}
