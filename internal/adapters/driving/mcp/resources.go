package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for Stryda resources.
	uriScheme = "stryda://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the enrichment job status.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "enrichment-status",
		Description: "Persisted state and live counts of the enrichment job",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	// Template for source authority.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "authority/{source}",
		Name:        "source-authority",
		Description: "Precedence weight of a source document",
		MIMEType:    "application/json",
	}, s.handleAuthorityResource)
}

// statusInfo is the JSON body of the status resource.
type statusInfo struct {
	State  *domain.ProcessState    `json:"state"`
	Counts domain.EnrichmentCounts `json:"counts"`
}

// handleStatusResource returns the enrichment job status.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Enricher == nil {
		return jsonResult(req.Params.URI, "{}"), nil
	}

	state, err := s.ports.Enricher.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}

	counts, err := s.ports.Enricher.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	data, err := json.MarshalIndent(statusInfo{State: state, Counts: counts}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

// handleAuthorityResource returns the weight of the source named in the URI.
func (s *Server) handleAuthorityResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	source := extractSource(req.Params.URI)
	if source == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(AuthorityOutput{
		Source: source,
		Weight: s.ports.Authority.Weight(source),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling authority: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractSource extracts the source name from a URI like stryda://authority/{source}.
// The name may be percent-encoded.
func extractSource(uri string) string {
	const prefix = uriScheme + "authority/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	raw := strings.TrimPrefix(uri, prefix)
	source, err := url.PathUnescape(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(source)
}
