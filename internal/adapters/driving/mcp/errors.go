// Package mcp provides an MCP (Model Context Protocol) server adapter for Stryda.
// It lets assistants rank citations, check queries for missing context and
// look up source authority while answering building-code questions.
package mcp

import "errors"

var (
	// ErrMissingCitationRanker is returned when the citation ranker is not provided.
	ErrMissingCitationRanker = errors.New("mcp: citation ranker is required")

	// ErrMissingContextGate is returned when the context gate is not provided.
	ErrMissingContextGate = errors.New("mcp: context gate is required")

	// ErrMissingAuthority is returned when the authority resolver is not provided.
	ErrMissingAuthority = errors.New("mcp: authority resolver is required")
)
