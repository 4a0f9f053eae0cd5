package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

func TestExtractSource(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"plain", "stryda://authority/branz", "branz"},
		{"escaped", "stryda://authority/NZS%203604", "NZS 3604"},
		{"wrong prefix", "stryda://status", ""},
		{"other scheme", "other://authority/branz", ""},
		{"empty", "stryda://authority/", ""},
		{"bad escape", "stryda://authority/%zz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSource(tt.uri))
		})
	}
}

// makeReadResourceRequest creates a ReadResourceRequest for testing.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil enricher returns empty object", func(t *testing.T) {
		server, err := NewServer(validPorts())
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("stryda://status"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "{}", result.Contents[0].Text)
	})

	t.Run("returns state and counts", func(t *testing.T) {
		ports := validPorts()
		ports.Enricher = &mockEnricher{
			state:  &domain.ProcessState{ID: domain.JobEnrich, Note: domain.NoteRunning, Processed: 7, Total: 10},
			counts: domain.EnrichmentCounts{Total: 10, Processed: 8},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("stryda://status"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"note": "running"`)
		assert.Contains(t, text, `"processed": 8`)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("never run has null state", func(t *testing.T) {
		ports := validPorts()
		ports.Enricher = &mockEnricher{}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("stryda://status"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"state": null`)
	})

	t.Run("status error", func(t *testing.T) {
		ports := validPorts()
		ports.Enricher = &mockEnricher{err: errors.New("database error")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleStatusResource(ctx, makeReadResourceRequest("stryda://status"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting status")
	})

	t.Run("counts error", func(t *testing.T) {
		ports := validPorts()
		ports.Enricher = &mockEnricher{countsErr: errors.New("database error")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleStatusResource(ctx, makeReadResourceRequest("stryda://status"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "counting records")
	})
}

func TestServer_handleAuthorityResource(t *testing.T) {
	ctx := context.Background()

	ports := validPorts()
	ports.Authority = &mockAuthority{weights: map[string]int{"NZS 3604": 80}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	t.Run("returns weight", func(t *testing.T) {
		result, err := server.handleAuthorityResource(ctx, makeReadResourceRequest("stryda://authority/NZS%203604"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"weight": 80`)
	})

	t.Run("invalid uri", func(t *testing.T) {
		_, err := server.handleAuthorityResource(ctx, makeReadResourceRequest("stryda://authority/"))
		require.Error(t, err)
	})
}
