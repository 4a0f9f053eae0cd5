package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "stryda", rootCmd.Use)
}

func TestRootCmd_HasCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ingest", "enrich", "status", "cite", "gate", "authority", "settings", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"halted", domain.ErrHalted, ExitHalted},
		{"wrapped halted", fmt.Errorf("enrichment failed: %w", domain.ErrHalted), ExitHalted},
		{"other", errors.New("boom"), ExitError},
		{"invalid input", domain.ErrInvalidInput, ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)

	SetVersion("")
	assert.Equal(t, "1.2.3", version)
}

func TestSetServices_Nil(t *testing.T) {
	SetServices(&Services{Ingestor: &mockIngestor{}})
	assert.NotNil(t, ingestor)

	SetServices(nil)
	assert.Nil(t, ingestor)
	assert.Nil(t, enricher)
	assert.Nil(t, enricherFactory)
	assert.Nil(t, settingsService)
}

func TestVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "v", flag.Shorthand)
		assert.Equal(t, "false", flag.DefValue)
	}
}
