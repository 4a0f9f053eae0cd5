package cli

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
)

// enrichHarness records the settings the factory was called with.
type enrichHarness struct {
	enricher *mockEnricher
	got      domain.EnrichmentSettings
	calls    int
}

func (h *enrichHarness) factory(cfg domain.EnrichmentSettings, _ func(domain.ProcessState)) driving.Enricher {
	h.calls++
	h.got = cfg
	return h.enricher
}

func setupEnrich(t *testing.T, e *mockEnricher) (*enrichHarness, *mockSettingsService) {
	t.Helper()
	h := &enrichHarness{enricher: e}
	settings := newMockSettings()
	setupServices(t, &Services{NewEnricher: h.factory, Settings: settings})
	return h, settings
}

func TestEnrichCmd_NotConfigured(t *testing.T) {
	t.Run("no settings", func(t *testing.T) {
		setupServices(t, nil)
		_, _, err := executeCommand(t, "", "enrich")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "settings service not configured")
	})

	t.Run("no factory", func(t *testing.T) {
		setupServices(t, &Services{Settings: newMockSettings()})
		_, _, err := executeCommand(t, "", "enrich")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "enrich service not configured")
	})
}

func TestEnrichCmd_Completed(t *testing.T) {
	e := &mockEnricher{state: &domain.ProcessState{
		ID: domain.JobEnrich, Note: domain.NoteCompleted,
		Processed: 10, Total: 10, WithSection: 7, WithClause: 4,
	}}
	h, _ := setupEnrich(t, e)

	out, _, err := executeCommand(t, "", "enrich")

	require.NoError(t, err)
	assert.Equal(t, 1, e.runs)
	assert.Equal(t, domain.DefaultAppSettings().Enrichment, h.got)
	assert.Contains(t, out, "batch size 50")
	assert.Contains(t, out, "Run completed: 10/10 records processed (7 with section, 4 with clause), 0 restarts")
}

func TestEnrichCmd_FlagsOverrideSettings(t *testing.T) {
	h, _ := setupEnrich(t, &mockEnricher{})

	_, _, err := executeCommand(t, "", "enrich",
		"--batch-size", "5",
		"--max-restarts", "1",
		"--stall-timeout", "2m",
		"--heartbeat-interval", "5s",
		"--restart-backoff", "0s",
	)

	require.NoError(t, err)
	assert.Equal(t, domain.EnrichmentSettings{
		BatchSize:         5,
		HeartbeatInterval: 5 * time.Second,
		StallTimeout:      2 * time.Minute,
		MaxRestarts:       1,
		RestartBackoff:    0,
	}, h.got)
}

func TestEnrichCmd_UnsetFlagsKeepSettings(t *testing.T) {
	h, settings := setupEnrich(t, &mockEnricher{})
	settings.settings.Enrichment.BatchSize = 25

	_, _, err := executeCommand(t, "", "enrich", "--max-restarts", "0")

	require.NoError(t, err)
	assert.Equal(t, 25, h.got.BatchSize)
	assert.Equal(t, 0, h.got.MaxRestarts)
}

func TestEnrichCmd_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero batch", []string{"--batch-size", "0"}},
		{"negative restarts", []string{"--max-restarts", "-1"}},
		{"stall shorter than heartbeat", []string{"--stall-timeout", "1s", "--heartbeat-interval", "5s"}},
		{"zero heartbeat", []string{"--heartbeat-interval", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupEnrich(t, &mockEnricher{})

			_, _, err := executeCommand(t, "", append([]string{"enrich"}, tt.args...)...)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 0, h.calls)
		})
	}
}

func TestEnrichCmd_Halted(t *testing.T) {
	e := &mockEnricher{
		runErr: fmt.Errorf("job enrich after 3 restarts: %w", domain.ErrHalted),
		state:  &domain.ProcessState{Note: domain.NoteHalted, Processed: 4, Total: 10, RestartCount: 3},
	}
	setupEnrich(t, e)

	out, errOut, err := executeCommand(t, "", "enrich")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHalted)
	assert.Equal(t, ExitHalted, exitCode(err))
	assert.Contains(t, out, "Run halted: 4/10")
	assert.Contains(t, errOut, "halted after exhausting restarts")
}

func TestEnrichCmd_StatusErrorIsNotFatal(t *testing.T) {
	setupEnrich(t, &mockEnricher{statusErr: errors.New("locked")})

	out, _, err := executeCommand(t, "", "enrich")

	require.NoError(t, err)
	assert.NotContains(t, out, "Run ")
}

func TestEnrichCmd_SettingsError(t *testing.T) {
	_, settings := setupEnrich(t, &mockEnricher{})
	settings.getErr = errors.New("unreadable config")

	_, _, err := executeCommand(t, "", "enrich")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable config")
}

func TestValidateEnrichment(t *testing.T) {
	assert.NoError(t, validateEnrichment(domain.DefaultAppSettings().Enrichment))

	cfg := domain.DefaultAppSettings().Enrichment
	cfg.RestartBackoff = -time.Second
	assert.ErrorIs(t, validateEnrichment(cfg), domain.ErrInvalidInput)
}
