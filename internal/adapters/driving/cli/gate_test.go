package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

func TestGateCmd_NotConfigured(t *testing.T) {
	setupServices(t, nil)

	_, _, err := executeCommand(t, "", "gate", "R-value for a roof")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "context gate not configured")
}

func TestGateCmd_Complete(t *testing.T) {
	gate := &mockContextGate{}
	setupServices(t, &Services{Gate: gate})

	out, _, err := executeCommand(t, "", "gate", "R-value for a roof in zone 3")

	require.NoError(t, err)
	assert.Equal(t, "compliance", gate.gotIntent)
	assert.Contains(t, out, "Context complete.")
}

func TestGateCmd_Missing(t *testing.T) {
	gate := &mockContextGate{missing: &domain.MissingContext{
		Category:        "h1_insulation",
		MissingFields:   []string{"climate_zone"},
		FollowUpPrompts: []string{"Which climate zone (1 to 6) is the building in?"},
	}}
	setupServices(t, &Services{Gate: gate})

	out, _, err := executeCommand(t, "", "gate", "R-value for a roof", "--intent", "h1_insulation")

	require.NoError(t, err)
	assert.Equal(t, "h1_insulation", gate.gotIntent)
	assert.Contains(t, out, "Missing context for h1_insulation:")
	assert.Contains(t, out, "- climate_zone: Which climate zone (1 to 6) is the building in?")
}

func TestGateCmd_JSON(t *testing.T) {
	setupServices(t, &Services{Gate: &mockContextGate{}})

	out, _, err := executeCommand(t, "", "gate", "anything", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"complete": true`)
	assert.NotContains(t, out, "missing")
}
