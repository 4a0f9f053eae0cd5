package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, v bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(v)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestSetVerbose(t *testing.T) {
	_ = capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("test message", "arg", 1)

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.EqualValues(t, 1, entries[0]["arg"])
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("test message")

	assert.Zero(t, buf.Len(), "expected no output when verbose is disabled")
}

func TestInfo_AlwaysWritten(t *testing.T) {
	buf := capture(t, false)

	Info("state changed", "note", "running", "processed", 3)

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "running", entries[0]["note"])
}

func TestWarnAndError(t *testing.T) {
	buf := capture(t, false)

	Warn("alert failed")
	Error("store failed")

	entries := lines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestSection(t *testing.T) {
	buf := capture(t, true)

	Section("Enrichment")

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "=== Enrichment ===", entries[0]["msg"])
	assert.Equal(t, "Enrichment", entries[0]["section"])
}

func TestWith(t *testing.T) {
	buf := capture(t, false)

	log := With("job", "enrich")
	log.Info("heartbeat", "processed", 2)
	log.With("restart_count", 1).Warn("stalled")

	entries := lines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "enrich", entries[0]["job"])
	assert.EqualValues(t, 2, entries[0]["processed"])
	assert.Equal(t, "enrich", entries[1]["job"])
	assert.EqualValues(t, 1, entries[1]["restart_count"])
}

func TestRedaction(t *testing.T) {
	buf := capture(t, false)

	Info("connecting", "database_url", "postgres://u:p@h/db", "driver", "postgres")

	entries := lines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "[REDACTED]", entries[0]["database_url"])
	assert.Equal(t, "postgres", entries[0]["driver"])
}
