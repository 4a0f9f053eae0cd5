package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRecords = `{"source":"NZBC E2/AS1","page":12,"content":"9.1 Cladding"}
{"source":"NZS 3604","page":3,"content":"Table 8.1 Bracing"}
`

func writeRecordFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file.jsonl ...]", ingestCmd.Use)
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	setupServices(t, nil)

	_, _, err := executeCommand(t, "", "ingest", "x.jsonl")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestIngestCmd_NoFiles(t *testing.T) {
	setupServices(t, &Services{Ingestor: &mockIngestor{}})

	_, _, err := executeCommand(t, "", "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no record files")
}

func TestIngestCmd_Files(t *testing.T) {
	ing := &mockIngestor{}
	setupServices(t, &Services{Ingestor: ing})

	dir := t.TempDir()
	a := writeRecordFile(t, dir, "a.jsonl", twoRecords)
	b := writeRecordFile(t, dir, "b.jsonl", `{"source":"x","page":0,"content":"bad page"}`+"\n")

	out, _, err := executeCommand(t, "", "ingest", a, b)

	require.NoError(t, err)
	require.Len(t, ing.calls, 2)
	assert.Len(t, ing.calls[0], 2)
	assert.Contains(t, out, "Received 3 records: 2 inserted, 0 duplicates, 1 invalid")
}

func TestIngestCmd_Stdin(t *testing.T) {
	ing := &mockIngestor{}
	setupServices(t, &Services{Ingestor: ing})

	out, _, err := executeCommand(t, twoRecords, "ingest", "-")

	require.NoError(t, err)
	require.Len(t, ing.calls, 1)
	assert.Equal(t, "NZS 3604", ing.calls[0][1].Source)
	assert.Contains(t, out, "2 inserted")
}

func TestIngestCmd_ReportsMalformedLines(t *testing.T) {
	setupServices(t, &Services{Ingestor: &mockIngestor{}})

	input := `{"source":"a","page":1,"content":"x"}
{broken
`
	out, errOut, err := executeCommand(t, input, "ingest", "-")

	require.NoError(t, err)
	assert.Contains(t, errOut, "-: line 2")
	assert.Contains(t, out, "Received 1 records")
}

func TestIngestCmd_JSON(t *testing.T) {
	setupServices(t, &Services{Ingestor: &mockIngestor{}})

	out, _, err := executeCommand(t, twoRecords, "ingest", "--json", "-")

	require.NoError(t, err)
	assert.Contains(t, out, `"received": 2`)
	assert.Contains(t, out, `"inserted": 2`)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	setupServices(t, &Services{Ingestor: &mockIngestor{}})

	_, _, err := executeCommand(t, "", "ingest", filepath.Join(t.TempDir(), "missing.jsonl"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngestCmd_StoreError(t *testing.T) {
	setupServices(t, &Services{Ingestor: &mockIngestor{err: errors.New("database locked")}})

	_, _, err := executeCommand(t, twoRecords, "ingest", "-")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database locked")
}

func TestIngestCmd_Watch(t *testing.T) {
	ing := &mockIngestor{}
	setupServices(t, &Services{Ingestor: ing})

	dir := t.TempDir()
	writeRecordFile(t, dir, "existing.jsonl", twoRecords)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, _, err := executeCommandContext(ctx, t, "", "ingest", "--watch", dir)

	require.NoError(t, err)
	require.NotEmpty(t, ing.calls)
	assert.Contains(t, out, "existing.jsonl: 2 inserted, 0 duplicates, 0 invalid")
	assert.Contains(t, out, "Watching "+dir)
	assert.Contains(t, out, "Received 2 records")
}

func TestIngestCmd_WatchMissingDir(t *testing.T) {
	setupServices(t, &Services{Ingestor: &mockIngestor{}})

	_, _, err := executeCommand(t, "", "ingest", "--watch", "/non/existent/path")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "root path error")
}
