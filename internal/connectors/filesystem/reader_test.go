package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

func TestReadRecords(t *testing.T) {
	t.Run("parses records", func(t *testing.T) {
		input := `{"id":"r1","source":"NZBC E2/AS1","page":12,"content":"9.1 Cladding"}
{"source":"NZS 3604","page":3,"content":"Table 8.1 Bracing"}
`
		result, err := ReadRecords(strings.NewReader(input))

		require.NoError(t, err)
		assert.Empty(t, result.Errors)
		require.Len(t, result.Records, 2)
		assert.Equal(t, domain.Record{ID: "r1", Source: "NZBC E2/AS1", Page: 12, Content: "9.1 Cladding"}, result.Records[0])
		assert.Equal(t, "", result.Records[1].ID)
		assert.Equal(t, 3, result.Records[1].Page)
	})

	t.Run("skips blank lines", func(t *testing.T) {
		input := "\n\n{\"source\":\"a\",\"page\":1,\"content\":\"x\"}\n   \n"
		result, err := ReadRecords(strings.NewReader(input))

		require.NoError(t, err)
		assert.Len(t, result.Records, 1)
		assert.Empty(t, result.Errors)
	})

	t.Run("reports malformed lines with numbers", func(t *testing.T) {
		input := `{"source":"a","page":1,"content":"x"}
not json
{"source":"b","page":"two","content":"y"}
{"source":"c","page":3,"content":"z"}`
		result, err := ReadRecords(strings.NewReader(input))

		require.NoError(t, err)
		require.Len(t, result.Records, 2)
		assert.Equal(t, "a", result.Records[0].Source)
		assert.Equal(t, "c", result.Records[1].Source)

		require.Len(t, result.Errors, 2)
		assert.Equal(t, 2, result.Errors[0].Line)
		assert.Equal(t, 3, result.Errors[1].Line)
		assert.Contains(t, result.Errors[0].Error(), "line 2")
	})

	t.Run("validation is left to ingestion", func(t *testing.T) {
		result, err := ReadRecords(strings.NewReader(`{"source":"","page":0,"content":""}`))

		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.ErrorIs(t, result.Records[0].Validate(), domain.ErrInvalidInput)
	})

	t.Run("empty input", func(t *testing.T) {
		result, err := ReadRecords(strings.NewReader(""))

		require.NoError(t, err)
		assert.Empty(t, result.Records)
		assert.Empty(t, result.Errors)
	})

	t.Run("reader failure", func(t *testing.T) {
		_, err := ReadRecords(failingReader{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading records")
	})
}

type failingReader struct{}

func (failingReader) Read(_ []byte) (int, error) {
	return 0, errors.New("disk error")
}

func TestReadFile(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "batch.jsonl")
		require.NoError(t, os.WriteFile(path, []byte(`{"source":"a","page":1,"content":"x"}`+"\n"), 0o644))

		result, err := ReadFile(path)

		require.NoError(t, err)
		assert.Len(t, result.Records, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "missing.jsonl"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
