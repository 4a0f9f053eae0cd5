package filesystem

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

// maxLineSize bounds a single record line.
const maxLineSize = 4 * 1024 * 1024

// RecordExt is the file extension of record files.
const RecordExt = ".jsonl"

// recordLine is the wire form of one record.
type recordLine struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
	Content string `json:"content"`
}

// LineError describes a line that could not be parsed.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ReadResult is the outcome of reading a record stream.
type ReadResult struct {
	Records []domain.Record
	Errors  []LineError
}

// ReadRecords parses one record per line. Blank lines are ignored.
// Malformed lines are collected in the result and skipped. The returned
// error is non-nil only when the reader itself fails.
func ReadRecords(r io.Reader) (ReadResult, error) {
	var result ReadResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rl recordLine
		if err := json.Unmarshal(line, &rl); err != nil {
			result.Errors = append(result.Errors, LineError{Line: lineNo, Err: err})
			continue
		}

		result.Records = append(result.Records, domain.Record{
			ID:      rl.ID,
			Source:  rl.Source,
			Page:    rl.Page,
			Content: rl.Content,
		})
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("reading records at line %d: %w", lineNo+1, err)
	}

	return result, nil
}

// ReadFile reads a record file from disk.
func ReadFile(path string) (ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReadResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return ReadRecords(f)
}
