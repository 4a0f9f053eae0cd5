package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/connectors/filesystem"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

var (
	ingestWatch string
	ingestJSON  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.jsonl ...]",
	Short: "Ingest records from JSON Lines files",
	Long: `Reads records from JSON Lines files and stores the ones not seen before.
Each line is an object with source, page and content, and an optional id.
Use "-" to read from standard input.

With --watch, record files already in the directory are ingested and new
ones are ingested as they arrive, until interrupted.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestWatch, "watch", "w", "", "watch a directory for record files")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("ingest service not configured")
	}

	ctx := commandContext(cmd)

	if ingestWatch != "" {
		return watchAndIngest(ctx, cmd, ingestWatch)
	}

	if len(args) == 0 {
		return errors.New("no record files given")
	}

	var total domain.IngestResult
	for _, path := range args {
		result, err := ingestPath(ctx, cmd, path)
		total.Add(result)
		if err != nil {
			return err
		}
	}

	return outputIngestResult(cmd, total)
}

// ingestPath reads one record file, or standard input for "-", and ingests it.
func ingestPath(ctx context.Context, cmd *cobra.Command, path string) (domain.IngestResult, error) {
	var (
		read filesystem.ReadResult
		err  error
	)
	if path == "-" {
		read, err = filesystem.ReadRecords(cmd.InOrStdin())
	} else {
		read, err = filesystem.ReadFile(path)
	}
	if err != nil {
		return domain.IngestResult{}, err
	}

	for _, lineErr := range read.Errors {
		cmd.PrintErrf("%s: %v\n", path, lineErr)
	}

	result, err := ingestor.Ingest(ctx, read.Records)
	if err != nil {
		return result, fmt.Errorf("ingest %s failed: %w", path, err)
	}

	logger.Debug("ingested file", "path", path, "inserted", result.Inserted, "duplicates", result.Duplicates)
	return result, nil
}

func watchAndIngest(ctx context.Context, cmd *cobra.Command, dir string) error {
	if serveMetrics != nil {
		go func() {
			if err := serveMetrics(ctx); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	w := filesystem.NewWatcher(dir)
	defer w.Close()

	existing, err := w.Existing()
	if err != nil {
		return err
	}

	paths, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	var total domain.IngestResult
	ingestOne := func(path string) error {
		result, err := ingestPath(ctx, cmd, path)
		total.Add(result)
		if err != nil {
			return err
		}
		printIngestLine(cmd.OutOrStdout(), path, result)
		return nil
	}

	for _, path := range existing {
		if err := ingestOne(path); err != nil {
			return err
		}
	}

	cmd.Printf("Watching %s for record files...\n", dir)
	for path := range paths {
		if err := ingestOne(path); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
	}

	return outputIngestResult(cmd, total)
}

func printIngestLine(w io.Writer, path string, r domain.IngestResult) {
	fmt.Fprintf(w, "%s: %d inserted, %d duplicates, %d invalid\n",
		path, r.Inserted, r.Duplicates, r.Invalid)
}

func outputIngestResult(cmd *cobra.Command, r domain.IngestResult) error {
	if ingestJSON {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Received %d records: %d inserted, %d duplicates, %d invalid\n",
		r.Received, r.Inserted, r.Duplicates, r.Invalid)
	return nil
}
