package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show enrichment progress",
	Long: `Shows the persisted state of the enrichment job together with live
record counts from the store.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

// statusOutput is the JSON form of the status command.
type statusOutput struct {
	State  *domain.ProcessState    `json:"state"`
	Counts domain.EnrichmentCounts `json:"counts"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if enricher == nil {
		return errors.New("enrich service not configured")
	}

	ctx := commandContext(cmd)

	state, err := enricher.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	counts, err := enricher.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(statusOutput{State: state, Counts: counts}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Enrichment Status")
	cmd.Println("=================")
	cmd.Println()

	if state == nil {
		cmd.Println("No enrichment run recorded.")
	} else {
		cmd.Printf("  State:          %s\n", state.Note)
		cmd.Printf("  Last heartbeat: %s\n", formatHeartbeat(state.LastHeartbeat))
		cmd.Printf("  Processed:      %d / %d\n", state.Processed, state.Total)
		cmd.Printf("  Remaining:      %d\n", state.Remaining())
		cmd.Printf("  Restarts:       %d\n", state.RestartCount)
	}
	cmd.Println()

	cmd.Println("[Records]")
	cmd.Printf("  Total:        %d\n", counts.Total)
	cmd.Printf("  Processed:    %d\n", counts.Processed)
	cmd.Printf("  With section: %d\n", counts.WithSection)
	cmd.Printf("  With clause:  %d\n", counts.WithClause)

	return nil
}

func formatHeartbeat(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}
