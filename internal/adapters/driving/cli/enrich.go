package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

var (
	enrichBatchSize         int
	enrichMaxRestarts       int
	enrichStallTimeout      time.Duration
	enrichHeartbeatInterval time.Duration
	enrichRestartBackoff    time.Duration
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill in section and clause metadata",
	Long: `Sweeps all records that have not been processed yet and writes their
section, clause and snippet. The run is monitored by a heartbeat: a run that
makes no progress within the stall timeout is restarted, and after the
maximum number of restarts it halts with exit status 2.

Progress persists between runs, so an interrupted run resumes where it
stopped.`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().IntVar(&enrichBatchSize, "batch-size", 0, "records per batch (overrides settings)")
	enrichCmd.Flags().IntVar(&enrichMaxRestarts, "max-restarts", 0, "automatic restarts before halting (overrides settings)")
	enrichCmd.Flags().DurationVar(&enrichStallTimeout, "stall-timeout", 0, "time without progress before a restart (overrides settings)")
	enrichCmd.Flags().DurationVar(&enrichHeartbeatInterval, "heartbeat-interval", 0, "state persist and stall check cadence (overrides settings)")
	enrichCmd.Flags().DurationVar(&enrichRestartBackoff, "restart-backoff", 0, "pause before a restarted worker resumes (overrides settings)")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if enricherFactory == nil {
		return errors.New("enrich service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cfg := settings.Enrichment
	applyEnrichFlags(cmd, &cfg)
	if err := validateEnrichment(cfg); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if serveMetrics != nil {
		go func() {
			if err := serveMetrics(ctx); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	out := cmd.OutOrStdout()
	live := isTerminal(out)
	var progress func(domain.ProcessState)
	if live {
		progress = func(s domain.ProcessState) {
			fmt.Fprintf(out, "\r%-10s %d/%d records, %d restarts", s.Note, s.Processed, s.Total, s.RestartCount)
		}
	}

	e := enricherFactory(cfg, progress)

	cmd.Printf("Enriching records (batch size %d, stall timeout %s, max restarts %d)...\n",
		cfg.BatchSize, cfg.StallTimeout, cfg.MaxRestarts)

	runErr := e.Run(ctx)
	if live {
		fmt.Fprintln(out)
	}

	// The run may have ended because ctx was cancelled.
	state, err := e.Status(context.WithoutCancel(ctx))
	if err != nil {
		logger.Warn("failed to read final state", "error", err)
	} else if state != nil {
		printRunSummary(cmd, state)
	}

	if runErr != nil {
		if errors.Is(runErr, domain.ErrHalted) {
			cmd.PrintErrln("Enrichment halted after exhausting restarts. Fix the cause and run 'stryda enrich' again.")
		}
		return fmt.Errorf("enrichment failed: %w", runErr)
	}
	return nil
}

// applyEnrichFlags overrides settings with flags set on the command line.
func applyEnrichFlags(cmd *cobra.Command, cfg *domain.EnrichmentSettings) {
	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		cfg.BatchSize = enrichBatchSize
	}
	if flags.Changed("max-restarts") {
		cfg.MaxRestarts = enrichMaxRestarts
	}
	if flags.Changed("stall-timeout") {
		cfg.StallTimeout = enrichStallTimeout
	}
	if flags.Changed("heartbeat-interval") {
		cfg.HeartbeatInterval = enrichHeartbeatInterval
	}
	if flags.Changed("restart-backoff") {
		cfg.RestartBackoff = enrichRestartBackoff
	}
}

func validateEnrichment(cfg domain.EnrichmentSettings) error {
	switch {
	case cfg.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be positive, got %d", domain.ErrInvalidInput, cfg.BatchSize)
	case cfg.HeartbeatInterval <= 0:
		return fmt.Errorf("%w: heartbeat interval must be positive", domain.ErrInvalidInput)
	case cfg.StallTimeout < cfg.HeartbeatInterval:
		return fmt.Errorf("%w: stall timeout %s is shorter than heartbeat interval %s",
			domain.ErrInvalidInput, cfg.StallTimeout, cfg.HeartbeatInterval)
	case cfg.MaxRestarts < 0:
		return fmt.Errorf("%w: max restarts must not be negative", domain.ErrInvalidInput)
	case cfg.RestartBackoff < 0:
		return fmt.Errorf("%w: restart backoff must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func printRunSummary(cmd *cobra.Command, s *domain.ProcessState) {
	cmd.Printf("Run %s: %d/%d records processed (%d with section, %d with clause), %d restarts\n",
		s.Note, s.Processed, s.Total, s.WithSection, s.WithClause, s.RestartCount)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
