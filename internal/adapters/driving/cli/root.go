// Package cli provides the stryda command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// Exit codes returned by Execute.
const (
	ExitOK     = 0
	ExitError  = 1
	ExitHalted = 2
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

// EnricherFactory builds an enricher for the given settings. progress is
// called with the persisted state at every heartbeat and may be nil.
type EnricherFactory func(cfg domain.EnrichmentSettings, progress func(domain.ProcessState)) driving.Enricher

// Services holds the driving ports the commands use.
type Services struct {
	Ingestor    driving.Ingestor
	Enricher    driving.Enricher
	NewEnricher EnricherFactory
	Citations   driving.CitationRanker
	Gate        driving.ContextGate
	Authority   driving.AuthorityResolver
	Settings    driving.SettingsService

	// ServeMetrics serves the metrics endpoint until ctx is done.
	// Nil when metrics are disabled.
	ServeMetrics func(ctx context.Context) error
}

// Services injected at startup. Commands fail with "not configured"
// when the one they need is nil.
var (
	ingestor        driving.Ingestor
	enricher        driving.Enricher
	enricherFactory EnricherFactory
	citationRanker  driving.CitationRanker
	contextGate     driving.ContextGate
	authority       driving.AuthorityResolver
	settingsService driving.SettingsService
	serveMetrics    func(ctx context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "stryda",
	Short: "Building-code retrieval support",
	Long: `Stryda ingests chunked building-code documents, enriches them with
section and clause locators, and ranks retrieval hits into citations.

Query-time checks (citations, missing context, source authority) are also
available to assistants through the MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices injects the services used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestor = s.Ingestor
	enricher = s.Enricher
	enricherFactory = s.NewEnricher
	citationRanker = s.Citations
	contextGate = s.Gate
	authority = s.Authority
	settingsService = s.Settings
	serveMetrics = s.ServeMetrics
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrHalted):
		return ExitHalted
	default:
		return ExitError
	}
}

// commandContext returns the command's context, or a background context
// when the command is run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
