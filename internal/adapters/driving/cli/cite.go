package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

var (
	citeHits      string
	citeMax       int
	citePreferred bool
	citeJSON      bool
)

var citeCmd = &cobra.Command{
	Use:   "cite [query]",
	Short: "Rank retrieval hits into citations",
	Long: `Reads retrieval hits as a JSON array and ranks them into citations for
the query. Each hit has source, page, content, score and an optional snippet.

Citations are ordered by confidence. With --prefer-authoritative they are
ordered by source authority first.`,
	Args: cobra.ExactArgs(1),
	RunE: runCite,
}

func init() {
	citeCmd.Flags().StringVar(&citeHits, "hits", "-", "file with hits as a JSON array (- for stdin)")
	citeCmd.Flags().IntVarP(&citeMax, "max", "n", 0, "maximum number of citations (default from settings)")
	citeCmd.Flags().BoolVar(&citePreferred, "prefer-authoritative", false, "order by source authority")
	citeCmd.Flags().BoolVar(&citeJSON, "json", false, "output citations as JSON")
	rootCmd.AddCommand(citeCmd)
}

func runCite(cmd *cobra.Command, args []string) error {
	query := args[0]

	if citationRanker == nil {
		return errors.New("citation service not configured")
	}

	hits, err := readHits(cmd, citeHits)
	if err != nil {
		return err
	}

	maxCitations := citeMax
	if maxCitations <= 0 {
		maxCitations = configuredMaxCitations()
	}

	citations := citationRanker.Rank(hits, query, maxCitations)
	if citePreferred {
		citations = citationRanker.PreferAuthoritative(citations)
	}

	if citeJSON {
		data, err := json.MarshalIndent(citations, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal citations: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputCitationTable(cmd, citations)
}

// configuredMaxCitations returns the citation limit from settings, or 0
// when settings are unavailable so the ranker default applies.
func configuredMaxCitations() int {
	if settingsService == nil {
		return 0
	}
	settings, err := settingsService.Get()
	if err != nil {
		return 0
	}
	return settings.Citation.MaxCitations
}

func readHits(cmd *cobra.Command, path string) ([]domain.SearchHit, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening hits: %w", err)
		}
		defer f.Close()
		r = f
	}

	var hits []domain.SearchHit
	if err := json.NewDecoder(r).Decode(&hits); err != nil {
		return nil, fmt.Errorf("%w: decoding hits: %v", domain.ErrInvalidInput, err)
	}
	return hits, nil
}

func outputCitationTable(cmd *cobra.Command, citations []domain.Citation) error {
	if len(citations) == 0 {
		cmd.Println("No citations.")
		return nil
	}

	cmd.Println("Citations:")
	cmd.Println()
	for i := range citations {
		c := &citations[i]

		// Format: [N] Source p.Page - Locator (Confidence)
		locator := c.LocatorTitle
		if locator == "" {
			locator = c.LocatorID
		}
		if locator == "" {
			locator = string(c.LocatorType)
		}

		cmd.Printf("  [%d] %s p.%d - %s (%.2f)\n", i+1, c.Source, c.Page, locator, c.Confidence)
		cmd.Printf("      Authority: %d\n", c.Authority)
		if c.Anchor != "" {
			cmd.Printf("      Anchor: #%s\n", c.Anchor)
		}
		if c.Snippet != "" {
			cmd.Printf("      %s\n", c.Snippet)
		}
		cmd.Println()
	}

	return nil
}
