package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var authorityJSON bool

var authorityCmd = &cobra.Command{
	Use:   "authority [source ...]",
	Short: "Show the authority weight of sources",
	Long: `Prints the precedence weight of each source name. Regulatory documents
outrank standards, which outrank guidance, certifier appraisals and
manufacturer literature. Unknown sources get the default weight.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAuthority,
}

func init() {
	authorityCmd.Flags().BoolVar(&authorityJSON, "json", false, "output weights as JSON")
	rootCmd.AddCommand(authorityCmd)
}

// authorityOutput is one entry of the authority command's JSON output.
type authorityOutput struct {
	Source string `json:"source"`
	Weight int    `json:"weight"`
}

func runAuthority(cmd *cobra.Command, args []string) error {
	if authority == nil {
		return errors.New("authority service not configured")
	}

	weights := make([]authorityOutput, len(args))
	for i, source := range args {
		weights[i] = authorityOutput{Source: source, Weight: authority.Weight(source)}
	}

	if authorityJSON {
		data, err := json.MarshalIndent(weights, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal weights: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, w := range weights {
		cmd.Printf("%4d  %s\n", w.Weight, w.Source)
	}
	return nil
}
