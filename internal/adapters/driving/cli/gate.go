package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

var (
	gateIntent string
	gateJSON   bool
)

var gateCmd = &cobra.Command{
	Use:   "gate [query]",
	Short: "Check a question for missing context",
	Long: `Checks whether a question names everything needed to answer it safely,
for example the climate zone of an insulation question. The intent is either
a gated intent such as "compliance" or a requirement category such as
"h1_insulation".`,
	Args: cobra.ExactArgs(1),
	RunE: runGate,
}

func init() {
	gateCmd.Flags().StringVarP(&gateIntent, "intent", "i", "compliance", "classified intent or requirement category")
	gateCmd.Flags().BoolVar(&gateJSON, "json", false, "output the verdict as JSON")
	rootCmd.AddCommand(gateCmd)
}

// gateOutput is the JSON form of the gate command.
type gateOutput struct {
	Complete bool                   `json:"complete"`
	Missing  *domain.MissingContext `json:"missing,omitempty"`
}

func runGate(cmd *cobra.Command, args []string) error {
	query := args[0]

	if contextGate == nil {
		return errors.New("context gate not configured")
	}

	missing := contextGate.Evaluate(query, gateIntent)

	if gateJSON {
		data, err := json.MarshalIndent(gateOutput{Complete: missing == nil, Missing: missing}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal verdict: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if missing == nil {
		cmd.Println("Context complete.")
		return nil
	}

	cmd.Printf("Missing context for %s:\n", missing.Category)
	for i, field := range missing.MissingFields {
		prompt := ""
		if i < len(missing.FollowUpPrompts) {
			prompt = missing.FollowUpPrompts[i]
		}
		cmd.Printf("  - %s: %s\n", field, prompt)
	}
	return nil
}
