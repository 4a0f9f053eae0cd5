package driven

import "github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"

// RuleStore provides the rule tables used at query time.
// Implementations may load rules from files or embed them in the binary.
type RuleStore interface {
	// AuthorityRules returns the authority weight table.
	AuthorityRules() ([]domain.AuthorityRule, error)

	// GateConfig returns the missing-context gate configuration.
	GateConfig() (domain.GateConfig, error)

	// Reload clears any cached rules, forcing fresh loads on next access.
	Reload()
}

// Well-known rule file names.
const (
	RulesAuthority = "authority"
	RulesContext   = "context"
)
