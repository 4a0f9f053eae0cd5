package services

import (
	"strings"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
)

// Ensure AuthorityResolver implements the interface.
var _ driving.AuthorityResolver = (*AuthorityResolver)(nil)

// AuthorityResolver maps source names to precedence weights.
// The rule table is fixed at construction.
type AuthorityResolver struct {
	rules         []domain.AuthorityRule
	defaultWeight int
}

// NewAuthorityResolver creates a resolver over rules.
// Nil or empty rules use the built-in table.
func NewAuthorityResolver(rules []domain.AuthorityRule) *AuthorityResolver {
	if len(rules) == 0 {
		rules = domain.DefaultAuthorityRules()
	}
	compiled := make([]domain.AuthorityRule, 0, len(rules))
	for _, r := range rules {
		p := strings.ToLower(strings.TrimSpace(r.Pattern))
		if p == "" {
			continue
		}
		compiled = append(compiled, domain.AuthorityRule{Pattern: p, Weight: r.Weight, Tier: r.Tier})
	}
	return &AuthorityResolver{
		rules:         compiled,
		defaultWeight: domain.DefaultAuthorityWeight,
	}
}

// Weight returns the highest weight among rules whose pattern occurs in
// source, case-insensitively, or the default weight when none match.
func (r *AuthorityResolver) Weight(source string) int {
	s := strings.ToLower(source)
	best, matched := 0, false
	for _, rule := range r.rules {
		if strings.Contains(s, rule.Pattern) && (!matched || rule.Weight > best) {
			best, matched = rule.Weight, true
		}
	}
	if !matched {
		return r.defaultWeight
	}
	return best
}

// Tier returns the tier label of the highest-weighted matching rule.
func (r *AuthorityResolver) Tier(source string) string {
	s := strings.ToLower(source)
	tier, best := "", -1
	for _, rule := range r.rules {
		if strings.Contains(s, rule.Pattern) && rule.Weight > best {
			tier, best = rule.Tier, rule.Weight
		}
	}
	return tier
}

// Rules returns a copy of the rule table.
func (r *AuthorityResolver) Rules() []domain.AuthorityRule {
	return append([]domain.AuthorityRule(nil), r.rules...)
}
