package services

import (
	"fmt"
	"regexp"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
)

// Ensure MissingContextGate implements the interface.
var _ driving.ContextGate = (*MissingContextGate)(nil)

type compiledField struct {
	key     string
	pattern *regexp.Regexp
	prompt  string
}

type compiledRequirement struct {
	category string
	trigger  *regexp.Regexp
	fields   []compiledField
}

// MissingContextGate checks whether a query carries the facts a gated
// intent needs. Patterns are compiled once at construction.
type MissingContextGate struct {
	gated        map[string]bool
	requirements []compiledRequirement
	byCategory   map[string]int
}

// NewMissingContextGate compiles cfg. Invalid patterns wrap ErrInvalidRule.
func NewMissingContextGate(cfg domain.GateConfig) (*MissingContextGate, error) {
	g := &MissingContextGate{
		gated:        make(map[string]bool, len(cfg.GatedIntents)),
		requirements: make([]compiledRequirement, 0, len(cfg.Requirements)),
		byCategory:   make(map[string]int, len(cfg.Requirements)),
	}
	for _, intent := range cfg.GatedIntents {
		g.gated[intent] = true
	}

	for _, req := range cfg.Requirements {
		if req.Category == "" {
			return nil, fmt.Errorf("%w: requirement without category", domain.ErrInvalidRule)
		}
		if _, dup := g.byCategory[req.Category]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", domain.ErrInvalidRule, req.Category)
		}
		cr := compiledRequirement{category: req.Category}
		if req.Trigger != "" {
			re, err := regexp.Compile(req.Trigger)
			if err != nil {
				return nil, fmt.Errorf("%w: %s trigger: %v", domain.ErrInvalidRule, req.Category, err)
			}
			cr.trigger = re
		}
		for _, f := range req.Fields {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s pattern: %v", domain.ErrInvalidRule, req.Category, f.Key, err)
			}
			cr.fields = append(cr.fields, compiledField{key: f.Key, pattern: re, prompt: f.Prompt})
		}
		g.byCategory[req.Category] = len(g.requirements)
		g.requirements = append(g.requirements, cr)
	}
	return g, nil
}

// Evaluate returns the first requirement with missing fields, or nil.
//
// An intent naming a category checks that category directly. A gated
// intent checks every requirement whose trigger matches the query, in
// configuration order. Any other intent is never gated.
func (g *MissingContextGate) Evaluate(query, intent string) *domain.MissingContext {
	if i, ok := g.byCategory[intent]; ok {
		return g.requirements[i].missing(query)
	}
	if !g.gated[intent] {
		return nil
	}
	for _, req := range g.requirements {
		if req.trigger == nil || !req.trigger.MatchString(query) {
			continue
		}
		if m := req.missing(query); m != nil {
			return m
		}
	}
	return nil
}

func (r compiledRequirement) missing(query string) *domain.MissingContext {
	var m *domain.MissingContext
	for _, f := range r.fields {
		if f.pattern.MatchString(query) {
			continue
		}
		if m == nil {
			m = &domain.MissingContext{Category: r.category}
		}
		m.MissingFields = append(m.MissingFields, f.key)
		m.FollowUpPrompts = append(m.FollowUpPrompts, f.prompt)
	}
	return m
}
