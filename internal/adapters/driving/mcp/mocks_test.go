package mcp

import (
	"context"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

// mockCitationRanker is a mock implementation of driving.CitationRanker.
type mockCitationRanker struct {
	citations []domain.Citation
	preferred []domain.Citation

	gotQuery string
	gotMax   int
}

func (m *mockCitationRanker) Rank(_ []domain.SearchHit, query string, maxCitations int) []domain.Citation {
	m.gotQuery = query
	m.gotMax = maxCitations
	return m.citations
}

func (m *mockCitationRanker) PreferAuthoritative(_ []domain.Citation) []domain.Citation {
	return m.preferred
}

// mockContextGate is a mock implementation of driving.ContextGate.
type mockContextGate struct {
	missing *domain.MissingContext
}

func (m *mockContextGate) Evaluate(_, _ string) *domain.MissingContext {
	return m.missing
}

// mockAuthority is a mock implementation of driving.AuthorityResolver.
type mockAuthority struct {
	weights map[string]int
}

func (m *mockAuthority) Weight(source string) int {
	if w, ok := m.weights[source]; ok {
		return w
	}
	return domain.DefaultAuthorityWeight
}

// mockEnricher is a mock implementation of driving.Enricher.
type mockEnricher struct {
	state     *domain.ProcessState
	counts    domain.EnrichmentCounts
	err       error
	countsErr error
}

func (m *mockEnricher) Run(_ context.Context) error {
	return m.err
}

func (m *mockEnricher) Status(_ context.Context) (*domain.ProcessState, error) {
	return m.state, m.err
}

func (m *mockEnricher) Counts(_ context.Context) (domain.EnrichmentCounts, error) {
	return m.counts, m.countsErr
}

func validPorts() *Ports {
	return &Ports{
		Citations: &mockCitationRanker{},
		Gate:      &mockContextGate{},
		Authority: &mockAuthority{},
	}
}
