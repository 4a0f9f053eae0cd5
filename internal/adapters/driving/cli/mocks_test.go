package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

// mockIngestor implements driving.Ingestor for testing.
type mockIngestor struct {
	err   error
	calls [][]domain.Record
}

func (m *mockIngestor) Ingest(_ context.Context, records []domain.Record) (domain.IngestResult, error) {
	m.calls = append(m.calls, records)
	result := domain.IngestResult{Received: len(records)}
	if m.err != nil {
		return result, m.err
	}
	for i := range records {
		if records[i].Validate() != nil {
			result.Invalid++
			continue
		}
		result.Inserted++
	}
	return result, nil
}

// mockEnricher implements driving.Enricher for testing.
type mockEnricher struct {
	runErr    error
	state     *domain.ProcessState
	counts    domain.EnrichmentCounts
	statusErr error
	countsErr error
	runs      int
}

func (m *mockEnricher) Run(_ context.Context) error {
	m.runs++
	return m.runErr
}

func (m *mockEnricher) Status(_ context.Context) (*domain.ProcessState, error) {
	return m.state, m.statusErr
}

func (m *mockEnricher) Counts(_ context.Context) (domain.EnrichmentCounts, error) {
	return m.counts, m.countsErr
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	saved       *domain.AppSettings
	getErr      error
	saveErr     error
	validateErr error
}

func newMockSettings() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	s := *settings
	m.saved = &s
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// mockCitationRanker implements driving.CitationRanker for testing.
type mockCitationRanker struct {
	citations []domain.Citation
	preferred []domain.Citation

	gotHits  []domain.SearchHit
	gotQuery string
	gotMax   int
}

func (m *mockCitationRanker) Rank(hits []domain.SearchHit, query string, maxCitations int) []domain.Citation {
	m.gotHits = hits
	m.gotQuery = query
	m.gotMax = maxCitations
	return m.citations
}

func (m *mockCitationRanker) PreferAuthoritative(_ []domain.Citation) []domain.Citation {
	return m.preferred
}

// mockContextGate implements driving.ContextGate for testing.
type mockContextGate struct {
	missing   *domain.MissingContext
	gotIntent string
}

func (m *mockContextGate) Evaluate(_, intent string) *domain.MissingContext {
	m.gotIntent = intent
	return m.missing
}

// mockAuthority implements driving.AuthorityResolver for testing.
type mockAuthority struct {
	weights map[string]int
}

func (m *mockAuthority) Weight(source string) int {
	if w, ok := m.weights[source]; ok {
		return w
	}
	return domain.DefaultAuthorityWeight
}

// setupServices injects services for the duration of a test.
func setupServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() {
		SetServices(nil)
	})
}

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return executeCommandContext(context.Background(), t, stdin, args...)
}

func executeCommandContext(ctx context.Context, t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// resetFlags restores every flag to its default so tests do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	// cobra only hands the root context to a subcommand whose context is nil,
	// so clear it or later tests keep the first test's context.
	cmd.SetContext(nil)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
