package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driven/alert"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driven/cache/redis"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driven/config/file"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driven/metrics/prometheus"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driven/storage/memory"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driven/storage/postgres"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driven/storage/sqlite"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driving/cli"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/services"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// app holds the wired adapters and services for one process.
type app struct {
	settings *services.SettingsService
	config   *domain.AppSettings

	extractor *services.MetadataExtractor
	authority *services.AuthorityResolver
	gate      *services.MissingContextGate
	ranker    *services.CitationRanker

	records driven.RecordStore
	states  driven.ProcessStateStore
	seen    driven.SeenStore

	alerts  driven.AlertSink
	metrics *prometheus.Metrics

	closers []func() error
}

// newApp builds the application from the config file and environment.
// Storage failures are logged rather than returned so that commands which
// do not touch the store keep working.
func newApp(ctx context.Context, lookupEnv func(string) (string, bool)) (*app, error) {
	home, err := file.HomeDir()
	if err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	a := &app{
		settings:  services.NewSettingsService(configStore).WithEnv(lookupEnv),
		extractor: services.NewMetadataExtractor(),
	}

	a.config, err = a.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	ruleStore, err := file.NewRuleStore(filepath.Join(home, "rules"))
	if err != nil {
		return nil, fmt.Errorf("opening rules: %w", err)
	}
	a.wireRules(ruleStore)

	if err := a.wireStorage(ctx, home); err != nil {
		logger.Error("storage unavailable", "driver", a.config.Storage.Driver, "error", err)
	}
	a.wireAlerts()

	if a.config.Metrics.Addr != "" {
		a.metrics = prometheus.New()
	}

	return a, nil
}

// wireRules builds the query-time services from the rule tables.
// Unreadable rule files fall back to the built-in tables.
func (a *app) wireRules(rules driven.RuleStore) {
	authorityRules, err := rules.AuthorityRules()
	if err != nil {
		logger.Warn("using built-in authority rules", "error", err)
		authorityRules = nil
	}
	a.authority = services.NewAuthorityResolver(authorityRules)

	gateConfig, err := rules.GateConfig()
	if err != nil {
		logger.Warn("using built-in context requirements", "error", err)
		gateConfig = domain.DefaultGateConfig()
	}
	a.gate, err = services.NewMissingContextGate(gateConfig)
	if err != nil {
		logger.Warn("using built-in context requirements", "error", err)
		a.gate, _ = services.NewMissingContextGate(domain.DefaultGateConfig())
	}

	a.ranker = services.NewCitationRanker(a.extractor, a.authority)
}

// wireStorage opens the configured record store and the optional
// shared seen-hash cache.
func (a *app) wireStorage(ctx context.Context, home string) error {
	cfg := a.config.Storage

	switch cfg.Driver {
	case domain.StorageMemory:
		a.records = memory.NewRecordStore()
		a.states = memory.NewProcessStateStore()
		a.seen = memory.NewSeenStore()

	case domain.StoragePostgres:
		if !cfg.IsConfigured() {
			return fmt.Errorf("%w: postgres requires DATABASE_URL", domain.ErrStoreUnavailable)
		}
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, store.Close)
		a.records = store.RecordStore()
		a.states = store.ProcessStateStore()
		a.seen = store.SeenStore()

	default:
		store, err := sqlite.NewStore(filepath.Join(home, "data"))
		if err != nil {
			return err
		}
		a.closers = append(a.closers, store.Close)
		a.records = store.RecordStore()
		a.states = store.ProcessStateStore()
		a.seen = store.SeenStore()
	}

	if cfg.RedisURL != "" {
		rs, err := redis.NewSeenStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis seen cache unavailable, using store", "error", err)
			return nil
		}
		a.closers = append(a.closers, rs.Close)
		a.seen = rs
	}

	return nil
}

// wireAlerts picks the webhook sink when configured and the log sink otherwise.
func (a *app) wireAlerts() {
	a.alerts = alert.LogSink{}

	url := a.config.Alert.WebhookURL
	if url == "" {
		return
	}
	sink, err := alert.NewWebhookSink(url)
	if err != nil {
		logger.Warn("invalid alert webhook, alerts are logged", "error", err)
		return
	}
	a.alerts = sink
}

// newEnricher builds an executor for the given settings.
func (a *app) newEnricher(cfg domain.EnrichmentSettings, progress func(domain.ProcessState)) driving.Enricher {
	e := services.NewExecutor(a.records, a.states, a.extractor, cfg)
	e.SetAlertSink(a.alerts)
	if a.metrics != nil {
		e.SetMetrics(a.metrics)
	}
	e.SetProgressFunc(progress)
	return e
}

// Services returns the driving ports for the CLI.
func (a *app) Services() *cli.Services {
	s := &cli.Services{
		Citations: a.ranker,
		Gate:      a.gate,
		Authority: a.authority,
		Settings:  a.settings,
	}

	if a.records != nil {
		s.Ingestor = services.NewIngestService(a.records, a.seen)
		s.Enricher = a.newEnricher(a.config.Enrichment, nil)
		s.NewEnricher = a.newEnricher
	}

	if a.metrics != nil {
		addr := a.config.Metrics.Addr
		s.ServeMetrics = func(ctx context.Context) error {
			return a.metrics.Serve(ctx, addr)
		}
	}

	return s
}

// Close releases the stores in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
