package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyBatchSize         = "enrich.batch_size"
	keyHeartbeatInterval = "enrich.heartbeat_interval"
	keyStallTimeout      = "enrich.stall_timeout"
	keyMaxRestarts       = "enrich.max_restarts"
	keyRestartBackoff    = "enrich.restart_backoff"
	keyMaxCitations      = "citation.max_citations"
	keyStorageDriver     = "storage.driver"
	keyDatabaseURL       = "storage.database_url"
	keyRedisURL          = "storage.redis_url"
	keyWebhookURL        = "alert.webhook_url"
	keyMetricsAddr       = "metrics.addr"
)

// Environment variables that override the config file.
const (
	EnvBatchSize         = "BATCH_SIZE"
	EnvHeartbeatInterval = "HEARTBEAT_INTERVAL"
	EnvStallTimeout      = "STALL_TIMEOUT"
	EnvMaxRestarts       = "MAX_RESTARTS"
	EnvRestartBackoff    = "RESTART_BACKOFF"
	EnvMaxCitations      = "MAX_CITATIONS"
	EnvStorageDriver     = "STORAGE_DRIVER"
	EnvDatabaseURL       = "DATABASE_URL"
	EnvRedisURL          = "REDIS_URL"
	EnvWebhookURL        = "ALERT_WEBHOOK_URL"
	EnvMetricsAddr       = "METRICS_ADDR"
)

// SettingsService manages application settings.
// Values are resolved as environment, then config file, then defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup. Useful for testing.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Enrichment: domain.EnrichmentSettings{
			BatchSize:         s.getInt(EnvBatchSize, keyBatchSize, defaults.Enrichment.BatchSize),
			HeartbeatInterval: s.getDuration(EnvHeartbeatInterval, keyHeartbeatInterval, defaults.Enrichment.HeartbeatInterval),
			StallTimeout:      s.getDuration(EnvStallTimeout, keyStallTimeout, defaults.Enrichment.StallTimeout),
			MaxRestarts:       s.getInt(EnvMaxRestarts, keyMaxRestarts, defaults.Enrichment.MaxRestarts),
			RestartBackoff:    s.getDuration(EnvRestartBackoff, keyRestartBackoff, defaults.Enrichment.RestartBackoff),
		},
		Citation: domain.CitationSettings{
			MaxCitations: s.getInt(EnvMaxCitations, keyMaxCitations, defaults.Citation.MaxCitations),
		},
		Storage: domain.StorageSettings{
			Driver:      s.getStorageDriver(defaults.Storage.Driver),
			DatabaseURL: s.getString(EnvDatabaseURL, keyDatabaseURL, ""),
			RedisURL:    s.getString(EnvRedisURL, keyRedisURL, ""),
		},
		Alert: domain.AlertSettings{
			WebhookURL: s.getString(EnvWebhookURL, keyWebhookURL, ""),
		},
		Metrics: domain.MetricsSettings{
			Addr: s.getString(EnvMetricsAddr, keyMetricsAddr, ""),
		},
	}

	return settings, nil
}

// Save persists application settings.
// Durations are stored as Go duration strings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyBatchSize, settings.Enrichment.BatchSize},
		{keyHeartbeatInterval, settings.Enrichment.HeartbeatInterval.String()},
		{keyStallTimeout, settings.Enrichment.StallTimeout.String()},
		{keyMaxRestarts, settings.Enrichment.MaxRestarts},
		{keyRestartBackoff, settings.Enrichment.RestartBackoff.String()},
		{keyMaxCitations, settings.Citation.MaxCitations},
		{keyStorageDriver, settings.Storage.Driver.String()},
		{keyDatabaseURL, settings.Storage.DatabaseURL},
		{keyRedisURL, settings.Storage.RedisURL},
		{keyWebhookURL, settings.Alert.WebhookURL},
		{keyMetricsAddr, settings.Metrics.Addr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("failed to save %s: %w", v.key, err)
		}
	}
	return nil
}

// Validate checks that the current settings can be used to run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	e := settings.Enrichment
	switch {
	case e.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be positive, got %d", domain.ErrInvalidInput, e.BatchSize)
	case e.HeartbeatInterval <= 0:
		return fmt.Errorf("%w: heartbeat interval must be positive", domain.ErrInvalidInput)
	case e.StallTimeout < e.HeartbeatInterval:
		return fmt.Errorf("%w: stall timeout %s is shorter than heartbeat interval %s",
			domain.ErrInvalidInput, e.StallTimeout, e.HeartbeatInterval)
	case e.MaxRestarts < 0:
		return fmt.Errorf("%w: max restarts must not be negative", domain.ErrInvalidInput)
	case settings.Citation.MaxCitations < 1:
		return fmt.Errorf("%w: max citations must be positive", domain.ErrInvalidInput)
	}

	if !settings.Storage.IsConfigured() {
		return fmt.Errorf(
			"storage driver %q requires DATABASE_URL to be set",
			settings.Storage.Driver.Description(),
		)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) env(name string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	v, ok := s.lookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (s *SettingsService) getString(envName, key, defaultVal string) string {
	if v, ok := s.env(envName); ok {
		return v
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(envName, key string, defaultVal int) int {
	if v, ok := s.env(envName); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

// getDuration accepts whole seconds or a Go duration string.
func (s *SettingsService) getDuration(envName, key string, defaultVal time.Duration) time.Duration {
	if v, ok := s.env(envName); ok {
		if d, err := parseSeconds(v); err == nil {
			return d
		}
	}
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case string:
		if d, err := parseSeconds(v); err == nil {
			return d
		}
	case int, int64:
		return time.Duration(s.configStore.GetInt(key)) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	}
	return defaultVal
}

func (s *SettingsService) getStorageDriver(defaultVal domain.StorageDriver) domain.StorageDriver {
	val := s.getString(EnvStorageDriver, keyStorageDriver, "")
	if val == "" {
		return defaultVal
	}
	driver := domain.StorageDriver(strings.ToLower(val))
	if !driver.IsValid() {
		return defaultVal
	}
	return driver
}

func parseSeconds(str string) (time.Duration, error) {
	if n, err := strconv.Atoi(str); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(str)
}
