package domain

import "time"

const unknownDescription = "Unknown"

// StorageDriver selects the record store backend.
type StorageDriver string

// Available storage drivers.
const (
	// StorageSQLite is an embedded SQLite database under the data directory.
	StorageSQLite StorageDriver = "sqlite"

	// StoragePostgres is a PostgreSQL database reached via DATABASE_URL.
	StoragePostgres StorageDriver = "postgres"

	// StorageMemory keeps everything in process memory.
	StorageMemory StorageDriver = "memory"
)

// IsValid returns true if the storage driver is recognised.
func (d StorageDriver) IsValid() bool {
	switch d {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	default:
		return false
	}
}

// RequiresURL returns true if this driver needs a connection string.
func (d StorageDriver) RequiresURL() bool {
	return d == StoragePostgres
}

// String returns the string representation.
func (d StorageDriver) String() string {
	return string(d)
}

// Description returns a human-readable description of the driver.
func (d StorageDriver) Description() string {
	switch d {
	case StorageSQLite:
		return "SQLite (local file)"
	case StoragePostgres:
		return "PostgreSQL (server)"
	case StorageMemory:
		return "Memory (not persisted)"
	default:
		return unknownDescription
	}
}

// EnrichmentSettings configures the enrichment executor.
type EnrichmentSettings struct {
	// BatchSize is the number of records per cursor call.
	BatchSize int

	// HeartbeatInterval is the stall-check and state-persist cadence.
	HeartbeatInterval time.Duration

	// StallTimeout is how long without progress before a run is stalled.
	StallTimeout time.Duration

	// MaxRestarts is the ceiling on automatic restarts per run.
	MaxRestarts int

	// RestartBackoff is the pause before a restarted worker resumes.
	RestartBackoff time.Duration
}

// CitationSettings configures the citation ranker.
type CitationSettings struct {
	// MaxCitations is the number of citations returned per query.
	MaxCitations int
}

// StorageSettings selects and locates the backing stores.
type StorageSettings struct {
	// Driver is the record store backend.
	Driver StorageDriver

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// RedisURL enables the shared seen-hash cache when set.
	RedisURL string
}

// IsConfigured returns true if the driver has what it needs to connect.
func (s StorageSettings) IsConfigured() bool {
	if !s.Driver.IsValid() {
		return false
	}
	if s.Driver.RequiresURL() && s.DatabaseURL == "" {
		return false
	}
	return true
}

// AlertSettings configures the alert sink.
type AlertSettings struct {
	// WebhookURL receives alerts. Empty disables alerting.
	WebhookURL string
}

// MetricsSettings configures the metrics endpoint.
type MetricsSettings struct {
	// Addr is the listen address for /metrics. Empty disables it.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Enrichment EnrichmentSettings
	Citation   CitationSettings
	Storage    StorageSettings
	Alert      AlertSettings
	Metrics    MetricsSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Enrichment: EnrichmentSettings{
			BatchSize:         50,
			HeartbeatInterval: 30 * time.Second,
			StallTimeout:      300 * time.Second,
			MaxRestarts:       3,
			RestartBackoff:    10 * time.Second,
		},
		Citation: CitationSettings{
			MaxCitations: 8,
		},
		Storage: StorageSettings{
			Driver: StorageSQLite,
		},
	}
}

// AllStorageDrivers returns all available storage drivers.
func AllStorageDrivers() []StorageDriver {
	return []StorageDriver{
		StorageSQLite,
		StoragePostgres,
		StorageMemory,
	}
}
