package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestStorageDriver_IsValid tests all valid and invalid storage drivers
func TestStorageDriver_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		driver   StorageDriver
		expected bool
	}{
		{"sqlite is valid", StorageSQLite, true},
		{"postgres is valid", StoragePostgres, true},
		{"memory is valid", StorageMemory, true},
		{"empty string is invalid", StorageDriver(""), false},
		{"unknown driver is invalid", StorageDriver("mysql"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.driver.IsValid())
		})
	}
}

func TestStorageDriver_Description(t *testing.T) {
	for _, d := range AllStorageDrivers() {
		assert.NotEqual(t, unknownDescription, d.Description(), d.String())
	}
	assert.Equal(t, unknownDescription, StorageDriver("mysql").Description())
}

func TestStorageSettings_IsConfigured(t *testing.T) {
	assert.True(t, StorageSettings{Driver: StorageSQLite}.IsConfigured())
	assert.False(t, StorageSettings{Driver: StoragePostgres}.IsConfigured())
	assert.True(t, StorageSettings{Driver: StoragePostgres, DatabaseURL: "postgres://x"}.IsConfigured())
	assert.False(t, StorageSettings{Driver: "bogus"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 50, s.Enrichment.BatchSize)
	assert.Equal(t, 30*time.Second, s.Enrichment.HeartbeatInterval)
	assert.Equal(t, 300*time.Second, s.Enrichment.StallTimeout)
	assert.Equal(t, 3, s.Enrichment.MaxRestarts)
	assert.Equal(t, 10*time.Second, s.Enrichment.RestartBackoff)
	assert.Equal(t, 8, s.Citation.MaxCitations)
	assert.Equal(t, StorageSQLite, s.Storage.Driver)
	assert.Empty(t, s.Alert.WebhookURL)
	assert.Empty(t, s.Metrics.Addr)
}
