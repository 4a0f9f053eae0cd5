package driving

import "github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	// Values come from the config file, overridden by the environment.
	Get() (*domain.AppSettings, error)

	// Save persists application settings to the config file.
	Save(settings *domain.AppSettings) error

	// Validate checks that the current settings can be used to run.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
