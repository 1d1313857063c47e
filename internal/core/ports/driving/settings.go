package driving

import "github.com/jlumbroso/ptonppl/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the current settings merged over the defaults.
	Get() (domain.Settings, error)

	// Set stores a single configuration value by dotted key.
	Set(key, value string) error

	// Keys returns every recognised configuration key.
	Keys() []string

	// Path returns the location of the configuration file.
	Path() string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
