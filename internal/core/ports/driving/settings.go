package driving

import "github.com/custodia-labs/minirag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its dotted key.
	Set(key, value string) error

	// Reset removes a stored setting so its default applies again.
	Reset(key string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
