package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService reads and edits application settings.
type SettingsService interface {
	// Get resolves settings from configuration, environment and defaults.
	Get() (*domain.Settings, error)

	// Set validates and stores one setting given as text, then persists it.
	Set(key, value string) error

	// Lookup returns the configured text value of a setting.
	Lookup(key string) (string, bool)

	// Keys returns every recognised setting key, sorted.
	Keys() []string

	// Path returns where settings are persisted.
	Path() string
}
