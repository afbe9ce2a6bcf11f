package driving

import "github.com/custodia-labs/clusterlink/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetValue stores a single dotted configuration key.
	SetValue(key, value string) error

	// Keys returns the keys accepted by SetValue, sorted.
	Keys() []string

	// Validate checks the settings for inconsistent values.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
