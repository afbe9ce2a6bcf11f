package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a generative text API provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is OpenAI cloud API (or any compatible endpoint).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// AllLLMProviders returns providers that support chat completion.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOpenAI, AIProviderAnthropic}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// StoreBackend selects where documents are read from.
type StoreBackend string

// Available document store backends.
const (
	// StoreBackendSQLite keeps documents in the local database.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendWordPress reads documents over the WordPress REST API.
	StoreBackendWordPress StoreBackend = "wordpress"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	return b == StoreBackendSQLite || b == StoreBackendWordPress
}

// LinkerSettings controls proposal building and link accounting.
type LinkerSettings struct {
	// KeywordField is the custom field holding a pillar's keyword list.
	KeywordField string

	// DocumentTypes are the content types considered as pillars and clusters.
	DocumentTypes []string

	// MaxLinksPerDocument caps proposal links in a single document.
	MaxLinksPerDocument int

	// CandidatePoolSize bounds the candidates evaluated per pillar.
	CandidatePoolSize int

	// SiteURL resolves relative hrefs during link accounting.
	SiteURL string
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// APIKey is the API key.
	APIKey string

	// Temperature is the sampling temperature for link text.
	Temperature float64

	// MaxTokens bounds the link text response.
	MaxTokens int

	// Timeout bounds a single request.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.IsValid() && l.APIKey != ""
}

// SuggestSettings configures the autocomplete suggestion service.
type SuggestSettings struct {
	// Endpoint is the autocomplete URL.
	Endpoint string

	// Client is the autocomplete client parameter.
	Client string

	// Language and Country localise suggestions.
	Language string
	Country  string

	// PrimaryLimit caps suggestions taken from the autocomplete response.
	PrimaryLimit int

	// MinResults is the count below which pattern fallbacks are appended.
	MinResults int

	// MaxResults caps the final list.
	MaxResults int

	// BatchDelay paces successive calls in a batch.
	BatchDelay time.Duration

	// Timeout bounds a single request.
	Timeout time.Duration
}

// AdsSettings holds Google Ads keyword planner credentials.
type AdsSettings struct {
	DeveloperToken  string
	ClientID        string
	ClientSecret    string
	RefreshToken    string
	CustomerID      string
	LoginCustomerID string

	// LanguageID and GeoTargetID are Ads criterion IDs (1005 Japanese, 2392 Japan).
	LanguageID  int64
	GeoTargetID int64

	// MaxIdeas caps the merged keyword idea list.
	MaxIdeas int
}

// Missing returns the names of unset credentials.
func (a AdsSettings) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"developer_token", a.DeveloperToken},
		{"client_id", a.ClientID},
		{"client_secret", a.ClientSecret},
		{"refresh_token", a.RefreshToken},
		{"customer_id", a.CustomerID},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// IsConfigured returns true if every credential is present.
func (a AdsSettings) IsConfigured() bool {
	return len(a.Missing()) == 0
}

// StoreSettings selects and configures the document store.
type StoreSettings struct {
	Backend StoreBackend

	// WordPress REST settings (application password auth).
	WordPressURL      string
	WordPressUser     string
	WordPressPassword string
}

// AppSettings holds all application settings.
// It is built once and injected into every component.
type AppSettings struct {
	Linker  LinkerSettings
	LLM     LLMSettings
	Suggest SuggestSettings
	Ads     AdsSettings
	Store   StoreSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM and Ads credentials are left empty; features depending on
// them fall back until they are configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Linker: LinkerSettings{
			KeywordField:        "pillar_keywords",
			DocumentTypes:       []string{"post", "local_trouble"},
			MaxLinksPerDocument: DefaultMaxLinks,
			CandidatePoolSize:   50,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModels()[AIProviderOpenAI],
			Temperature: 0.7,
			MaxTokens:   200,
			Timeout:     30 * time.Second,
		},
		Suggest: SuggestSettings{
			Endpoint:     "https://suggestqueries.google.com/complete/search",
			Client:       "firefox",
			Language:     "ja",
			Country:      "jp",
			PrimaryLimit: 8,
			MinResults:   3,
			MaxResults:   10,
			BatchDelay:   500 * time.Millisecond,
			Timeout:      15 * time.Second,
		},
		Ads: AdsSettings{
			LanguageID:  1005,
			GeoTargetID: 2392,
			MaxIdeas:    20,
		},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
	}
}
