package services

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyKeywordField  = "linker.keyword_field"
	keyDocumentTypes = "linker.document_types"
	keyMaxLinks      = "linker.max_links"
	keyPoolSize      = "linker.pool_size"
	keySiteURL       = "linker.site_url"

	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyLLMTimeout     = "llm.timeout_seconds"

	keySuggestEndpoint   = "suggest.endpoint"
	keySuggestLanguage   = "suggest.language"
	keySuggestCountry    = "suggest.country"
	keySuggestMinResults = "suggest.min_results"
	keySuggestMaxResults = "suggest.max_results"
	keySuggestDelay      = "suggest.batch_delay_ms"

	keyAdsDeveloperToken = "ads.developer_token"
	keyAdsClientID       = "ads.client_id"
	keyAdsClientSecret   = "ads.client_secret"
	keyAdsRefreshToken   = "ads.refresh_token"
	keyAdsCustomerID     = "ads.customer_id"
	keyAdsLoginCustomer  = "ads.login_customer_id"
	keyAdsLanguageID     = "ads.language_id"
	keyAdsGeoTargetID    = "ads.geo_target_id"

	keyStoreBackend  = "store.backend"
	keyWordPressURL  = "store.wordpress_url"
	keyWordPressUser = "store.wordpress_user"
	keyWordPressPass = "store.wordpress_app_password"
)

// settableKeys lists keys accepted by SetValue and how to parse them.
var settableKeys = map[string]func(string) (any, error){
	keyKeywordField:      parseString,
	keyDocumentTypes:     parseList,
	keyMaxLinks:          parseNonNegativeInt,
	keyPoolSize:          parsePositiveInt,
	keySiteURL:           parseURL,
	keyLLMProvider:       parseProvider,
	keyLLMModel:          parseString,
	keyLLMBaseURL:        parseURL,
	keyLLMAPIKey:         parseString,
	keyLLMTemperature:    parseFloat,
	keyLLMMaxTokens:      parsePositiveInt,
	keyLLMTimeout:        parsePositiveInt,
	keySuggestEndpoint:   parseURL,
	keySuggestLanguage:   parseString,
	keySuggestCountry:    parseString,
	keySuggestMinResults: parseNonNegativeInt,
	keySuggestMaxResults: parsePositiveInt,
	keySuggestDelay:      parseNonNegativeInt,
	keyAdsDeveloperToken: parseString,
	keyAdsClientID:       parseString,
	keyAdsClientSecret:   parseString,
	keyAdsRefreshToken:   parseString,
	keyAdsCustomerID:     parseCustomerID,
	keyAdsLoginCustomer:  parseCustomerID,
	keyAdsLanguageID:     parsePositiveInt,
	keyAdsGeoTargetID:    parsePositiveInt,
	keyStoreBackend:      parseBackend,
	keyWordPressURL:      parseURL,
	keyWordPressUser:     parseString,
	keyWordPressPass:     parseString,
}

// SettingsService builds the single AppSettings value from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
	validateLLM func(*domain.LLMSettings) error
}

// NewSettingsService creates a new settings service.
// validateLLM pings the provider and may be nil.
func NewSettingsService(configStore driven.ConfigStore, validateLLM func(*domain.LLMSettings) error) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validateLLM: validateLLM,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Linker: domain.LinkerSettings{
			KeywordField:        s.getString(keyKeywordField, d.Linker.KeywordField),
			DocumentTypes:       s.getStrings(keyDocumentTypes, d.Linker.DocumentTypes),
			MaxLinksPerDocument: s.getIntAllowZero(keyMaxLinks, d.Linker.MaxLinksPerDocument),
			CandidatePoolSize:   s.getInt(keyPoolSize, d.Linker.CandidatePoolSize),
			SiteURL:             s.configStore.GetString(keySiteURL),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(d.LLM.Provider),
			Model:       s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty selects the provider's endpoint
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
			Timeout:     s.getSeconds(keyLLMTimeout, d.LLM.Timeout),
		},
		Suggest: domain.SuggestSettings{
			Endpoint:     s.getString(keySuggestEndpoint, d.Suggest.Endpoint),
			Client:       d.Suggest.Client,
			Language:     s.getString(keySuggestLanguage, d.Suggest.Language),
			Country:      s.getString(keySuggestCountry, d.Suggest.Country),
			PrimaryLimit: d.Suggest.PrimaryLimit,
			MinResults:   s.getIntAllowZero(keySuggestMinResults, d.Suggest.MinResults),
			MaxResults:   s.getInt(keySuggestMaxResults, d.Suggest.MaxResults),
			BatchDelay:   s.getMillis(keySuggestDelay, d.Suggest.BatchDelay),
			Timeout:      d.Suggest.Timeout,
		},
		Ads: domain.AdsSettings{
			DeveloperToken:  s.configStore.GetString(keyAdsDeveloperToken),
			ClientID:        s.configStore.GetString(keyAdsClientID),
			ClientSecret:    s.configStore.GetString(keyAdsClientSecret),
			RefreshToken:    s.configStore.GetString(keyAdsRefreshToken),
			CustomerID:      s.configStore.GetString(keyAdsCustomerID),
			LoginCustomerID: s.configStore.GetString(keyAdsLoginCustomer),
			LanguageID:      int64(s.getInt(keyAdsLanguageID, int(d.Ads.LanguageID))),
			GeoTargetID:     int64(s.getInt(keyAdsGeoTargetID, int(d.Ads.GeoTargetID))),
			MaxIdeas:        d.Ads.MaxIdeas,
		},
		Store: domain.StoreSettings{
			Backend:           s.getBackend(d.Store.Backend),
			WordPressURL:      s.configStore.GetString(keyWordPressURL),
			WordPressUser:     s.configStore.GetString(keyWordPressUser),
			WordPressPassword: s.configStore.GetString(keyWordPressPass),
		},
	}

	return settings, nil
}

// Save persists application settings. Empty secrets are not written so an
// existing key is never cleared by accident.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyKeywordField, settings.Linker.KeywordField},
		{keyDocumentTypes, settings.Linker.DocumentTypes},
		{keyMaxLinks, settings.Linker.MaxLinksPerDocument},
		{keyPoolSize, settings.Linker.CandidatePoolSize},
		{keySiteURL, settings.Linker.SiteURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMTimeout, int(settings.LLM.Timeout / time.Second)},
		{keySuggestEndpoint, settings.Suggest.Endpoint},
		{keySuggestLanguage, settings.Suggest.Language},
		{keySuggestCountry, settings.Suggest.Country},
		{keySuggestMinResults, settings.Suggest.MinResults},
		{keySuggestMaxResults, settings.Suggest.MaxResults},
		{keySuggestDelay, int(settings.Suggest.BatchDelay / time.Millisecond)},
		{keyAdsCustomerID, settings.Ads.CustomerID},
		{keyAdsLoginCustomer, settings.Ads.LoginCustomerID},
		{keyAdsLanguageID, int(settings.Ads.LanguageID)},
		{keyAdsGeoTargetID, int(settings.Ads.GeoTargetID)},
		{keyStoreBackend, string(settings.Store.Backend)},
		{keyWordPressURL, settings.Store.WordPressURL},
		{keyWordPressUser, settings.Store.WordPressUser},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyLLMAPIKey:         settings.LLM.APIKey,
		keyAdsDeveloperToken: settings.Ads.DeveloperToken,
		keyAdsClientID:       settings.Ads.ClientID,
		keyAdsClientSecret:   settings.Ads.ClientSecret,
		keyAdsRefreshToken:   settings.Ads.RefreshToken,
		keyWordPressPass:     settings.Store.WordPressPassword,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetValue parses and stores a single key.
func (s *SettingsService) SetValue(key, value string) error {
	parse, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	v, err := parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return s.configStore.Set(key, v)
}

// SettableKeys returns the keys accepted by SetValue.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	return keys
}

// Keys returns the keys accepted by SetValue, sorted.
func (s *SettingsService) Keys() []string {
	keys := SettableKeys()
	slices.Sort(keys)
	return keys
}

// Validate checks the settings for inconsistent values.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if strings.TrimSpace(settings.Linker.KeywordField) == "" {
		return fmt.Errorf("%w: linker.keyword_field is empty", domain.ErrInvalidInput)
	}
	if len(settings.Linker.DocumentTypes) == 0 {
		return fmt.Errorf("%w: linker.document_types is empty", domain.ErrInvalidInput)
	}
	if settings.Suggest.MinResults > settings.Suggest.MaxResults {
		return fmt.Errorf("%w: suggest.min_results exceeds suggest.max_results", domain.ErrInvalidInput)
	}
	if settings.Store.Backend == domain.StoreBackendWordPress && settings.Store.WordPressURL == "" {
		return &domain.ConfigurationError{Component: "wordpress store", Missing: []string{keyWordPressURL}}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.validateLLM == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero distinguishes an explicit 0 from an unset key.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if v := s.configStore.GetInt(key); v > 0 {
		return time.Duration(v) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Millisecond
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	backend := domain.StoreBackend(s.configStore.GetString(keyStoreBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// Value parsers for SetValue.

func parseString(v string) (any, error) {
	return v, nil
}

func parseList(v string) (any, error) {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

func parseNonNegativeInt(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("must not be negative")
	}
	return n, nil
}

func parsePositiveInt(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("must be positive")
	}
	return n, nil
}

func parseFloat(v string) (any, error) {
	return strconv.ParseFloat(v, 64)
}

func parseURL(v string) (any, error) {
	if v == "" {
		return v, nil
	}
	u, err := url.Parse(v)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("must be an http(s) URL")
	}
	return v, nil
}

func parseProvider(v string) (any, error) {
	if !domain.AIProvider(v).IsValid() {
		return nil, fmt.Errorf("unknown provider %q", v)
	}
	return v, nil
}

func parseBackend(v string) (any, error) {
	if !domain.StoreBackend(v).IsValid() {
		return nil, fmt.Errorf("unknown backend %q", v)
	}
	return v, nil
}

// parseCustomerID accepts "123-456-7890" and stores digits only.
func parseCustomerID(v string) (any, error) {
	digits := strings.ReplaceAll(v, "-", "")
	if _, err := strconv.ParseUint(digits, 10, 64); err != nil {
		return nil, fmt.Errorf("customer id must be numeric")
	}
	return digits, nil
}
