// Package ai selects and builds the chat completion adapter named by the
// LLM settings.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/clusterlink/internal/adapters/driven/llm/anthropic"
	openaillm "github.com/custodia-labs/clusterlink/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

// pingTimeout bounds the connectivity check run when settings change.
const pingTimeout = 5 * time.Second

// InitResult contains the result of LLM initialisation.
type InitResult struct {
	// LLMService is nil when no provider is configured or it failed to build.
	LLMService driven.LLMService
	Warnings   []string
}

// Close releases the LLM service, if any.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates the LLM service without pinging it. An unconfigured or
// broken LLM is reported as a warning; callers then run on template and
// tokenizer fallbacks.
func Init(settings *domain.LLMSettings) *InitResult {
	result := &InitResult{}
	svc, err := CreateLLMService(settings)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("%v: %v", domain.ErrLLMUnavailable, err))
	case svc == nil:
		result.Warnings = append(result.Warnings, "LLM not configured, using template link text")
	default:
		result.LLMService = svc
	}
	return result
}

// ValidateLLMConfig builds the configured service and pings it.
// Unconfigured settings are valid; the LLM is optional.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w. Run 'clusterlink settings llm' to fix", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable (%w). Run 'clusterlink settings llm' to fix",
			domain.ErrLLMUnavailable, settings.Provider, err)
	}
	return nil
}

// CreateLLMService creates the adapter for settings.Provider.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrInvalidInput, settings.Provider)
	}
}
