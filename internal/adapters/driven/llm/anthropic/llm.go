// Package anthropic provides an LLM service adapter using the Anthropic
// messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 60 * time.Second

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// defaultMaxTokens is sent when the caller sets no limit; the API requires one.
	defaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// LLMService provides chat completion using the Anthropic API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigurationError{Component: "anthropic", Missing: []string{"llm.api_key"}}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Chat conducts a multi-turn conversation. System messages are sent in
// the dedicated system field.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []string
	apiMessages := make([]messagesMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == "system" {
			system = append(system, msg.Content)
			continue
		}
		apiMessages = append(apiMessages, messagesMessage{Role: msg.Role, Content: msg.Content})
	}

	reqBody := messagesRequest{
		Model:       s.model,
		Messages:    apiMessages,
		MaxTokens:   opts.MaxTokens,
		System:      strings.Join(system, "\n\n"),
		Temperature: max(opts.Temperature, 0),
	}
	if reqBody.MaxTokens <= 0 {
		reqBody.MaxTokens = defaultMaxTokens
	}

	status, body, err := s.do(ctx, http.MethodPost, "/v1/messages", reqBody)
	if err != nil {
		return "", err
	}

	parsed := parseMessagesResponse(status, body)
	if !parsed.OK() {
		cause := parsed.Err()
		if status == http.StatusTooManyRequests {
			cause = domain.ErrRateLimited
		}
		return "", fmt.Errorf("%w: anthropic: %s", cause, parsed.Reason)
	}
	return parsed.Data, nil
}

// parseMessagesResponse concatenates the text blocks of a /v1/messages reply.
func parseMessagesResponse(status int, body []byte) domain.ParsedResponse[string] {
	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		if status != http.StatusOK {
			return domain.UpstreamFailure[string](fmt.Sprintf("status %d", status))
		}
		return domain.Malformed[string]("decode response: " + err.Error())
	}
	if msgResp.Error != nil {
		return domain.UpstreamFailure[string](fmt.Sprintf("status %d: %s", status, msgResp.Error.Message))
	}
	if status != http.StatusOK {
		return domain.UpstreamFailure[string](fmt.Sprintf("status %d", status))
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	if result.Len() == 0 {
		return domain.Malformed[string]("no text content returned")
	}
	return domain.Success(result.String())
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models to check the API key.
func (s *LLMService) Ping(ctx context.Context) error {
	status, body, err := s.do(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: anthropic: status %d: %s", domain.ErrUpstream, status, body)
	}
	return nil
}

func (s *LLMService) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: anthropic: send request: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: anthropic: read response: %w", domain.ErrUpstream, err)
	}
	return resp.StatusCode, body, nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
