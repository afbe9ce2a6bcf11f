// Package openai provides an LLM service adapter using the OpenAI chat
// completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o"
	DefaultLLMTimeout = 60 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// LLMService provides chat completion using the OpenAI API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigurationError{Component: "openai", Missing: []string{"llm.api_key"}}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       s.model,
		Messages:    make([]chatCompletionMsg, len(messages)),
		MaxTokens:   max(opts.MaxTokens, 0),
		Temperature: max(opts.Temperature, 0),
	}
	for i, msg := range messages {
		reqBody.Messages[i] = chatCompletionMsg{Role: msg.Role, Content: msg.Content}
	}

	status, body, err := s.do(ctx, http.MethodPost, "/chat/completions", reqBody)
	if err != nil {
		return "", err
	}

	parsed := parseChatResponse(status, body)
	if !parsed.OK() {
		return "", fmt.Errorf("%w: openai: %s", statusError(status, parsed), parsed.Reason)
	}
	return parsed.Data, nil
}

// parseChatResponse classifies a /chat/completions reply.
func parseChatResponse(status int, body []byte) domain.ParsedResponse[string] {
	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if status != http.StatusOK {
			return domain.UpstreamFailure[string](fmt.Sprintf("status %d", status))
		}
		return domain.Malformed[string]("decode response: " + err.Error())
	}
	if chatResp.Error != nil {
		return domain.UpstreamFailure[string](fmt.Sprintf("status %d: %s", status, chatResp.Error.Message))
	}
	if status != http.StatusOK {
		return domain.UpstreamFailure[string](fmt.Sprintf("status %d: %s", status, string(body)))
	}
	if len(chatResp.Choices) == 0 {
		return domain.Malformed[string]("no response choices returned")
	}
	return domain.Success(chatResp.Choices[0].Message.Content)
}

func statusError(status int, parsed domain.ParsedResponse[string]) error {
	if status == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return parsed.Err()
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	status, body, err := s.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: openai: status %d: %s", domain.ErrUpstream, status, body)
	}
	return nil
}

// do sends an authenticated request and returns the raw reply.
// Transport failures are wrapped in domain.ErrUpstream.
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
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: openai: send request: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: openai: read response: %w", domain.ErrUpstream, err)
	}
	return resp.StatusCode, body, nil
}

// Close is a no-op; the HTTP client holds no resources.
func (s *LLMService) Close() error {
	return nil
}
