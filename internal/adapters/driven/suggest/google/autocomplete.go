// Package google queries the Google autocomplete endpoint for keyword suggestions.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.AutocompleteClient = (*Client)(nil)

const (
	defaultCacheSize = 256
	maxBodyBytes     = 1 << 20
	userAgent        = "Mozilla/5.0 (compatible; clusterlink)"
)

// Client calls the autocomplete endpoint and caches successful answers per seed.
type Client struct {
	endpoint   string
	client     string
	language   string
	country    string
	httpClient *http.Client
	cache      *lru.Cache[string, []string]
}

// NewClient creates an autocomplete client from settings.
func NewClient(settings domain.SuggestSettings) (*Client, error) {
	if settings.Endpoint == "" {
		return nil, &domain.ConfigurationError{Component: "autocomplete", Missing: []string{"suggest.endpoint"}}
	}
	if _, err := url.Parse(settings.Endpoint); err != nil {
		return nil, fmt.Errorf("%w: suggest.endpoint: %w", domain.ErrInvalidInput, err)
	}

	cache, err := lru.New[string, []string](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create autocomplete cache: %w", err)
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := settings.Client
	if client == "" {
		client = "firefox"
	}

	return &Client{
		endpoint:   settings.Endpoint,
		client:     client,
		language:   settings.Language,
		country:    settings.Country,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}, nil
}

// Complete returns the suggestions for seed.
func (c *Client) Complete(ctx context.Context, seed string) domain.ParsedResponse[[]string] {
	key := strings.ToLower(strings.TrimSpace(seed))
	if cached, ok := c.cache.Get(key); ok {
		logger.Debug("Autocomplete cache hit for %q", seed)
		return domain.Success(append([]string(nil), cached...))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(seed), nil)
	if err != nil {
		return domain.UpstreamFailure[[]string](fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.UpstreamFailure[[]string](fmt.Sprintf("send request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.UpstreamFailure[[]string](fmt.Sprintf("status %d", resp.StatusCode))
	}

	// Some locales answer in a legacy encoding declared in Content-Type.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return domain.UpstreamFailure[[]string](fmt.Sprintf("decode body: %v", err))
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return domain.UpstreamFailure[[]string](fmt.Sprintf("read body: %v", err))
	}

	parsed := ParseResponse(body)
	if parsed.OK() {
		c.cache.Add(key, append([]string(nil), parsed.Data...))
	}
	return parsed
}

func (c *Client) requestURL(seed string) string {
	params := url.Values{}
	params.Set("client", c.client)
	params.Set("q", seed)
	params.Set("ie", "utf-8")
	params.Set("oe", "utf-8")
	if c.language != "" {
		params.Set("hl", c.language)
	}
	if c.country != "" {
		params.Set("gl", c.country)
	}
	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep + params.Encode()
}

// ParseResponse reads the ["query", ["suggestion", ...], ...] payload.
// Blank suggestions are dropped. An empty list is a valid answer.
func ParseResponse(body []byte) domain.ParsedResponse[[]string] {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "[") {
		return domain.Malformed[[]string]("payload is not a JSON array")
	}

	var payload []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return domain.Malformed[[]string](fmt.Sprintf("decode payload: %v", err))
	}
	if len(payload) < 2 {
		return domain.Malformed[[]string]("payload has no suggestion list")
	}

	var raw []string
	if err := json.Unmarshal(payload[1], &raw); err != nil {
		return domain.Malformed[[]string](fmt.Sprintf("suggestion list: %v", err))
	}

	suggestions := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			suggestions = append(suggestions, s)
		}
	}
	return domain.Success(suggestions)
}
