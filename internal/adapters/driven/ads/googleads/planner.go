package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/logger"
)

// Ensure Planner implements the interface.
var _ driven.KeywordIdeaSource = (*Planner)(nil)

const (
	// DefaultBaseURL is the Google Ads REST endpoint.
	DefaultBaseURL = "https://googleads.googleapis.com"

	// DefaultAPIVersion is the API version used in request paths.
	DefaultAPIVersion = "v17"

	defaultRetryAfter = 60 * time.Second
	maxResponseBytes  = 4 << 20
)

// Option configures a Planner.
type Option func(*Planner)

// WithBaseURL overrides the Ads API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(p *Planner) { p.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithTokenURL overrides the OAuth2 token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(p *Planner) { p.tokenURL = tokenURL }
}

// WithRateLimit sets the sustained request rate and burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(p *Planner) { p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// Planner is a keyword idea source backed by the Google Ads API.
type Planner struct {
	settings domain.AdsSettings
	baseURL  string
	tokenURL string
	limiter  *rate.Limiter

	clientOnce sync.Once
	httpClient *http.Client

	mu      sync.Mutex
	retryAt time.Time
}

// NewPlanner creates a planner. Credentials are checked when Ideas is called.
func NewPlanner(settings domain.AdsSettings, opts ...Option) *Planner {
	p := &Planner{
		settings: settings,
		baseURL:  DefaultBaseURL,
		tokenURL: "https://oauth2.googleapis.com/token",
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name identifies the source.
func (p *Planner) Name() domain.IdeaSource {
	return domain.IdeaSourceGoogleAds
}

// Ideas returns up to limit keyword ideas for seed.
func (p *Planner) Ideas(ctx context.Context, seed string, limit int) ([]domain.KeywordIdea, error) {
	if missing := p.settings.Missing(); len(missing) > 0 {
		return nil, &domain.ConfigurationError{Component: "google_ads", Missing: missing}
	}
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(p.buildRequest(seed, limit))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", p.settings.DeveloperToken)
	if login := customerID(p.settings.LoginCustomerID); login != "" {
		req.Header.Set("login-customer-id", login)
	}

	logger.Debug("Google Ads: generateKeywordIdeas for %q", seed)
	resp, err := p.client().Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: refresh access token: %s", domain.ErrUpstream, retrieveErr.ErrorCode)
		}
		return nil, fmt.Errorf("%w: google ads request: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, p.classify(err)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrUpstream, err)
	}
	parsed := ParseIdeasResponse(data, seed, limit)
	if !parsed.OK() {
		return nil, parsed.Err()
	}
	return parsed.Data, nil
}

// client lazily builds the OAuth2 client that refreshes access tokens.
func (p *Planner) client() *http.Client {
	p.clientOnce.Do(func() {
		cfg := &oauth2.Config{
			ClientID:     p.settings.ClientID,
			ClientSecret: p.settings.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: p.tokenURL},
		}
		ts := cfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: p.settings.RefreshToken})
		p.httpClient = oauth2.NewClient(context.Background(), ts)
		p.httpClient.Timeout = 30 * time.Second
	})
	return p.httpClient
}

// wait respects the 429 backoff, then the token bucket.
func (p *Planner) wait(ctx context.Context) error {
	p.mu.Lock()
	retryAt := p.retryAt
	p.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return p.limiter.Wait(ctx)
}

func (p *Planner) classify(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	switch gerr.Code {
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		if secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After")); convErr == nil && secs > 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
		p.mu.Lock()
		p.retryAt = time.Now().Add(retryAfter)
		p.mu.Unlock()
		return fmt.Errorf("%w: google ads: %w", domain.ErrRateLimited, gerr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: google ads rejected the credentials: %w", domain.ErrUpstream, gerr)
	default:
		return fmt.Errorf("%w: google ads: %w", domain.ErrUpstream, gerr)
	}
}

func (p *Planner) endpoint() string {
	return fmt.Sprintf("%s/%s/customers/%s:generateKeywordIdeas",
		p.baseURL, DefaultAPIVersion, customerID(p.settings.CustomerID))
}

type keywordSeed struct {
	Keywords []string `json:"keywords"`
}

type ideasRequest struct {
	Language           string      `json:"language"`
	GeoTargetConstants []string    `json:"geoTargetConstants"`
	KeywordPlanNetwork string      `json:"keywordPlanNetwork"`
	KeywordSeed        keywordSeed `json:"keywordSeed"`
	PageSize           int         `json:"pageSize,omitempty"`
}

func (p *Planner) buildRequest(seed string, limit int) ideasRequest {
	return ideasRequest{
		Language:           fmt.Sprintf("languageConstants/%d", p.settings.LanguageID),
		GeoTargetConstants: []string{fmt.Sprintf("geoTargetConstants/%d", p.settings.GeoTargetID)},
		KeywordPlanNetwork: "GOOGLE_SEARCH",
		KeywordSeed:        keywordSeed{Keywords: []string{seed}},
		PageSize:           limit,
	}
}

type ideaMetrics struct {
	AvgMonthlySearches     json.Number `json:"avgMonthlySearches"`
	Competition            string      `json:"competition"`
	HighTopOfPageBidMicros json.Number `json:"highTopOfPageBidMicros"`
}

type ideaResult struct {
	Text               string       `json:"text"`
	KeywordIdeaMetrics *ideaMetrics `json:"keywordIdeaMetrics"`
}

type ideasResponse struct {
	Results []ideaResult `json:"results"`
}

// ParseIdeasResponse converts a generateKeywordIdeas body into ideas for seed.
// The seed itself is skipped; at most limit ideas are returned when limit > 0.
func ParseIdeasResponse(body []byte, seed string, limit int) domain.ParsedResponse[[]domain.KeywordIdea] {
	var resp ideasResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Malformed[[]domain.KeywordIdea](fmt.Sprintf("decode response: %v", err))
	}

	ideas := make([]domain.KeywordIdea, 0, len(resp.Results))
	for _, r := range resp.Results {
		text := strings.TrimSpace(r.Text)
		if text == "" || strings.EqualFold(text, strings.TrimSpace(seed)) {
			continue
		}
		idea := domain.KeywordIdea{
			Keyword:        text,
			Description:    fmt.Sprintf("「%s」に関連するキーワード: %s", seed, text),
			Competition:    domain.CompetitionUnknown,
			RelevanceScore: domain.Relevance(text, seed),
			Intent:         domain.DetectIntent(text),
			Source:         domain.IdeaSourceGoogleAds,
		}
		if m := r.KeywordIdeaMetrics; m != nil {
			if n, err := m.AvgMonthlySearches.Int64(); err == nil {
				idea.MonthlySearches = n
			}
			idea.Competition = domain.ParseCompetition(m.Competition)
			if micros, err := m.HighTopOfPageBidMicros.Int64(); err == nil {
				idea.CPC = float64(micros) / 1e6
			}
		}
		ideas = append(ideas, idea)
		if limit > 0 && len(ideas) >= limit {
			break
		}
	}
	return domain.Success(ideas)
}

// customerID strips the dashes users copy from the Ads UI.
func customerID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}
