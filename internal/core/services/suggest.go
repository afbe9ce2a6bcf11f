package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/logger"
)

// Pattern fallbacks: the first few suffixes are appended to the seed and
// the first few prefixes are prepended to it.
var (
	fallbackSuffixes = []string{
		"とは", "メリット", "デメリット", "方法", "効果", "使い方", "選び方", "比較",
		"おすすめ", "料金", "口コミ", "レビュー", "評判", "特徴", "種類",
	}
	fallbackPrefixes = []string{
		"初心者", "簡単", "無料", "有料", "最新", "人気", "おすすめ", "安い", "高品質", "プロ",
	}
)

const (
	fallbackSuffixCount = 5
	fallbackPrefixCount = 3
)

// FallbackSuggestions builds pattern suggestions for a seed:
// "seed suffix" for the first suffixes, then "prefix seed".
func FallbackSuggestions(seed string) []string {
	out := make([]string, 0, fallbackSuffixCount+fallbackPrefixCount)
	for _, suffix := range fallbackSuffixes[:fallbackSuffixCount] {
		out = append(out, seed+" "+suffix)
	}
	for _, prefix := range fallbackPrefixes[:fallbackPrefixCount] {
		out = append(out, prefix+" "+seed)
	}
	return out
}

// SuggestionService turns seed keywords into autocomplete suggestions,
// padding thin or failed results with pattern fallbacks.
type SuggestionService struct {
	client   driven.AutocompleteClient
	settings domain.SuggestSettings
	limiter  *rate.Limiter
}

// NewSuggestionService creates a suggestion service. client may be nil,
// in which case only pattern fallbacks are returned.
func NewSuggestionService(client driven.AutocompleteClient, settings domain.SuggestSettings) *SuggestionService {
	limit := rate.Inf
	if settings.BatchDelay > 0 {
		limit = rate.Every(settings.BatchDelay)
	}
	return &SuggestionService{
		client:   client,
		settings: settings,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Suggest returns up to MaxResults distinct suggestions for seed.
func (s *SuggestionService) Suggest(ctx context.Context, seed string) ([]string, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, fmt.Errorf("%w: empty seed keyword", domain.ErrInvalidInput)
	}

	suggestions, source, err := RunStrategies(ctx,
		Strategy[[]string]{Name: "autocomplete", Try: func(ctx context.Context) ([]string, error) {
			return s.autocomplete(ctx, seed)
		}},
		Strategy[[]string]{Name: "patterns", Try: func(context.Context) ([]string, error) {
			return FallbackSuggestions(seed), nil
		}},
	)
	if err != nil {
		return nil, err
	}

	if source == "autocomplete" && len(suggestions) < s.settings.MinResults {
		logger.Debug("Only %d suggestions for %q, adding patterns", len(suggestions), seed)
		suggestions = append(suggestions, FallbackSuggestions(seed)...)
	}
	return capStrings(dedupeStrings(suggestions), s.settings.MaxResults), nil
}

// SuggestBatch suggests for every seed in raw, pacing upstream calls.
// On cancellation the suggestions gathered so far are returned with the error.
func (s *SuggestionService) SuggestBatch(ctx context.Context, raw string) ([]domain.SeedSuggestions, error) {
	seeds := ExtractKeywords(raw)
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: no seed keywords", domain.ErrInvalidInput)
	}

	results := make([]domain.SeedSuggestions, 0, len(seeds))
	for _, seed := range seeds {
		if err := s.limiter.Wait(ctx); err != nil {
			return results, err
		}
		suggestions, err := s.Suggest(ctx, seed)
		if err != nil {
			return results, err
		}
		results = append(results, domain.SeedSuggestions{Seed: seed, Suggestions: suggestions})
	}
	return results, nil
}

func (s *SuggestionService) autocomplete(ctx context.Context, seed string) ([]string, error) {
	if s.client == nil {
		return nil, &domain.ConfigurationError{Component: "autocomplete", Missing: []string{"suggest.endpoint"}}
	}
	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}

	resp := s.client.Complete(ctx, seed)
	switch resp.Status {
	case domain.ResponseSuccess:
		return capStrings(resp.Data, s.settings.PrimaryLimit), nil
	default:
		logger.Warn("Autocomplete for %q: %s (%s)", seed, resp.Status, resp.Reason)
		return nil, resp.Err()
	}
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func capStrings(values []string, n int) []string {
	if n > 0 && len(values) > n {
		return values[:n]
	}
	return values
}
