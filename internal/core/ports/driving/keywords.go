package driving

import (
	"context"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// KeywordService suggests keywords for pillar planning.
type KeywordService interface {
	// Suggest returns autocomplete suggestions for one seed, padded with
	// pattern fallbacks. It never fails for a non-empty seed.
	Suggest(ctx context.Context, seed string) ([]string, error)

	// SuggestBatch splits raw into seeds and suggests for each, pacing calls.
	SuggestBatch(ctx context.Context, raw string) ([]domain.SeedSuggestions, error)

	// Ideas returns related keywords with metrics from the configured sources.
	Ideas(ctx context.Context, seed string) (*domain.KeywordIdeaResult, error)

	// AnalysePillar proposes pillar keywords for an existing document.
	AnalysePillar(ctx context.Context, documentID string) (*domain.PillarAnalysis, error)
}
