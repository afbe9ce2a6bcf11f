package services

import (
	"context"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driving"
)

// Ensure KeywordService implements the interface.
var _ driving.KeywordService = (*KeywordService)(nil)

// KeywordService groups the keyword planning features.
type KeywordService struct {
	suggestions *SuggestionService
	ideas       *KeywordIdeaService
	analyzer    *PillarAnalyzer
}

// NewKeywordService creates a new keyword service.
func NewKeywordService(suggestions *SuggestionService, ideas *KeywordIdeaService, analyzer *PillarAnalyzer) *KeywordService {
	return &KeywordService{suggestions: suggestions, ideas: ideas, analyzer: analyzer}
}

// Suggest returns suggestions for one seed.
func (s *KeywordService) Suggest(ctx context.Context, seed string) ([]string, error) {
	return s.suggestions.Suggest(ctx, seed)
}

// SuggestBatch returns suggestions for every seed in raw.
func (s *KeywordService) SuggestBatch(ctx context.Context, raw string) ([]domain.SeedSuggestions, error) {
	return s.suggestions.SuggestBatch(ctx, raw)
}

// Ideas returns related keywords with metrics.
func (s *KeywordService) Ideas(ctx context.Context, seed string) (*domain.KeywordIdeaResult, error) {
	return s.ideas.Ideas(ctx, seed)
}

// AnalysePillar proposes pillar keywords for a document.
func (s *KeywordService) AnalysePillar(ctx context.Context, documentID string) (*domain.PillarAnalysis, error) {
	return s.analyzer.Analyse(ctx, documentID)
}
