package driven

import (
	"context"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// AutocompleteClient queries a search engine's autocomplete endpoint.
// The result is a tagged variant so callers can tell a malformed
// payload from a failed call.
type AutocompleteClient interface {
	Complete(ctx context.Context, seed string) domain.ParsedResponse[[]string]
}

// KeywordIdeaSource produces related keywords with search metrics.
type KeywordIdeaSource interface {
	// Name identifies the source in results.
	Name() domain.IdeaSource

	// Ideas returns up to limit ideas for the seed keyword.
	// Returns a domain.ConfigurationError when credentials are incomplete.
	Ideas(ctx context.Context, seed string, limit int) ([]domain.KeywordIdea, error)
}

// NounExtractor tokenizes text and returns its nouns in order of appearance.
type NounExtractor interface {
	Nouns(text string) []string
}
