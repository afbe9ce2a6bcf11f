package driving

import (
	"context"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// DocumentService reads documents from the content store and loads
// documents into local stores.
type DocumentService interface {
	// List returns documents matching the filter.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Import saves documents into a writable store and returns how many
	// were saved. Fails with domain.ErrConfiguration on read-only stores.
	Import(ctx context.Context, docs []domain.Document) (int, error)

	// Open opens the document's permalink in the default browser.
	Open(ctx context.Context, documentID string) error
}
