package driven

import (
	"context"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// DocumentStore is the content store holding pillar and cluster documents.
// It is an external collaborator: the WordPress REST API in production,
// a local SQLite table for offline use.
type DocumentStore interface {
	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// FindDocuments returns documents matching the filter in a stable order.
	FindDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// GetField returns a custom field value, or "" when unset.
	GetField(ctx context.Context, id, name string) (string, error)

	// InsertContent appends an HTML fragment to a document's body.
	InsertContent(ctx context.Context, id, fragment string) error
}

// DocumentWriter stores documents. Only local stores implement it.
type DocumentWriter interface {
	// SaveDocument inserts or replaces a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error
}
