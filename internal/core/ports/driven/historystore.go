package driven

import (
	"context"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// LinkHistoryStore is the append-only log of inserted links.
type LinkHistoryStore interface {
	// Append records an insertion. ID and CreatedAt are assigned by the store
	// when zero.
	Append(ctx context.Context, entry *domain.LinkHistoryEntry) error

	// List returns entries whose source is documentID, oldest first.
	// An empty documentID lists every entry.
	List(ctx context.Context, documentID string) ([]domain.LinkHistoryEntry, error)
}
