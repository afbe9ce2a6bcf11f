package driving

import (
	"context"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// LinkService generates link fragments and enforces the per-document link cap.
type LinkService interface {
	// GenerateLinkText returns a fragment linking source to target.
	// A previously generated fragment for the same pair may be reused.
	GenerateLinkText(ctx context.Context, sourceID, targetID string) (*domain.GeneratedLinkText, error)

	// RegenerateLinkText always produces a fresh fragment.
	RegenerateLinkText(ctx context.Context, sourceID, targetID string) (*domain.GeneratedLinkText, error)

	// Budget returns the remaining link budget of a document.
	Budget(ctx context.Context, documentID string) (*domain.LinkBudget, error)

	// Status returns affiliation, budget and link targets of a document.
	Status(ctx context.Context, documentID string) (*domain.LinkStatus, error)

	// InsertLink appends a fragment to the source document and records it.
	// Returns domain.ErrLinkBudgetExhausted when the budget is used up.
	InsertLink(ctx context.Context, sourceID, targetID, fragment string) (*domain.LinkHistoryEntry, error)

	// History lists insertions made from a document.
	History(ctx context.Context, documentID string) ([]domain.LinkHistoryEntry, error)
}
