package driven

import (
	"context"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// ProposalStore persists the proposal table and the last run summary.
// Replace must be atomic: readers observe either the previous table or
// the new one, never a partial write.
type ProposalStore interface {
	// Load returns a snapshot of the current table.
	// An empty table (not an error) is returned when nothing was stored.
	Load(ctx context.Context) (*domain.ProposalTable, error)

	// Replace swaps in a new table and summary in one step.
	Replace(ctx context.Context, table *domain.ProposalTable, summary domain.ProposalSummary) error

	// Clear removes the table and the summary.
	Clear(ctx context.Context) error

	// Summary returns the last run summary.
	// Returns domain.ErrNotFound if no run completed yet.
	Summary(ctx context.Context) (*domain.ProposalSummary, error)
}
