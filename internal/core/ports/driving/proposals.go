package driving

import (
	"context"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// ProposalService builds and inspects the pillar to cluster proposal table.
type ProposalService interface {
	// Propose rebuilds the table from the content store and persists it.
	// Concurrent calls are serialised.
	Propose(ctx context.Context) (*domain.ProposalRun, error)

	// Table returns the persisted table.
	Table(ctx context.Context) (*domain.ProposalTable, error)

	// Summary returns the last run summary.
	Summary(ctx context.Context) (*domain.ProposalSummary, error)

	// Reset clears the table and summary.
	Reset(ctx context.Context) error
}
