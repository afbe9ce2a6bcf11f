package memory

import (
	"context"
	"sync/atomic"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

// Ensure ProposalStore implements the interface.
var _ driven.ProposalStore = (*ProposalStore)(nil)

type proposalSnapshot struct {
	table   *domain.ProposalTable
	summary *domain.ProposalSummary
}

// ProposalStore keeps the proposal table behind an atomic pointer so
// readers always see a complete snapshot.
type ProposalStore struct {
	current atomic.Pointer[proposalSnapshot]

	// Err, when set, is returned by Replace. Used to simulate write failures.
	Err error
}

// NewProposalStore creates an empty proposal store.
func NewProposalStore() *ProposalStore {
	return &ProposalStore{}
}

// Load returns a copy of the current table.
func (s *ProposalStore) Load(_ context.Context) (*domain.ProposalTable, error) {
	snap := s.current.Load()
	if snap == nil {
		return domain.NewProposalTable(), nil
	}
	return cloneTable(snap.table), nil
}

// Replace swaps in a new table and summary.
func (s *ProposalStore) Replace(_ context.Context, table *domain.ProposalTable, summary domain.ProposalSummary) error {
	if s.Err != nil {
		return s.Err
	}
	s.current.Store(&proposalSnapshot{table: cloneTable(table), summary: &summary})
	return nil
}

// Clear removes the table and summary.
func (s *ProposalStore) Clear(_ context.Context) error {
	s.current.Store(nil)
	return nil
}

// Summary returns the last run summary.
func (s *ProposalStore) Summary(_ context.Context) (*domain.ProposalSummary, error) {
	snap := s.current.Load()
	if snap == nil || snap.summary == nil {
		return nil, domain.ErrNotFound
	}
	summary := *snap.summary
	return &summary, nil
}

func cloneTable(t *domain.ProposalTable) *domain.ProposalTable {
	out := domain.NewProposalTable()
	if t == nil {
		return out
	}
	for _, pillarID := range t.Pillars {
		src := t.Candidates[pillarID]
		candidates := make([]domain.ClusterCandidate, len(src))
		for i, c := range src {
			c.MatchedKeywords = append([]string(nil), c.MatchedKeywords...)
			details := make(map[string]domain.MatchDetail, len(c.Details))
			for k, v := range c.Details {
				details[k] = v
			}
			c.Details = details
			candidates[i] = c
		}
		out.Set(pillarID, candidates)
	}
	return out
}
