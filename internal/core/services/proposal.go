package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driving"
	"github.com/custodia-labs/clusterlink/internal/logger"
)

// Ensure ProposalBuilder implements the interface.
var _ driving.ProposalService = (*ProposalBuilder)(nil)

// ProposalBuilder scans pillar documents, scores candidate clusters and
// persists the resulting proposal table.
type ProposalBuilder struct {
	docStore      driven.DocumentStore
	proposalStore driven.ProposalStore
	settings      domain.LinkerSettings

	// mu serialises proposal runs.
	mu  sync.Mutex
	now func() time.Time
}

// NewProposalBuilder creates a new proposal builder.
func NewProposalBuilder(
	docStore driven.DocumentStore,
	proposalStore driven.ProposalStore,
	settings domain.LinkerSettings,
) *ProposalBuilder {
	return &ProposalBuilder{
		docStore:      docStore,
		proposalStore: proposalStore,
		settings:      settings,
		now:           time.Now,
	}
}

// Propose rebuilds the proposal table.
//
// Nothing is persisted unless every pillar was processed: a store error
// leaves the previous table in place.
func (b *ProposalBuilder) Propose(ctx context.Context) (*domain.ProposalRun, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	logger.Section("Propose")

	// 1. Find every document carrying pillar keywords
	pillars, err := b.docStore.FindDocuments(ctx, domain.DocumentFilter{
		Types:    b.settings.DocumentTypes,
		HasField: b.settings.KeywordField,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: find pillars: %w", domain.ErrStoreUnavailable, err)
	}

	run := &domain.ProposalRun{}
	if len(pillars) == 0 {
		logger.Info("No documents have %s set", b.settings.KeywordField)
		run.Warnings = append(run.Warnings, domain.ErrNoPillars.Error())
	}

	// 2. Score candidates for each pillar
	table := domain.NewProposalTable()
	for i := range pillars {
		pillar := &pillars[i]

		raw, err := b.docStore.GetField(ctx, pillar.ID, b.settings.KeywordField)
		if err != nil {
			return nil, fmt.Errorf("%w: read keywords of %s: %w", domain.ErrStoreUnavailable, pillar.ID, err)
		}
		keywords := ExtractKeywords(raw)
		if len(keywords) == 0 {
			logger.Debug("Skipping pillar %s: %v", pillar.ID, domain.ErrNoKeywords)
			run.SkippedPillars = append(run.SkippedPillars, pillar.ID)
			continue
		}

		candidates, err := b.rankCandidates(ctx, pillar.ID, keywords)
		if err != nil {
			return nil, err
		}
		logger.Debug("Pillar %s: %d keywords, %d candidates", pillar.ID, len(keywords), len(candidates))
		table.Set(pillar.ID, candidates)
	}

	// 3. Persist table and summary together
	run.Summary = domain.ProposalSummary{
		RunID:        uuid.New().String(),
		PillarCount:  table.PillarCount(),
		ClusterCount: table.ClusterCount(),
		CompletedAt:  b.now(),
	}
	if err := b.proposalStore.Replace(ctx, table, run.Summary); err != nil {
		return nil, fmt.Errorf("%w: save proposals: %w", domain.ErrStoreUnavailable, err)
	}

	logger.Info("Proposal complete: %d pillars, %d clusters", run.Summary.PillarCount, run.Summary.ClusterCount)
	return run, nil
}

// rankCandidates scores the candidate pool of one pillar. Equal scores
// are ordered by document ID so every store backend yields the same table.
func (b *ProposalBuilder) rankCandidates(
	ctx context.Context,
	pillarID string,
	keywords []string,
) ([]domain.ClusterCandidate, error) {
	pool, err := b.docStore.FindDocuments(ctx, domain.DocumentFilter{
		Types:      b.settings.DocumentTypes,
		ExcludeIDs: []string{pillarID},
		Newest:     true,
		Limit:      b.settings.CandidatePoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: find candidates for %s: %w", domain.ErrStoreUnavailable, pillarID, err)
	}

	candidates := []domain.ClusterCandidate{}
	for i := range pool {
		if pool[i].ID == pillarID {
			continue
		}
		if c := MatchCandidate(keywords, &pool[i]); c != nil {
			candidates = append(candidates, *c)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return domain.CompareDocumentIDs(candidates[i].ClusterID, candidates[j].ClusterID) < 0
	})
	return candidates, nil
}

// Table returns the persisted table.
func (b *ProposalBuilder) Table(ctx context.Context) (*domain.ProposalTable, error) {
	table, err := b.proposalStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load proposals: %w", domain.ErrStoreUnavailable, err)
	}
	return table, nil
}

// Summary returns the last run summary.
func (b *ProposalBuilder) Summary(ctx context.Context) (*domain.ProposalSummary, error) {
	summary, err := b.proposalStore.Summary(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load summary: %w", domain.ErrStoreUnavailable, err)
	}
	return summary, nil
}

// Reset clears the table and summary.
func (b *ProposalBuilder) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.proposalStore.Clear(ctx); err != nil {
		return fmt.Errorf("%w: clear proposals: %w", domain.ErrStoreUnavailable, err)
	}
	logger.Info("Proposals reset")
	return nil
}
