package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driving"
	"github.com/custodia-labs/clusterlink/internal/logger"
	"github.com/custodia-labs/clusterlink/internal/markup"
)

// Ensure LinkService implements the interface.
var _ driving.LinkService = (*LinkService)(nil)

// linkTextCacheSize bounds the generated fragments kept for reuse.
const linkTextCacheSize = 256

// LinkService coordinates link text generation, link accounting and
// insertion for a single document.
type LinkService struct {
	docStore   driven.DocumentStore
	proposals  driven.ProposalStore
	history    driven.LinkHistoryStore
	accountant *LinkAccountant
	generator  *LinkTextGenerator
	settings   domain.LinkerSettings

	cache *lru.Cache[string, domain.GeneratedLinkText]

	// mu makes the budget check and the insertion one step.
	mu  sync.Mutex
	now func() time.Time
}

// NewLinkService creates a new link service.
func NewLinkService(
	docStore driven.DocumentStore,
	proposals driven.ProposalStore,
	history driven.LinkHistoryStore,
	generator *LinkTextGenerator,
	settings domain.LinkerSettings,
) (*LinkService, error) {
	cache, err := lru.New[string, domain.GeneratedLinkText](linkTextCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create link text cache: %w", err)
	}
	return &LinkService{
		docStore:   docStore,
		proposals:  proposals,
		history:    history,
		accountant: NewLinkAccountant(docStore, settings.SiteURL),
		generator:  generator,
		settings:   settings,
		cache:      cache,
		now:        time.Now,
	}, nil
}

// GenerateLinkText returns a cached fragment for the pair when one exists.
func (s *LinkService) GenerateLinkText(ctx context.Context, sourceID, targetID string) (*domain.GeneratedLinkText, error) {
	if cached, ok := s.cache.Get(cacheKey(sourceID, targetID)); ok {
		logger.Debug("Reusing link text for %s -> %s", sourceID, targetID)
		return &cached, nil
	}
	return s.RegenerateLinkText(ctx, sourceID, targetID)
}

// RegenerateLinkText produces a fresh fragment and replaces the cached one.
func (s *LinkService) RegenerateLinkText(ctx context.Context, sourceID, targetID string) (*domain.GeneratedLinkText, error) {
	source, err := s.getDocument(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.getDocument(ctx, targetID)
	if err != nil {
		return nil, err
	}

	result := s.generator.Generate(ctx, source.Content, target.Title, target.Permalink)
	if result.Source != domain.LinkTextSourceAI {
		logger.Info("Link text for %s -> %s from %s: %s", sourceID, targetID, result.Source, result.Reason)
	}
	s.cache.Add(cacheKey(sourceID, targetID), result)
	return &result, nil
}

// Budget returns the remaining link budget of a document.
func (s *LinkService) Budget(ctx context.Context, documentID string) (*domain.LinkBudget, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	table, err := s.loadTable(ctx)
	if err != nil {
		return nil, err
	}
	budget, err := s.accountant.Budget(ctx, doc, table, s.settings.MaxLinksPerDocument)
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// Status returns affiliation, budget and link targets of a document.
// Eligible targets are the document's clusters (when it is a pillar) and
// its pillars (when it is a cluster) that are not linked yet. No target
// is eligible once the budget is used up.
func (s *LinkService) Status(ctx context.Context, documentID string) (*domain.LinkStatus, error) {
	doc, err := s.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	table, err := s.loadTable(ctx)
	if err != nil {
		return nil, err
	}

	members, err := s.accountant.MemberURLs(ctx, table)
	if err != nil {
		return nil, err
	}
	linked, err := s.accountant.LinkedMembers(doc, members)
	if err != nil {
		return nil, err
	}

	status := &domain.LinkStatus{
		Affiliation: table.Affiliation(documentID),
		Budget:      domain.NewLinkBudget(len(linked), s.settings.MaxLinksPerDocument),
	}

	for _, id := range linked {
		if t, ok := s.target(ctx, id, roleIn(table, id), 0); ok {
			status.Linked = append(status.Linked, t)
		}
	}
	if status.Budget.Exhausted() {
		return status, nil
	}

	for _, c := range table.Clusters(documentID) {
		if c.ClusterID == documentID || slices.Contains(linked, c.ClusterID) {
			continue
		}
		if t, ok := s.target(ctx, c.ClusterID, domain.RoleCluster, c.Score); ok {
			status.Eligible = append(status.Eligible, t)
		}
	}
	for _, pillarID := range status.Affiliation.ClusterOf {
		if slices.Contains(linked, pillarID) {
			continue
		}
		if t, ok := s.target(ctx, pillarID, domain.RolePillar, 0); ok {
			status.Eligible = append(status.Eligible, t)
		}
	}
	return status, nil
}

// InsertLink appends fragment to the source document and records it.
func (s *LinkService) InsertLink(ctx context.Context, sourceID, targetID, fragment string) (*domain.LinkHistoryEntry, error) {
	anchor, ok := markup.SingleAnchor(fragment)
	if !ok {
		return nil, fmt.Errorf("%w: fragment must contain exactly one link", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	budget, err := s.Budget(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if budget.Exhausted() {
		return nil, fmt.Errorf("%w: %d of %d links used", domain.ErrLinkBudgetExhausted, budget.Existing, budget.Max)
	}
	target, err := s.getDocument(ctx, targetID)
	if err != nil {
		return nil, err
	}
	source, err := s.getDocument(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if !s.accountant.PointsTo(source, target, anchor.Href) {
		return nil, fmt.Errorf("%w: link %q does not point to document %s", domain.ErrInvalidInput, anchor.Href, targetID)
	}

	if err := s.docStore.InsertContent(ctx, sourceID, fragment); err != nil {
		return nil, fmt.Errorf("%w: insert into %s: %w", domain.ErrStoreUnavailable, sourceID, err)
	}

	entry := &domain.LinkHistoryEntry{
		SourceDocumentID: sourceID,
		TargetDocumentID: targetID,
		LinkText:         fragment,
		CreatedAt:        s.now(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		// the content is already updated; report but do not fail the insertion
		logger.Warn("Failed to record link history for %s -> %s: %v", sourceID, targetID, err)
	}
	s.cache.Remove(cacheKey(sourceID, targetID))

	logger.Info("Inserted link %s -> %s", sourceID, targetID)
	return entry, nil
}

// History lists insertions made from a document.
func (s *LinkService) History(ctx context.Context, documentID string) ([]domain.LinkHistoryEntry, error) {
	entries, err := s.history.List(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: list history: %w", domain.ErrStoreUnavailable, err)
	}
	return entries, nil
}

func (s *LinkService) getDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		return nil, fmt.Errorf("%w: get document %s: %w", domain.ErrStoreUnavailable, id, err)
	}
	return doc, nil
}

func (s *LinkService) loadTable(ctx context.Context) (*domain.ProposalTable, error) {
	table, err := s.proposals.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load proposals: %w", domain.ErrStoreUnavailable, err)
	}
	return table, nil
}

func (s *LinkService) target(ctx context.Context, id string, role domain.Role, score int) (domain.LinkTarget, bool) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		logger.Debug("Skipping link target %s: %v", id, err)
		return domain.LinkTarget{}, false
	}
	return domain.LinkTarget{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Permalink:  doc.Permalink,
		Role:       role,
		Score:      score,
	}, true
}

func roleIn(table *domain.ProposalTable, id string) domain.Role {
	return table.Affiliation(id).Role()
}

func cacheKey(sourceID, targetID string) string {
	return sourceID + "->" + targetID
}
