package mcp

import (
	"context"
	"testing"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driving"
)

// mockProposalService is a mock implementation of driving.ProposalService.
type mockProposalService struct {
	run        *domain.ProposalRun
	table      *domain.ProposalTable
	summary    *domain.ProposalSummary
	err        error
	summaryErr error
}

func (m *mockProposalService) Propose(_ context.Context) (*domain.ProposalRun, error) {
	return m.run, m.err
}

func (m *mockProposalService) Table(_ context.Context) (*domain.ProposalTable, error) {
	if m.table == nil && m.err == nil {
		return domain.NewProposalTable(), nil
	}
	return m.table, m.err
}

func (m *mockProposalService) Summary(_ context.Context) (*domain.ProposalSummary, error) {
	if m.summary == nil && m.summaryErr == nil {
		return nil, domain.ErrNotFound
	}
	return m.summary, m.summaryErr
}

func (m *mockProposalService) Reset(_ context.Context) error {
	return m.err
}

// mockLinkService is a mock implementation of driving.LinkService.
type mockLinkService struct {
	status      *domain.LinkStatus
	text        *domain.GeneratedLinkText
	regenerated *domain.GeneratedLinkText
	err         error

	lastSource string
	lastTarget string
}

func (m *mockLinkService) GenerateLinkText(_ context.Context, sourceID, targetID string) (*domain.GeneratedLinkText, error) {
	m.lastSource, m.lastTarget = sourceID, targetID
	return m.text, m.err
}

func (m *mockLinkService) RegenerateLinkText(_ context.Context, sourceID, targetID string) (*domain.GeneratedLinkText, error) {
	m.lastSource, m.lastTarget = sourceID, targetID
	return m.regenerated, m.err
}

func (m *mockLinkService) Budget(_ context.Context, _ string) (*domain.LinkBudget, error) {
	if m.status == nil {
		return nil, m.err
	}
	return &m.status.Budget, m.err
}

func (m *mockLinkService) Status(_ context.Context, _ string) (*domain.LinkStatus, error) {
	return m.status, m.err
}

func (m *mockLinkService) InsertLink(_ context.Context, sourceID, targetID, fragment string) (*domain.LinkHistoryEntry, error) {
	return &domain.LinkHistoryEntry{SourceDocumentID: sourceID, TargetDocumentID: targetID, LinkText: fragment}, m.err
}

func (m *mockLinkService) History(_ context.Context, _ string) ([]domain.LinkHistoryEntry, error) {
	return nil, m.err
}

// mockKeywordService is a mock implementation of driving.KeywordService.
type mockKeywordService struct {
	suggestions []string
	err         error
}

func (m *mockKeywordService) Suggest(_ context.Context, _ string) ([]string, error) {
	return m.suggestions, m.err
}

func (m *mockKeywordService) SuggestBatch(_ context.Context, _ string) ([]domain.SeedSuggestions, error) {
	return nil, m.err
}

func (m *mockKeywordService) Ideas(_ context.Context, seed string) (*domain.KeywordIdeaResult, error) {
	return &domain.KeywordIdeaResult{Seed: seed}, m.err
}

func (m *mockKeywordService) AnalysePillar(_ context.Context, documentID string) (*domain.PillarAnalysis, error) {
	return &domain.PillarAnalysis{DocumentID: documentID}, m.err
}

// Ensure mocks implement interfaces.
var (
	_ driving.ProposalService = (*mockProposalService)(nil)
	_ driving.LinkService     = (*mockLinkService)(nil)
	_ driving.KeywordService  = (*mockKeywordService)(nil)
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Proposals == nil {
		ports.Proposals = &mockProposalService{}
	}
	if ports.Links == nil {
		ports.Links = &mockLinkService{}
	}
	server, err := NewServer(ports)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return server
}
