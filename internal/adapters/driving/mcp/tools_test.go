package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

func TestServer_handlePropose(t *testing.T) {
	ctx := context.Background()

	t.Run("returns run summary", func(t *testing.T) {
		proposals := &mockProposalService{
			run: &domain.ProposalRun{
				Summary: domain.ProposalSummary{
					RunID:        "run-1",
					PillarCount:  2,
					ClusterCount: 5,
					CompletedAt:  time.Now(),
				},
				SkippedPillars: []string{"7"},
			},
		}
		server := newTestServer(t, &Ports{Proposals: proposals})

		_, output, err := server.handlePropose(ctx, nil, ProposeInput{})

		require.NoError(t, err)
		assert.Equal(t, "run-1", output.RunID)
		assert.Equal(t, 2, output.PillarCount)
		assert.Equal(t, 5, output.ClusterCount)
		assert.Equal(t, []string{"7"}, output.SkippedPillars)
	})

	t.Run("propagates errors", func(t *testing.T) {
		proposals := &mockProposalService{err: domain.ErrStoreUnavailable}
		server := newTestServer(t, &Ports{Proposals: proposals})

		_, _, err := server.handlePropose(ctx, nil, ProposeInput{})

		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestServer_handleLinkStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("returns status", func(t *testing.T) {
		links := &mockLinkService{status: &domain.LinkStatus{
			Affiliation: domain.Affiliation{DocumentID: "10", IsPillar: true},
			Budget:      domain.NewLinkBudget(1, 2),
			Eligible:    []domain.LinkTarget{{DocumentID: "11", Role: domain.RoleCluster}},
		}}
		server := newTestServer(t, &Ports{Links: links})

		_, output, err := server.handleLinkStatus(ctx, nil, DocumentInput{DocumentID: "10"})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Budget.Remaining)
		require.Len(t, output.Eligible, 1)
		assert.Equal(t, "11", output.Eligible[0].DocumentID)
	})

	t.Run("not found", func(t *testing.T) {
		links := &mockLinkService{err: domain.ErrNotFound}
		server := newTestServer(t, &Ports{Links: links})

		_, _, err := server.handleLinkStatus(ctx, nil, DocumentInput{DocumentID: "99"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleGenerateLinkText(t *testing.T) {
	ctx := context.Background()

	links := &mockLinkService{
		text:        &domain.GeneratedLinkText{HTML: "<a href=\"/b\">b</a>", Source: domain.LinkTextSourceAI},
		regenerated: &domain.GeneratedLinkText{HTML: "<a href=\"/b\">other</a>", Source: domain.LinkTextSourceTemplate},
	}
	server := newTestServer(t, &Ports{Links: links})

	t.Run("generates", func(t *testing.T) {
		_, output, err := server.handleGenerateLinkText(ctx, nil, LinkTextInput{SourceID: "1", TargetID: "2"})

		require.NoError(t, err)
		assert.Equal(t, domain.LinkTextSourceAI, output.Source)
		assert.Equal(t, "1", links.lastSource)
		assert.Equal(t, "2", links.lastTarget)
	})

	t.Run("regenerate flag selects regeneration", func(t *testing.T) {
		_, output, err := server.handleGenerateLinkText(ctx, nil, LinkTextInput{SourceID: "1", TargetID: "2", Regenerate: true})

		require.NoError(t, err)
		assert.Equal(t, domain.LinkTextSourceTemplate, output.Source)
	})

	t.Run("budget exhausted", func(t *testing.T) {
		failing := newTestServer(t, &Ports{Links: &mockLinkService{err: domain.ErrLinkBudgetExhausted}})

		_, _, err := failing.handleGenerateLinkText(ctx, nil, LinkTextInput{SourceID: "1", TargetID: "2"})

		assert.ErrorIs(t, err, domain.ErrLinkBudgetExhausted)
	})
}

func TestServer_handleSuggestKeywords(t *testing.T) {
	ctx := context.Background()

	t.Run("no keyword service", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, _, err := server.handleSuggestKeywords(ctx, nil, SuggestInput{Seed: "水漏れ"})

		assert.ErrorIs(t, err, ErrKeywordsUnavailable)
	})

	t.Run("returns suggestions", func(t *testing.T) {
		keywords := &mockKeywordService{suggestions: []string{"水漏れ 修理", "水漏れ 費用"}}
		server := newTestServer(t, &Ports{Keywords: keywords})

		_, output, err := server.handleSuggestKeywords(ctx, nil, SuggestInput{Seed: "水漏れ"})

		require.NoError(t, err)
		assert.Equal(t, "水漏れ", output.Seed)
		assert.Len(t, output.Suggestions, 2)
	})

	t.Run("service error", func(t *testing.T) {
		keywords := &mockKeywordService{err: errors.New("boom")}
		server := newTestServer(t, &Ports{Keywords: keywords})

		_, _, err := server.handleSuggestKeywords(ctx, nil, SuggestInput{Seed: "x"})

		assert.Error(t, err)
	})
}
