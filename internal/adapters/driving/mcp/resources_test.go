package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid URI", uri: "clusterlink://documents/123/links", expected: "123"},
		{name: "missing suffix", uri: "clusterlink://documents/123", expected: ""},
		{name: "invalid prefix", uri: "file://documents/123/links", expected: ""},
		{name: "empty ID", uri: "clusterlink://documents//links", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleProposalsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("empty table without summary", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		result, err := server.handleProposalsResource(ctx, makeReadResourceRequest("clusterlink://proposals"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var view proposalsView
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &view))
		assert.Nil(t, view.Summary)
		assert.Empty(t, view.Pillars)
	})

	t.Run("table in pillar order", func(t *testing.T) {
		table := domain.NewProposalTable()
		table.Set("20", []domain.ClusterCandidate{{ClusterID: "21", Score: 4, MatchedKeywords: []string{"a"}}})
		table.Set("10", []domain.ClusterCandidate{{ClusterID: "11", Score: 3, MatchedKeywords: []string{"b"}}})
		proposals := &mockProposalService{
			table:   table,
			summary: &domain.ProposalSummary{RunID: "run-9", PillarCount: 2, ClusterCount: 2},
		}
		server := newTestServer(t, &Ports{Proposals: proposals})

		result, err := server.handleProposalsResource(ctx, makeReadResourceRequest("clusterlink://proposals"))

		require.NoError(t, err)
		var view proposalsView
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &view))
		require.NotNil(t, view.Summary)
		assert.Equal(t, "run-9", view.Summary.RunID)
		require.Len(t, view.Pillars, 2)
		assert.Equal(t, "20", view.Pillars[0].PillarID)
		assert.Equal(t, "21", view.Pillars[0].Clusters[0].ClusterID)
	})

	t.Run("summary failure", func(t *testing.T) {
		proposals := &mockProposalService{summaryErr: errors.New("disk gone")}
		server := newTestServer(t, &Ports{Proposals: proposals})

		_, err := server.handleProposalsResource(ctx, makeReadResourceRequest("clusterlink://proposals"))

		assert.ErrorContains(t, err, "loading summary")
	})
}

func TestServer_handleDocumentLinksResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns status", func(t *testing.T) {
		links := &mockLinkService{status: &domain.LinkStatus{
			Affiliation: domain.Affiliation{DocumentID: "5", ClusterOf: []string{"1"}},
			Budget:      domain.NewLinkBudget(2, 2),
		}}
		server := newTestServer(t, &Ports{Links: links})

		uri := "clusterlink://documents/5/links"
		result, err := server.handleDocumentLinksResource(ctx, makeReadResourceRequest(uri))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, uri, result.Contents[0].URI)

		var status domain.LinkStatus
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &status))
		assert.Equal(t, 0, status.Budget.Remaining)
		assert.Equal(t, []string{"1"}, status.Affiliation.ClusterOf)
	})

	t.Run("malformed URI", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, err := server.handleDocumentLinksResource(ctx, makeReadResourceRequest("clusterlink://documents/"))

		assert.Error(t, err)
	})

	t.Run("unknown document", func(t *testing.T) {
		server := newTestServer(t, &Ports{Links: &mockLinkService{err: domain.ErrNotFound}})

		_, err := server.handleDocumentLinksResource(ctx, makeReadResourceRequest("clusterlink://documents/404/links"))

		assert.Error(t, err)
	})

	t.Run("service failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Links: &mockLinkService{err: domain.ErrStoreUnavailable}})

		_, err := server.handleDocumentLinksResource(ctx, makeReadResourceRequest("clusterlink://documents/5/links"))

		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}
