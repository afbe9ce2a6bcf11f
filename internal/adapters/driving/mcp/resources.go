package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for clusterlink resources.
	uriScheme = "clusterlink://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "proposals",
		Name:        "proposals",
		Description: "The current pillar to cluster proposal table and last run summary",
		MIMEType:    "application/json",
	}, s.handleProposalsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/links",
		Name:        "document-links",
		Description: "Link budget and eligible targets of a document",
		MIMEType:    "application/json",
	}, s.handleDocumentLinksResource)
}

type proposalsView struct {
	Summary *domain.ProposalSummary `json:"summary,omitempty"`
	Pillars []pillarView            `json:"pillars"`
}

type pillarView struct {
	PillarID string                    `json:"pillar_id"`
	Clusters []domain.ClusterCandidate `json:"clusters"`
}

// handleProposalsResource returns the proposal table as JSON.
func (s *Server) handleProposalsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	table, err := s.ports.Proposals.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading proposals: %w", err)
	}
	if table == nil {
		table = domain.NewProposalTable()
	}

	view := proposalsView{Pillars: make([]pillarView, 0, table.PillarCount())}
	summary, err := s.ports.Proposals.Summary(ctx)
	switch {
	case err == nil:
		view.Summary = summary
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("loading summary: %w", err)
	}
	for _, id := range table.Pillars {
		view.Pillars = append(view.Pillars, pillarView{PillarID: id, Clusters: table.Clusters(id)})
	}

	return jsonResult(req.Params.URI, view)
}

// handleDocumentLinksResource returns the link status of a document.
func (s *Server) handleDocumentLinksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	status, err := s.ports.Links.Status(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting link status: %w", err)
	}

	return jsonResult(req.Params.URI, status)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the ID from a URI like clusterlink://documents/{documentId}/links.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"
	const suffix = "/links"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
}
