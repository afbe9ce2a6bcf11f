package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// ProposeInput is the input schema for the propose tool.
type ProposeInput struct{}

// ProposeOutput summarises a proposal run.
type ProposeOutput struct {
	RunID          string   `json:"run_id"`
	PillarCount    int      `json:"pillar_count"`
	ClusterCount   int      `json:"cluster_count"`
	SkippedPillars []string `json:"skipped_pillars,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// DocumentInput names a single document.
type DocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document (post) ID"`
}

// LinkTextInput is the input schema for the generate_link_text tool.
type LinkTextInput struct {
	SourceID   string `json:"source_id" jsonschema:"the document that will contain the link"`
	TargetID   string `json:"target_id" jsonschema:"the document the link points to"`
	Regenerate bool   `json:"regenerate,omitempty" jsonschema:"ignore any previously generated text"`
}

// SuggestInput is the input schema for the suggest_keywords tool.
type SuggestInput struct {
	Seed string `json:"seed" jsonschema:"the seed keyword"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "propose",
		Description: "Rebuild the pillar to cluster proposal table from the content store",
	}, s.handlePropose)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "link_status",
		Description: "Show a document's cluster affiliation, link budget and eligible link targets",
	}, s.handleLinkStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_link_text",
		Description: "Draft one sentence containing a single link from the source to the target document",
	}, s.handleGenerateLinkText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest_keywords",
		Description: "Suggest related search keywords for a seed keyword",
	}, s.handleSuggestKeywords)
}

func (s *Server) handlePropose(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ProposeInput,
) (*mcp.CallToolResult, ProposeOutput, error) {
	run, err := s.ports.Proposals.Propose(ctx)
	if err != nil {
		return nil, ProposeOutput{}, err
	}
	return nil, ProposeOutput{
		RunID:          run.Summary.RunID,
		PillarCount:    run.Summary.PillarCount,
		ClusterCount:   run.Summary.ClusterCount,
		SkippedPillars: run.SkippedPillars,
		Warnings:       run.Warnings,
	}, nil
}

func (s *Server) handleLinkStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, domain.LinkStatus, error) {
	status, err := s.ports.Links.Status(ctx, input.DocumentID)
	if err != nil {
		return nil, domain.LinkStatus{}, err
	}
	return nil, *status, nil
}

func (s *Server) handleGenerateLinkText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LinkTextInput,
) (*mcp.CallToolResult, domain.GeneratedLinkText, error) {
	generate := s.ports.Links.GenerateLinkText
	if input.Regenerate {
		generate = s.ports.Links.RegenerateLinkText
	}
	text, err := generate(ctx, input.SourceID, input.TargetID)
	if err != nil {
		return nil, domain.GeneratedLinkText{}, err
	}
	return nil, *text, nil
}

func (s *Server) handleSuggestKeywords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, domain.SeedSuggestions, error) {
	if s.ports.Keywords == nil {
		return nil, domain.SeedSuggestions{}, ErrKeywordsUnavailable
	}
	suggestions, err := s.ports.Keywords.Suggest(ctx, input.Seed)
	if err != nil {
		return nil, domain.SeedSuggestions{}, err
	}
	return nil, domain.SeedSuggestions{Seed: input.Seed, Suggestions: suggestions}, nil
}
