// Package mcp provides an MCP (Model Context Protocol) server adapter for clusterlink.
// It lets AI assistants rebuild proposals, inspect link budgets, draft link
// text and suggest keywords.
package mcp

import "errors"

var (
	// ErrMissingProposalService is returned when the proposal service is not provided.
	ErrMissingProposalService = errors.New("mcp: proposal service is required")

	// ErrMissingLinkService is returned when the link service is not provided.
	ErrMissingLinkService = errors.New("mcp: link service is required")

	// ErrKeywordsUnavailable is returned by keyword tools when no keyword service is wired.
	ErrKeywordsUnavailable = errors.New("mcp: keyword service not configured")
)
