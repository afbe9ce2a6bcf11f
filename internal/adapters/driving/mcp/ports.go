package mcp

import (
	"github.com/custodia-labs/clusterlink/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Proposals builds and reads the proposal table.
	Proposals driving.ProposalService

	// Links reports link status and generates link text.
	Links driving.LinkService

	// Keywords suggests keywords. Optional.
	Keywords driving.KeywordService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Proposals == nil {
		return ErrMissingProposalService
	}
	if p.Links == nil {
		return ErrMissingLinkService
	}
	return nil
}
