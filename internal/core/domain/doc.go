// Package domain defines the core business entities for clusterlink.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A content item (pillar or cluster candidate) from the content store
//   - ProposalTable: The persisted pillar to cluster mapping
//   - LinkBudget: How many more internal links a document may receive
//   - KeywordIdea: A keyword suggestion with search metrics
//   - ParsedResponse: The tagged result of parsing an external API response
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
