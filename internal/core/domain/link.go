package domain

import "time"

// DefaultMaxLinks is the default cap on proposal links per document.
const DefaultMaxLinks = 2

// LinkBudget is the number of additional proposal links a document may receive.
type LinkBudget struct {
	Existing  int `json:"existing"`
	Max       int `json:"max"`
	Remaining int `json:"remaining"`
}

// NewLinkBudget computes remaining = max - existing. Existing is clamped
// to [0, max], so a document with more member links than the cap reports
// max used slots and none remaining.
func NewLinkBudget(existing, maxLinks int) LinkBudget {
	maxLinks = max(maxLinks, 0)
	existing = min(max(existing, 0), maxLinks)
	return LinkBudget{Existing: existing, Max: maxLinks, Remaining: maxLinks - existing}
}

// Exhausted reports whether no further links may be inserted.
func (b LinkBudget) Exhausted() bool {
	return b.Remaining == 0
}

// LinkTextSource identifies which strategy produced a link fragment.
type LinkTextSource string

// Available link text sources.
const (
	LinkTextSourceAI       LinkTextSource = "ai"
	LinkTextSourceTemplate LinkTextSource = "template"
)

// GeneratedLinkText is an HTML fragment containing exactly one anchor.
type GeneratedLinkText struct {
	// HTML is the fragment to insert.
	HTML string `json:"html"`

	// Source is the strategy that produced the fragment.
	Source LinkTextSource `json:"source"`

	// Reason explains why an earlier strategy was skipped, if any.
	Reason string `json:"reason,omitempty"`
}

// LinkTarget is a document that may be linked from the current document.
type LinkTarget struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Permalink  string `json:"permalink"`
	Role       Role   `json:"role"`
	Score      int    `json:"score,omitempty"`
}

// LinkStatus summarises the linking situation of one document.
type LinkStatus struct {
	Affiliation Affiliation  `json:"affiliation"`
	Budget      LinkBudget   `json:"budget"`
	Linked      []LinkTarget `json:"linked"`
	Eligible    []LinkTarget `json:"eligible"`
}

// LinkHistoryEntry is one row of the append-only link insertion log.
type LinkHistoryEntry struct {
	ID               int64     `json:"id"`
	SourceDocumentID string    `json:"source_document_id"`
	TargetDocumentID string    `json:"target_document_id"`
	LinkText         string    `json:"link_text"`
	CreatedAt        time.Time `json:"created_at"`
}
