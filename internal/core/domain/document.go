package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Document represents a content item held by the content store.
// Pillars and clusters are both documents; their role is derived from
// the proposal table, not stored on the document.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Type is the content type (e.g. "post", "local_trouble").
	Type string

	// Title is the human-readable title.
	Title string

	// Content is the body markup.
	Content string

	// Excerpt is the optional summary text.
	Excerpt string

	// Permalink is the canonical public URL of the document.
	Permalink string

	// Status is the publication status reported by the store.
	Status string

	// Fields holds custom fields such as the pillar keyword field.
	Fields map[string]string

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// Field returns the named custom field, or "" when absent.
func (d *Document) Field(name string) string {
	if d == nil || d.Fields == nil {
		return ""
	}
	return d.Fields[name]
}

// DocumentFilter selects documents from the content store.
// Zero values mean "no restriction".
type DocumentFilter struct {
	// Types restricts results to these content types.
	Types []string

	// ExcludeIDs removes these documents from the results.
	ExcludeIDs []string

	// HasField restricts results to documents with a non-empty custom field.
	HasField string

	// Newest orders results by most recent UpdatedAt first instead of by ID,
	// so a Limit keeps the latest documents.
	Newest bool

	// Limit bounds the number of results. Zero means unlimited.
	Limit int
}

// Arrange sorts docs in place in the filter's order and truncates them to
// Limit. Documents updated at the same instant fall back to ID order.
func (f DocumentFilter) Arrange(docs []Document) []Document {
	slices.SortFunc(docs, func(a, b Document) int {
		if f.Newest {
			if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
				return c
			}
		}
		return CompareDocumentIDs(a.ID, b.ID)
	})
	if f.Limit > 0 && len(docs) > f.Limit {
		docs = docs[:f.Limit]
	}
	return docs
}

// Matches reports whether doc satisfies the filter, ignoring Limit.
func (f DocumentFilter) Matches(doc *Document) bool {
	if doc == nil {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, doc.Type) {
		return false
	}
	if slices.Contains(f.ExcludeIDs, doc.ID) {
		return false
	}
	if f.HasField != "" && doc.Field(f.HasField) == "" {
		return false
	}
	return true
}

// CompareDocumentIDs orders IDs numerically when both are numbers
// (WordPress post IDs) and lexically otherwise. Stores use it to return
// documents in a stable order.
// Leading zeros do not change a numeric value; "007" and "7" are ordered
// by their raw text only to keep the order total.
func CompareDocumentIDs(a, b string) int {
	if isDigits(a) && isDigits(b) {
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if c := cmp.Compare(len(ta), len(tb)); c != 0 {
			return c
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
