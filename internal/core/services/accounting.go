package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/logger"
	"github.com/custodia-labs/clusterlink/internal/markup"
)

// LinkAccountant counts links from a document body to proposal table
// members and derives the remaining link budget.
type LinkAccountant struct {
	docStore driven.DocumentStore
	siteURL  *url.URL
}

// NewLinkAccountant creates an accountant. Relative hrefs are resolved
// against siteURL, or against the document's own permalink when empty.
func NewLinkAccountant(docStore driven.DocumentStore, siteURL string) *LinkAccountant {
	a := &LinkAccountant{docStore: docStore}
	if siteURL != "" {
		if u, err := url.Parse(siteURL); err == nil {
			a.siteURL = u
		}
	}
	return a
}

// MemberURLs maps the normalised permalink of every table member to its ID.
// Members missing from the content store are skipped.
func (a *LinkAccountant) MemberURLs(ctx context.Context, table *domain.ProposalTable) (map[string]string, error) {
	members := make(map[string]string)
	for _, id := range table.MemberIDs() {
		doc, err := a.docStore.GetDocument(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Proposal member %s no longer exists", id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: get member %s: %w", domain.ErrStoreUnavailable, id, err)
		}
		if key, ok := markup.NormalizeURL(a.siteURL, doc.Permalink); ok {
			members[key] = id
		}
	}
	return members, nil
}

// PointsTo reports whether href, as written in source, resolves to the
// permalink of target.
func (a *LinkAccountant) PointsTo(source, target *domain.Document, href string) bool {
	base := a.siteURL
	if base == nil && source.Permalink != "" {
		base, _ = url.Parse(source.Permalink)
	}
	got, ok := markup.NormalizeURL(base, href)
	if !ok {
		return false
	}
	want, ok := markup.NormalizeURL(a.siteURL, target.Permalink)
	return ok && got == want
}

// LinkedMembers returns the IDs of members linked from doc, each once, in
// the order first linked. Links to doc itself are ignored.
func (a *LinkAccountant) LinkedMembers(doc *domain.Document, members map[string]string) ([]string, error) {
	anchors, err := markup.Anchors(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: parse body of %s: %w", domain.ErrInvalidInput, doc.ID, err)
	}

	base := a.siteURL
	if base == nil && doc.Permalink != "" {
		base, _ = url.Parse(doc.Permalink)
	}

	seen := make(map[string]struct{})
	var linked []string
	for _, anchor := range anchors {
		key, ok := markup.NormalizeURL(base, anchor.Href)
		if !ok {
			continue
		}
		id, ok := members[key]
		if !ok || id == doc.ID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		linked = append(linked, id)
	}
	return linked, nil
}

// CountExistingLinks returns the number of distinct table members linked
// from the document body, capped at maxLinks.
func (a *LinkAccountant) CountExistingLinks(
	ctx context.Context,
	doc *domain.Document,
	table *domain.ProposalTable,
	maxLinks int,
) (int, error) {
	members, err := a.MemberURLs(ctx, table)
	if err != nil {
		return 0, err
	}
	linked, err := a.LinkedMembers(doc, members)
	if err != nil {
		return 0, err
	}
	return min(len(linked), max(maxLinks, 0)), nil
}

// Budget returns the document's remaining link slots.
func (a *LinkAccountant) Budget(
	ctx context.Context,
	doc *domain.Document,
	table *domain.ProposalTable,
	maxLinks int,
) (domain.LinkBudget, error) {
	existing, err := a.CountExistingLinks(ctx, doc, table, maxLinks)
	if err != nil {
		return domain.LinkBudget{}, err
	}
	return domain.NewLinkBudget(existing, maxLinks), nil
}
