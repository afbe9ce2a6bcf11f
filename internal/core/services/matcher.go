package services

import (
	"strings"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/markup"
)

// MatchCandidate scores a candidate document against a pillar's keywords.
//
// Markup is stripped and text lowercased before counting. For each keyword
// the score is the occurrences in body and excerpt plus TitleWeight times
// the occurrences in the title. Keywords with a zero score are left out of
// the result. Returns nil when no keyword matched.
func MatchCandidate(keywords []string, doc *domain.Document) *domain.ClusterCandidate {
	if doc == nil || len(keywords) == 0 {
		return nil
	}

	title := strings.ToLower(markup.StripTags(doc.Title))
	body := strings.ToLower(markup.StripTags(doc.Content) + " " + markup.StripTags(doc.Excerpt))

	candidate := &domain.ClusterCandidate{
		ClusterID: doc.ID,
		Details:   make(map[string]domain.MatchDetail),
	}
	for _, kw := range keywords {
		needle := strings.ToLower(kw)
		if needle == "" {
			continue
		}
		detail := domain.NewMatchDetail(strings.Count(body, needle), strings.Count(title, needle))
		if detail.Score == 0 {
			continue
		}
		candidate.MatchedKeywords = append(candidate.MatchedKeywords, kw)
		candidate.Details[kw] = detail
		candidate.Score += detail.Score
	}

	if candidate.Score == 0 {
		return nil
	}
	return candidate
}
