package domain

import (
	"slices"
	"time"
)

// MatchDetail records how often one keyword occurred in a candidate.
type MatchDetail struct {
	// ContentOccurrences counts matches in the body and excerpt.
	ContentOccurrences int `json:"content_count"`

	// TitleOccurrences counts matches in the title.
	TitleOccurrences int `json:"title_count"`

	// Score is ContentOccurrences + TitleWeight*TitleOccurrences.
	Score int `json:"score"`
}

// TitleWeight is the multiplier applied to keyword hits in a title.
const TitleWeight = 3

// NewMatchDetail builds a detail with its score computed.
func NewMatchDetail(content, title int) MatchDetail {
	return MatchDetail{
		ContentOccurrences: content,
		TitleOccurrences:   title,
		Score:              content + TitleWeight*title,
	}
}

// ClusterCandidate is a document proposed as a cluster for a pillar.
type ClusterCandidate struct {
	// ClusterID is the candidate document ID.
	ClusterID string `json:"cluster_id"`

	// MatchedKeywords lists keywords with a non-zero score, in keyword order.
	MatchedKeywords []string `json:"matched_keywords"`

	// Score is the sum of per-keyword scores. Always > 0.
	Score int `json:"score"`

	// Details maps each matched keyword to its occurrence counts.
	Details map[string]MatchDetail `json:"match_details"`
}

// ProposalTable maps pillar documents to their ranked cluster candidates.
// It is the persisted result of a proposal run and is replaced wholesale.
type ProposalTable struct {
	// Pillars lists pillar IDs in the order they were evaluated.
	Pillars []string `json:"pillars"`

	// Candidates maps pillar ID to candidates sorted by descending score.
	Candidates map[string][]ClusterCandidate `json:"candidates"`
}

// NewProposalTable returns an empty table.
func NewProposalTable() *ProposalTable {
	return &ProposalTable{Candidates: make(map[string][]ClusterCandidate)}
}

// Set stores the candidates for a pillar, replacing any previous entry.
func (t *ProposalTable) Set(pillarID string, candidates []ClusterCandidate) {
	if t.Candidates == nil {
		t.Candidates = make(map[string][]ClusterCandidate)
	}
	if _, ok := t.Candidates[pillarID]; !ok {
		t.Pillars = append(t.Pillars, pillarID)
	}
	if candidates == nil {
		candidates = []ClusterCandidate{}
	}
	t.Candidates[pillarID] = candidates
}

// Clusters returns the candidates for a pillar, or nil when it is not a pillar.
func (t *ProposalTable) Clusters(pillarID string) []ClusterCandidate {
	if t == nil {
		return nil
	}
	return t.Candidates[pillarID]
}

// IsPillar reports whether id has an entry in the table.
func (t *ProposalTable) IsPillar(id string) bool {
	if t == nil {
		return false
	}
	_, ok := t.Candidates[id]
	return ok
}

// PillarCount returns the number of pillar entries.
func (t *ProposalTable) PillarCount() int {
	if t == nil {
		return 0
	}
	return len(t.Candidates)
}

// ClusterCount returns the total number of candidates across all pillars.
func (t *ProposalTable) ClusterCount() int {
	if t == nil {
		return 0
	}
	total := 0
	for _, c := range t.Candidates {
		total += len(c)
	}
	return total
}

// MemberIDs returns every pillar and cluster ID in the table, without duplicates.
func (t *ProposalTable) MemberIDs() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, pillarID := range t.Pillars {
		add(pillarID)
		for _, c := range t.Candidates[pillarID] {
			add(c.ClusterID)
		}
	}
	return ids
}

// Affiliation reports how a document relates to the table.
func (t *ProposalTable) Affiliation(docID string) Affiliation {
	a := Affiliation{DocumentID: docID}
	if t == nil {
		return a
	}
	a.IsPillar = t.IsPillar(docID)
	for _, pillarID := range t.Pillars {
		if slices.ContainsFunc(t.Candidates[pillarID], func(c ClusterCandidate) bool {
			return c.ClusterID == docID
		}) {
			a.ClusterOf = append(a.ClusterOf, pillarID)
		}
	}
	return a
}

// Role classifies a document within the proposal table.
type Role string

// Available roles.
const (
	RolePillar       Role = "pillar"
	RoleCluster      Role = "cluster"
	RoleUnaffiliated Role = "unaffiliated"
)

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// Affiliation describes a document's membership in the proposal table.
// A document can be a pillar and a cluster of another pillar at once.
type Affiliation struct {
	DocumentID string   `json:"document_id"`
	IsPillar   bool     `json:"is_pillar"`
	ClusterOf  []string `json:"cluster_of,omitempty"`
}

// Role returns the primary role. Pillar takes precedence over cluster.
func (a Affiliation) Role() Role {
	switch {
	case a.IsPillar:
		return RolePillar
	case len(a.ClusterOf) > 0:
		return RoleCluster
	default:
		return RoleUnaffiliated
	}
}

// ProposalSummary holds the counters recorded after a successful run.
type ProposalSummary struct {
	RunID        string    `json:"run_id"`
	PillarCount  int       `json:"pillar_count"`
	ClusterCount int       `json:"cluster_count"`
	CompletedAt  time.Time `json:"completed_at"`
}

// ProposalRun is the outcome of a single proposal build.
type ProposalRun struct {
	Summary ProposalSummary

	// SkippedPillars lists pillars whose keyword field yielded no tokens.
	SkippedPillars []string

	// Warnings are informational messages (e.g. no pillars found).
	Warnings []string
}
