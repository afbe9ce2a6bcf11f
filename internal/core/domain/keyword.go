package domain

import "strings"

// Competition is the advertiser competition level of a keyword.
type Competition string

// Available competition levels.
const (
	CompetitionUnknown Competition = "unknown"
	CompetitionLow     Competition = "low"
	CompetitionMedium  Competition = "medium"
	CompetitionHigh    Competition = "high"
)

// ParseCompetition normalises a competition value from an upstream source.
// It accepts the Ads enum names, their numeric codes (1-3) and the
// Japanese labels 低/中/高.
func ParseCompetition(s string) Competition {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "1", "low", "低":
		return CompetitionLow
	case "2", "medium", "中":
		return CompetitionMedium
	case "3", "high", "高":
		return CompetitionHigh
	}
	switch {
	case strings.Contains(v, "低"):
		return CompetitionLow
	case strings.Contains(v, "高"):
		return CompetitionHigh
	case strings.Contains(v, "中"):
		return CompetitionMedium
	default:
		return CompetitionUnknown
	}
}

// Label returns the Japanese display label.
func (c Competition) Label() string {
	switch c {
	case CompetitionLow:
		return "低"
	case CompetitionMedium:
		return "中"
	case CompetitionHigh:
		return "高"
	default:
		return "-"
	}
}

// SearchIntent classifies why a user searches for a keyword.
type SearchIntent string

// Available search intents.
const (
	IntentInformational SearchIntent = "informational"
	IntentCommercial    SearchIntent = "commercial"
	IntentTransactional SearchIntent = "transactional"
)

var (
	transactionalCues = []string{"購入", "買う", "申し込み", "申込", "予約", "注文", "通販", "価格", "料金", "値段", "安い", "buy", "price", "order"}
	commercialCues    = []string{"おすすめ", "比較", "ランキング", "口コミ", "レビュー", "評判", "選び方", "人気", "best", "review", " vs"}
	informationalCues = []string{"とは", "方法", "やり方", "使い方", "意味", "原因", "理由", "how", "what", "why"}
)

// DetectIntent infers a search intent from cue words in the keyword.
// Transactional cues win over commercial ones; the default is informational.
func DetectIntent(keyword string) SearchIntent {
	k := strings.ToLower(keyword)
	switch {
	case containsAny(k, transactionalCues):
		return IntentTransactional
	case containsAny(k, commercialCues):
		return IntentCommercial
	default:
		return IntentInformational
	}
}

// ParseIntent maps a free-text intent label (Japanese or English) to an intent.
// Unrecognised labels fall back to DetectIntent on the keyword.
func ParseIntent(label, keyword string) SearchIntent {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(l, "transaction"), strings.Contains(l, "購入"), strings.Contains(l, "取引"):
		return IntentTransactional
	case strings.Contains(l, "commercial"), strings.Contains(l, "比較"), strings.Contains(l, "商業"):
		return IntentCommercial
	case strings.Contains(l, "informational"), strings.Contains(l, "情報"):
		return IntentInformational
	default:
		return DetectIntent(keyword)
	}
}

func containsAny(s string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}

// IdeaSource identifies the upstream that produced a keyword idea.
type IdeaSource string

// Available idea sources.
const (
	IdeaSourceGoogleAds IdeaSource = "google_ads"
	IdeaSourceLLM       IdeaSource = "llm"
)

// KeywordIdea is a related keyword with optional search metrics.
type KeywordIdea struct {
	Keyword         string       `json:"keyword"`
	Description     string       `json:"description,omitempty"`
	MonthlySearches int64        `json:"monthly_searches"`
	Competition     Competition  `json:"competition"`
	CPC             float64      `json:"cpc,omitempty"`
	RelevanceScore  int          `json:"relevance_score"`
	Intent          SearchIntent `json:"intent"`
	Source          IdeaSource   `json:"source"`
}

// Relevance scores an idea against the pillar keyword.
// Ideas containing the whole pillar keyword score 90; otherwise the
// score is 70 plus up to 20 for the share of pillar words present.
func Relevance(idea, pillarKeyword string) int {
	idea = strings.ToLower(strings.TrimSpace(idea))
	pillarKeyword = strings.ToLower(strings.TrimSpace(pillarKeyword))
	if pillarKeyword == "" {
		return 70
	}
	if strings.Contains(idea, pillarKeyword) {
		return 90
	}
	words := strings.Fields(pillarKeyword)
	hits := 0
	for _, w := range words {
		if strings.Contains(idea, w) {
			hits++
		}
	}
	return 70 + hits*20/len(words)
}

// KeywordIdeaResult is the merged output of the keyword idea chain.
type KeywordIdeaResult struct {
	Seed        string        `json:"seed"`
	Ideas       []KeywordIdea `json:"ideas"`
	SourcesUsed []IdeaSource  `json:"sources_used"`
	Errors      []string      `json:"errors,omitempty"`
}

// SeedSuggestions pairs a seed keyword with its autocomplete suggestions.
type SeedSuggestions struct {
	Seed        string   `json:"seed"`
	Suggestions []string `json:"suggestions"`
}

// PillarAnalysis is the result of analysing a document for pillar keywords.
type PillarAnalysis struct {
	DocumentID      string   `json:"document_id"`
	Keywords        []string `json:"keywords"`
	Analysis        string   `json:"analysis"`
	PillarPotential string   `json:"pillar_potential"`
	Source          string   `json:"source"`
}
