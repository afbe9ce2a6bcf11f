package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/markup"
)

const (
	// maxAnalysisRunes bounds the document text sent for analysis.
	maxAnalysisRunes = 1500

	// maxPillarKeywords caps keywords returned by an analysis.
	maxPillarKeywords = 8
)

// PillarAnalyzer proposes pillar keywords for an existing document.
type PillarAnalyzer struct {
	docStore driven.DocumentStore
	llm      driven.LLMService
	prompts  driven.PromptStore
	nouns    driven.NounExtractor
}

// NewPillarAnalyzer creates an analyzer. llm, prompts and nouns may be nil.
func NewPillarAnalyzer(
	docStore driven.DocumentStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
	nouns driven.NounExtractor,
) *PillarAnalyzer {
	return &PillarAnalyzer{docStore: docStore, llm: llm, prompts: prompts, nouns: nouns}
}

// Analyse asks the LLM for pillar keywords and falls back to the most
// frequent nouns of the document.
func (a *PillarAnalyzer) Analyse(ctx context.Context, documentID string) (*domain.PillarAnalysis, error) {
	doc, err := a.docStore.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("document %s: %w", documentID, err)
		}
		return nil, fmt.Errorf("%w: get document %s: %w", domain.ErrStoreUnavailable, documentID, err)
	}
	text := markup.PlainText(doc.Content, maxAnalysisRunes)

	analysis, _, err := RunStrategies(ctx,
		Strategy[domain.PillarAnalysis]{Name: "llm", Try: func(ctx context.Context) (domain.PillarAnalysis, error) {
			return a.analyseLLM(ctx, doc.Title, text)
		}},
		Strategy[domain.PillarAnalysis]{Name: "tokenizer", Try: func(context.Context) (domain.PillarAnalysis, error) {
			return a.analyseNouns(doc.Title + "\n" + text)
		}},
	)
	if err != nil {
		return nil, err
	}
	analysis.DocumentID = documentID
	return &analysis, nil
}

func (a *PillarAnalyzer) analyseLLM(ctx context.Context, title, text string) (domain.PillarAnalysis, error) {
	if a.llm == nil {
		return domain.PillarAnalysis{}, &domain.ConfigurationError{Component: "pillar analysis", Missing: []string{"llm.api_key"}}
	}
	prompt := fmt.Sprintf(loadPrompt(a.prompts, driven.PromptPillarAnalysis), title, text)
	reply, err := a.llm.Chat(ctx, []driven.ChatMessage{{Role: "user", Content: prompt}}, driven.ChatOptions{
		MaxTokens:   500,
		Temperature: 0.3,
	})
	if err != nil {
		return domain.PillarAnalysis{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	parsed := ParseAnalysisReply(reply)
	if !parsed.OK() {
		return domain.PillarAnalysis{}, parsed.Err()
	}
	return parsed.Data, nil
}

func (a *PillarAnalyzer) analyseNouns(text string) (domain.PillarAnalysis, error) {
	if a.nouns == nil {
		return domain.PillarAnalysis{}, &domain.ConfigurationError{Component: "tokenizer"}
	}
	counts := make(map[string]int)
	var order []string
	for _, n := range a.nouns.Nouns(text) {
		if utf8.RuneCountInString(n) < 2 {
			continue
		}
		if counts[n] == 0 {
			order = append(order, n)
		}
		counts[n]++
	}
	if len(order) == 0 {
		return domain.PillarAnalysis{}, fmt.Errorf("%w: document has no nouns", domain.ErrNoKeywords)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxPillarKeywords {
		order = order[:maxPillarKeywords]
	}
	return domain.PillarAnalysis{
		Keywords: order,
		Analysis: "本文の頻出名詞から抽出しました。",
		Source:   "tokenizer",
	}, nil
}

var quotedTerm = regexp.MustCompile(`「([^」]+)」|"([^"]+)"`)

// ParseAnalysisReply reads the JSON object in reply. When the reply is not
// JSON, quoted terms are taken as keywords and the text as the analysis.
func ParseAnalysisReply(reply string) domain.ParsedResponse[domain.PillarAnalysis] {
	var payload struct {
		Keywords        []string `json:"keywords"`
		Analysis        string   `json:"analysis"`
		PillarPotential string   `json:"pillar_potential"`
	}
	start, end := strings.Index(reply, "{"), strings.LastIndex(reply, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(reply[start:end+1]), &payload); err == nil {
			if len(payload.Keywords) == 0 {
				return domain.Malformed[domain.PillarAnalysis]("JSON reply has no keywords")
			}
			return domain.Success(domain.PillarAnalysis{
				Keywords:        capStrings(dedupeStrings(payload.Keywords), maxPillarKeywords),
				Analysis:        payload.Analysis,
				PillarPotential: payload.PillarPotential,
				Source:          "llm",
			})
		}
	}

	var keywords []string
	for _, m := range quotedTerm.FindAllStringSubmatch(reply, -1) {
		term := m[1]
		if term == "" {
			term = m[2]
		}
		keywords = append(keywords, term)
	}
	keywords = capStrings(dedupeStrings(keywords), maxPillarKeywords)
	if len(keywords) == 0 {
		return domain.Malformed[domain.PillarAnalysis]("no JSON object or quoted keywords in reply")
	}
	return domain.Success(domain.PillarAnalysis{
		Keywords: keywords,
		Analysis: strings.TrimSpace(reply),
		Source:   "llm",
	})
}
