package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/logger"
)

// defaultMaxIdeas caps the merged idea list when settings leave it unset.
const defaultMaxIdeas = 20

// KeywordIdeaService merges related keywords from an ordered list of
// sources. Later sources are only asked when earlier ones did not fill
// the list.
type KeywordIdeaService struct {
	sources  []driven.KeywordIdeaSource
	maxIdeas int
}

// NewKeywordIdeaService creates an idea service. Nil sources are ignored.
func NewKeywordIdeaService(maxIdeas int, sources ...driven.KeywordIdeaSource) *KeywordIdeaService {
	if maxIdeas <= 0 {
		maxIdeas = defaultMaxIdeas
	}
	s := &KeywordIdeaService{maxIdeas: maxIdeas}
	for _, src := range sources {
		if src != nil {
			s.sources = append(s.sources, src)
		}
	}
	return s
}

// Ideas returns ideas ordered by relevance to the seed.
// When every source fails the result still carries the per-source errors.
func (s *KeywordIdeaService) Ideas(ctx context.Context, seed string) (*domain.KeywordIdeaResult, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, fmt.Errorf("%w: empty seed keyword", domain.ErrInvalidInput)
	}

	result := &domain.KeywordIdeaResult{Seed: seed, Ideas: []domain.KeywordIdea{}}
	seen := make(map[string]struct{})
	var errs []error

	for _, src := range s.sources {
		if len(result.Ideas) >= s.maxIdeas {
			break
		}
		ideas, err := src.Ideas(ctx, seed, s.maxIdeas)
		if err != nil {
			var cfgErr *domain.ConfigurationError
			if errors.As(err, &cfgErr) {
				logger.Debug("Skipping %s: %v", src.Name(), err)
			} else {
				logger.Warn("Keyword ideas from %s failed: %v", src.Name(), err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", src.Name(), err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		added := 0
		for _, idea := range ideas {
			key := strings.ToLower(strings.TrimSpace(idea.Keyword))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result.Ideas = append(result.Ideas, enrichIdea(idea, seed, src.Name()))
			added++
		}
		if added > 0 {
			result.SourcesUsed = append(result.SourcesUsed, src.Name())
		}
	}

	sort.SliceStable(result.Ideas, func(i, j int) bool {
		return result.Ideas[i].RelevanceScore > result.Ideas[j].RelevanceScore
	})
	if len(result.Ideas) > s.maxIdeas {
		result.Ideas = result.Ideas[:s.maxIdeas]
	}

	if len(result.Ideas) == 0 && len(errs) > 0 {
		return result, fmt.Errorf("%w: %w", ErrNoStrategy, errors.Join(errs...))
	}
	return result, nil
}

func enrichIdea(idea domain.KeywordIdea, seed string, source domain.IdeaSource) domain.KeywordIdea {
	idea.Keyword = strings.TrimSpace(idea.Keyword)
	if idea.RelevanceScore == 0 {
		idea.RelevanceScore = domain.Relevance(idea.Keyword, seed)
	}
	if idea.Intent == "" {
		idea.Intent = domain.DetectIntent(idea.Keyword)
	}
	if idea.Competition == "" {
		idea.Competition = domain.CompetitionUnknown
	}
	if idea.Source == "" {
		idea.Source = source
	}
	return idea
}

// Ensure LLMIdeaSource implements the interface.
var _ driven.KeywordIdeaSource = (*LLMIdeaSource)(nil)

// LLMIdeaSource asks the LLM for related keywords.
type LLMIdeaSource struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewLLMIdeaSource creates an LLM backed idea source. llm may be nil.
func NewLLMIdeaSource(llm driven.LLMService, prompts driven.PromptStore) *LLMIdeaSource {
	return &LLMIdeaSource{llm: llm, prompts: prompts}
}

// Name identifies the source.
func (s *LLMIdeaSource) Name() domain.IdeaSource {
	return domain.IdeaSourceLLM
}

// Ideas asks for limit ideas and parses the pipe-delimited reply.
func (s *LLMIdeaSource) Ideas(ctx context.Context, seed string, limit int) ([]domain.KeywordIdea, error) {
	if s.llm == nil {
		return nil, &domain.ConfigurationError{Component: "llm keyword ideas", Missing: []string{"llm.api_key"}}
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptKeywordIdeas), seed, limit)
	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{{Role: "user", Content: prompt}}, driven.ChatOptions{
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	parsed := ParseIdeaLines(reply)
	if !parsed.OK() {
		return nil, parsed.Err()
	}
	return parsed.Data, nil
}

var (
	listMarker = regexp.MustCompile(`^\s*(?:\d+\s*[.)．、:]|[-*・])\s*`)
	nonDigits  = regexp.MustCompile(`[^0-9]`)
)

// ParseIdeaLines parses lines of the form
// "N. keyword|description|monthly searches|competition|intent".
// Lines without a pipe are ignored.
func ParseIdeaLines(reply string) domain.ParsedResponse[[]domain.KeywordIdea] {
	var ideas []domain.KeywordIdea
	for _, line := range strings.Split(reply, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		line = listMarker.ReplaceAllString(line, "")
		fields := strings.Split(line, "|")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		keyword := strings.Trim(fields[0], "「」\"*")
		if keyword == "" {
			continue
		}

		idea := domain.KeywordIdea{Keyword: keyword, Source: domain.IdeaSourceLLM, Competition: domain.CompetitionUnknown}
		if len(fields) > 1 {
			idea.Description = fields[1]
		}
		if len(fields) > 2 {
			idea.MonthlySearches, _ = strconv.ParseInt(nonDigits.ReplaceAllString(fields[2], ""), 10, 64)
		}
		if len(fields) > 3 {
			idea.Competition = domain.ParseCompetition(fields[3])
		}
		intentLabel := ""
		if len(fields) > 4 {
			intentLabel = fields[4]
		}
		idea.Intent = domain.ParseIntent(intentLabel, keyword)
		ideas = append(ideas, idea)
	}

	if len(ideas) == 0 {
		return domain.Malformed[[]domain.KeywordIdea]("no pipe-delimited keyword lines")
	}
	return domain.Success(ideas)
}
