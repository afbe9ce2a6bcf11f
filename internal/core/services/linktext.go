package services

import (
	"context"
	"fmt"
	"html"
	"math/rand/v2"
	"net/url"
	"strings"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/logger"
	"github.com/custodia-labs/clusterlink/internal/markup"
)

// maxExcerptRunes bounds the source text sent to the LLM.
const maxExcerptRunes = 1000

// linkTemplates are the template fallbacks. Each takes the target URL then
// the escaped title.
var linkTemplates = []string{
	`詳しくは<a href="%s">%s</a>をご覧ください。`,
	`関連する内容は<a href="%s">%s</a>で解説しています。`,
	`あわせて<a href="%s">%s</a>もご確認ください。`,
	`より詳しい情報は<a href="%s">%s</a>にまとめています。`,
}

// LinkTextGenerator produces a natural sentence embedding one link.
// It asks the LLM first and falls back to a fixed template, so it always
// returns a usable fragment.
type LinkTextGenerator struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	settings domain.LLMSettings
	pick     func(n int) int
}

// NewLinkTextGenerator creates a generator. llm and prompts may be nil.
func NewLinkTextGenerator(llm driven.LLMService, prompts driven.PromptStore, settings domain.LLMSettings) *LinkTextGenerator {
	return &LinkTextGenerator{
		llm:      llm,
		prompts:  prompts,
		settings: settings,
		pick:     rand.IntN,
	}
}

// Generate returns a fragment containing exactly one anchor to targetURL.
func (g *LinkTextGenerator) Generate(ctx context.Context, sourceContent, targetTitle, targetURL string) domain.GeneratedLinkText {
	var reason string
	fragment, name, err := RunStrategies(ctx,
		Strategy[string]{Name: string(domain.LinkTextSourceAI), Try: func(ctx context.Context) (string, error) {
			return g.generateAI(ctx, sourceContent, targetTitle, targetURL)
		}},
		Strategy[string]{Name: string(domain.LinkTextSourceTemplate), Try: func(context.Context) (string, error) {
			return g.Template(targetTitle, targetURL), nil
		}},
	)
	if err != nil {
		// unreachable: the template strategy cannot fail
		return domain.GeneratedLinkText{HTML: g.Template(targetTitle, targetURL), Source: domain.LinkTextSourceTemplate}
	}
	if name != string(domain.LinkTextSourceAI) {
		reason = g.skipReason()
	}
	return domain.GeneratedLinkText{HTML: fragment, Source: domain.LinkTextSource(name), Reason: reason}
}

func (g *LinkTextGenerator) skipReason() string {
	if g.llm == nil {
		return "LLM not configured"
	}
	return "LLM reply rejected or unavailable"
}

// Template renders a fallback fragment with the title HTML-escaped.
func (g *LinkTextGenerator) Template(targetTitle, targetURL string) string {
	label := strings.TrimSpace(targetTitle)
	if label == "" {
		label = targetURL
	}
	tpl := linkTemplates[g.pick(len(linkTemplates))]
	return fmt.Sprintf(tpl, strings.ReplaceAll(targetURL, `"`, "%22"), html.EscapeString(label))
}

func (g *LinkTextGenerator) generateAI(ctx context.Context, sourceContent, targetTitle, targetURL string) (string, error) {
	if g.llm == nil {
		return "", &domain.ConfigurationError{Component: "link text", Missing: []string{"llm.api_key"}}
	}

	excerpt := markup.PlainText(sourceContent, maxExcerptRunes)
	messages := []driven.ChatMessage{
		{Role: "system", Content: loadPrompt(g.prompts, driven.PromptLinkTextSystem)},
		{Role: "user", Content: fmt.Sprintf(loadPrompt(g.prompts, driven.PromptLinkText), excerpt, targetTitle, targetURL)},
	}

	if g.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.settings.Timeout)
		defer cancel()
	}

	reply, err := g.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   g.settings.MaxTokens,
		Temperature: g.settings.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	parsed := parseLinkReply(reply, targetURL)
	if !parsed.OK() {
		logger.Debug("Rejected link text reply: %q", reply)
		return "", parsed.Err()
	}
	return parsed.Data, nil
}

// parseLinkReply accepts a reply holding exactly one anchor that points
// at targetURL.
func parseLinkReply(reply, targetURL string) domain.ParsedResponse[string] {
	fragment := trimReply(reply)
	if fragment == "" {
		return domain.Malformed[string]("empty reply")
	}
	anchor, ok := markup.SingleAnchor(fragment)
	if !ok {
		return domain.Malformed[string]("reply does not contain exactly one anchor")
	}
	if !sameURL(anchor.Href, targetURL) {
		return domain.Malformed[string](fmt.Sprintf("anchor points to %q", anchor.Href))
	}
	return domain.Success(fragment)
}

// trimReply removes code fences and surrounding quotes models sometimes add.
func trimReply(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "「」\"")
	return strings.TrimSpace(s)
}

func sameURL(a, b string) bool {
	if a == b {
		return true
	}
	base, _ := url.Parse(b)
	na, okA := markup.NormalizeURL(base, a)
	nb, okB := markup.NormalizeURL(nil, b)
	return okA && okB && na == nb
}
