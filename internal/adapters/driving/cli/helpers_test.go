package cli

import (
	"bytes"
	"context"
	"strings"

	"github.com/custodia-labs/clusterlink/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/services"
)

// staticAutocomplete returns the same suggestions for every seed.
type staticAutocomplete []string

func (s staticAutocomplete) Complete(_ context.Context, seed string) domain.ParsedResponse[[]string] {
	out := make([]string, 0, len(s))
	for _, suffix := range s {
		out = append(out, seed+" "+suffix)
	}
	return domain.Success(out)
}

// staticIdeas is a keyword idea source with fixed output.
type staticIdeas []domain.KeywordIdea

func (s staticIdeas) Name() domain.IdeaSource { return domain.IdeaSourceGoogleAds }

func (s staticIdeas) Ideas(context.Context, string, int) ([]domain.KeywordIdea, error) {
	return s, nil
}

// spaceNouns treats every space separated word as a noun.
type spaceNouns struct{}

func (spaceNouns) Nouns(text string) []string { return strings.Fields(text) }

// testDocs is the content site used by command tests.
// Document 1 is a pillar for 水漏れ; 2 and 4 mention it, 3 does not.
func testDocs() []domain.Document {
	return []domain.Document{
		{
			ID: "1", Type: "post", Title: "水漏れ修理ガイド", Status: "publish",
			Content:   "<p>水漏れ の 修理 方法</p>",
			Permalink: "https://example.com/guide/",
			Fields:    map[string]string{"pillar_keywords": "水漏れ, 修理"},
		},
		{
			ID: "2", Type: "post", Title: "キッチンの水漏れ", Status: "publish",
			Content:   "<p>キッチン 水漏れ 水漏れ</p>",
			Permalink: "https://example.com/kitchen/",
		},
		{
			ID: "3", Type: "post", Title: "庭の手入れ", Status: "publish",
			Content:   "<p>芝生</p>",
			Permalink: "https://example.com/garden/",
		},
		{
			ID: "4", Type: "local_trouble", Title: "トイレ修理", Status: "publish",
			Content:   "<p>トイレ 修理</p>",
			Permalink: "https://example.com/toilet/",
		},
	}
}

// testEnv exposes the stores behind the services set up for a test.
type testEnv struct {
	docs    *memory.DocumentStore
	history *memory.HistoryStore
	config  *memory.ConfigStore
}

// setupTestServices wires real services over in-memory stores and runs
// one proposal so link commands have a table to work with.
func setupTestServices() func() {
	_, cleanup := setupTestEnv()
	return cleanup
}

func setupTestEnv() (*testEnv, func()) {
	env := &testEnv{
		docs:    memory.NewDocumentStore(testDocs()...),
		history: memory.NewHistoryStore(),
		config:  memory.NewConfigStore(),
	}
	proposalStore := memory.NewProposalStore()

	settings := domain.DefaultAppSettings()
	settings.Suggest.BatchDelay = 0

	proposals := services.NewProposalBuilder(env.docs, proposalStore, settings.Linker)
	generator := services.NewLinkTextGenerator(nil, nil, settings.LLM)
	links, err := services.NewLinkService(env.docs, proposalStore, env.history, generator, settings.Linker)
	if err != nil {
		panic(err)
	}
	keywords := services.NewKeywordService(
		services.NewSuggestionService(staticAutocomplete{"修理", "費用", "原因"}, settings.Suggest),
		services.NewKeywordIdeaService(settings.Ads.MaxIdeas, staticIdeas{
			{Keyword: "水漏れ 修理 費用", MonthlySearches: 1300, Competition: domain.CompetitionHigh},
		}),
		services.NewPillarAnalyzer(env.docs, nil, nil, spaceNouns{}),
	)

	SetServices(&Services{
		Proposals: proposals,
		Links:     links,
		Keywords:  keywords,
		Documents: services.NewDocumentService(env.docs, env.docs, ""),
		Settings:  services.NewSettingsService(env.config, nil),
	})

	if _, err := proposals.Propose(context.Background()); err != nil {
		panic(err)
	}

	return env, func() {
		SetServices(nil)
		resetFlags()
	}
}

// resetFlags restores flag variables that persist between executions.
func resetFlags() {
	proposeJSON, proposalsJSON, resetYes = false, false, false
	linkRegenerate, linkJSON, linkInsertText = false, false, ""
	keywordsJSON, batchFile = false, ""
	documentsTypes, documentsHasField, documentsLimit = nil, "", 0
	verbose, logFile = false, ""
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
