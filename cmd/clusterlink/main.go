// Command clusterlink proposes pillar and cluster internal links for a
// content site.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/clusterlink/internal/adapters/driven/ads/googleads"
	"github.com/custodia-labs/clusterlink/internal/adapters/driven/ai"
	"github.com/custodia-labs/clusterlink/internal/adapters/driven/config/file"
	"github.com/custodia-labs/clusterlink/internal/adapters/driven/nlp/kagome"
	"github.com/custodia-labs/clusterlink/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/clusterlink/internal/adapters/driven/storage/wordpress"
	"github.com/custodia-labs/clusterlink/internal/adapters/driven/suggest/google"
	"github.com/custodia-labs/clusterlink/internal/adapters/driving/cli"
	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/core/services"
)

// homeEnv overrides the configuration directory (default ~/.clusterlink).
const homeEnv = "CLUSTERLINK_HOME"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	home := os.Getenv(homeEnv)

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return report(fmt.Errorf("opening config: %w", err))
	}
	settingsService := services.NewSettingsService(configStore, ai.ValidateLLMConfig)
	settings, err := settingsService.Get()
	if err != nil {
		return report(fmt.Errorf("loading settings: %w", err))
	}

	store, err := sqlite.NewStore(subdir(home, "data"))
	if err != nil {
		return report(fmt.Errorf("opening database: %w", err))
	}
	defer store.Close()

	var warnings []string

	docStore, docWriter, err := openDocumentStore(settings, store)
	if err != nil {
		// settings commands must keep working so the store can be fixed
		warnings = append(warnings, fmt.Sprintf("document store: %v (using local store)", err))
		docStore, docWriter = store.DocumentStore(), store.DocumentStore()
	}

	prompts, err := file.NewPromptStore(subdir(home, "prompts"), services.DefaultPrompts())
	if err != nil {
		return report(fmt.Errorf("opening prompts: %w", err))
	}

	aiResult := ai.Init(&settings.LLM)
	defer aiResult.Close()
	warnings = append(warnings, aiResult.Warnings...)

	var autocomplete driven.AutocompleteClient
	if client, err := google.NewClient(settings.Suggest); err != nil {
		warnings = append(warnings, fmt.Sprintf("autocomplete: %v", err))
	} else {
		autocomplete = client
	}

	var nouns driven.NounExtractor
	if extractor, err := kagome.NewExtractor(); err != nil {
		warnings = append(warnings, fmt.Sprintf("tokenizer: %v", err))
	} else {
		nouns = extractor
	}

	var ideaSources []driven.KeywordIdeaSource
	ideaSources = append(ideaSources, googleads.NewPlanner(settings.Ads))
	if aiResult.LLMService != nil {
		ideaSources = append(ideaSources, services.NewLLMIdeaSource(aiResult.LLMService, prompts))
	}

	generator := services.NewLinkTextGenerator(aiResult.LLMService, prompts, settings.LLM)
	links, err := services.NewLinkService(docStore, store.ProposalStore(), store.LinkHistoryStore(), generator, settings.Linker)
	if err != nil {
		return report(err)
	}

	keywords := services.NewKeywordService(
		services.NewSuggestionService(autocomplete, settings.Suggest),
		services.NewKeywordIdeaService(settings.Ads.MaxIdeas, ideaSources...),
		services.NewPillarAnalyzer(docStore, aiResult.LLMService, prompts, nouns),
	)

	cli.SetServices(&cli.Services{
		Proposals: services.NewProposalBuilder(docStore, store.ProposalStore(), settings.Linker),
		Links:     links,
		Keywords:  keywords,
		Documents: services.NewDocumentService(docStore, docWriter, settings.Linker.SiteURL),
		Settings:  settingsService,
		Prompts:   prompts,
		Warnings:  warnings,
	})

	// cobra prints the error itself
	return cli.ExecuteContext(ctx)
}

// openDocumentStore selects the content store. The WordPress store is
// read through the REST API and cannot be imported into.
func openDocumentStore(settings *domain.AppSettings, store *sqlite.Store) (driven.DocumentStore, driven.DocumentWriter, error) {
	switch settings.Store.Backend {
	case domain.StoreBackendWordPress:
		wp, err := wordpress.NewStore(wordpress.Config{
			BaseURL:  settings.Store.WordPressURL,
			Username: settings.Store.WordPressUser,
			Password: settings.Store.WordPressPassword,
			Types:    settings.Linker.DocumentTypes,
		})
		if err != nil {
			return nil, nil, err
		}
		return wp, nil, nil
	case domain.StoreBackendSQLite, "":
		return store.DocumentStore(), store.DocumentStore(), nil
	default:
		return nil, nil, errors.New("unknown store backend " + string(settings.Store.Backend))
	}
}

func subdir(home, name string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(home, name)
}

func report(err error) error {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return err
}
