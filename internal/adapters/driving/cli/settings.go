package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure linking, LLM, keyword and document store settings.

Settings are stored in ~/.clusterlink/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for link text, keyword ideas and pillar analysis.`,
	RunE:  runSettingsLLM,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  clusterlink settings set linker.max_links 3
  clusterlink settings set store.backend wordpress

Run 'clusterlink settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		for _, k := range settingsService.Keys() {
			cmd.Println(k)
		}
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Linker]")
	cmd.Printf("  Keyword field: %s\n", settings.Linker.KeywordField)
	cmd.Printf("  Document types: %s\n", strings.Join(settings.Linker.DocumentTypes, ", "))
	cmd.Printf("  Max links per document: %d\n", settings.Linker.MaxLinksPerDocument)
	cmd.Printf("  Candidate pool size: %d\n", settings.Linker.CandidatePoolSize)
	cmd.Printf("  Site URL: %s\n", valueOrUnset(settings.Linker.SiteURL))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	cmd.Printf("  API Key: %s\n", maskedOrUnset(settings.LLM.APIKey))
	cmd.Printf("  Status: %s\n", configuredLabel(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Autocomplete]")
	cmd.Printf("  Endpoint: %s\n", settings.Suggest.Endpoint)
	cmd.Printf("  Locale: %s-%s\n", settings.Suggest.Language, settings.Suggest.Country)
	cmd.Printf("  Results: %d to %d\n", settings.Suggest.MinResults, settings.Suggest.MaxResults)
	cmd.Println()

	cmd.Println("[Google Ads]")
	cmd.Printf("  Customer ID: %s\n", valueOrUnset(settings.Ads.CustomerID))
	cmd.Printf("  Developer token: %s\n", maskedOrUnset(settings.Ads.DeveloperToken))
	if missing := settings.Ads.Missing(); len(missing) > 0 {
		cmd.Printf("  Status: not configured (missing %s)\n", strings.Join(missing, ", "))
	} else {
		cmd.Println("  Status: configured")
	}
	cmd.Println()

	cmd.Println("[Document Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	if settings.Store.Backend == domain.StoreBackendWordPress {
		cmd.Printf("  WordPress URL: %s\n", valueOrUnset(settings.Store.WordPressURL))
		cmd.Printf("  WordPress user: %s\n", valueOrUnset(settings.Store.WordPressUser))
		cmd.Printf("  Application password: %s\n", maskedOrUnset(settings.Store.WordPressPassword))
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'clusterlink settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.Contains(key, "api_key") || strings.Contains(key, "password") ||
		strings.Contains(key, "secret") || strings.Contains(key, "token") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword(cmd, reader)
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for this provider")
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when the command reads from a terminal
// and falls back to reader.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskedOrUnset(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return maskAPIKey(secret)
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
