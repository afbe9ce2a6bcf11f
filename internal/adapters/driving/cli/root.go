// Package cli provides the cobra command tree for clusterlink.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clusterlink/internal/core/ports/driving"
	"github.com/custodia-labs/clusterlink/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// PromptWatcher reloads prompt templates when their files change.
type PromptWatcher interface {
	Watch(ctx context.Context, ready chan<- struct{}) error
}

// Services holds the driving ports used by the commands.
type Services struct {
	Proposals driving.ProposalService
	Links     driving.LinkService
	Keywords  driving.KeywordService
	Documents driving.DocumentService
	Settings  driving.SettingsService

	// Prompts is watched while long-running commands execute. Optional.
	Prompts PromptWatcher

	// Warnings are printed once before the first command runs.
	Warnings []string
}

var (
	proposalService driving.ProposalService
	linkService     driving.LinkService
	keywordService  driving.KeywordService
	documentService driving.DocumentService
	settingsService driving.SettingsService
	promptWatcher   PromptWatcher
	startupWarnings []string
)

// SetServices injects the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	proposalService = s.Proposals
	linkService = s.Links
	keywordService = s.Keywords
	documentService = s.Documents
	settingsService = s.Settings
	promptWatcher = s.Prompts
	startupWarnings = s.Warnings
}

var (
	verbose   bool
	logFile   string
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "clusterlink",
	Short: "Topic-cluster internal linking for content sites",
	Long: `clusterlink proposes pillar and cluster relationships between the
documents of a content site, tracks how many proposal links each document
carries and drafts the sentences that hold those links.

It also suggests keywords for planning new pillar pages.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupLogging,
	PersistentPostRunE: closeLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print which strategy produced each result")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append all log messages to this file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if logFile != "" && logCloser == nil {
		closer, err := logger.OpenFile(logFile)
		if err != nil {
			return err
		}
		logCloser = closer
	}
	for _, w := range startupWarnings {
		fmt.Fprintln(cmd.ErrOrStderr(), styles.Warning.Render("Warning: "+w))
		logger.Warn("%s", w)
	}
	startupWarnings = nil
	return nil
}

func closeLogging(_ *cobra.Command, _ []string) error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
