package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	keywordsJSON bool
	batchFile    string
)

var keywordsCmd = &cobra.Command{
	Use:     "keywords",
	Aliases: []string{"kw"},
	Short:   "Plan keywords for pillar pages",
}

var keywordsSuggestCmd = &cobra.Command{
	Use:   "suggest [seed]",
	Short: "Suggest search keywords for a seed keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeywordsSuggest,
}

var keywordsBatchCmd = &cobra.Command{
	Use:   "batch [seeds...]",
	Short: "Suggest keywords for several seeds",
	Long: `Suggests keywords for every seed. Seeds may be given as arguments or
read from a file (one per line, or separated by commas) with --file.
Use --file - to read from stdin.`,
	RunE: runKeywordsBatch,
}

var keywordsIdeasCmd = &cobra.Command{
	Use:   "ideas [seed]",
	Short: "List related keywords with search volume and competition",
	Long: `Lists related keywords from Google Ads Keyword Planner. When the
planner is not configured or fails, ideas are drafted by the LLM.`,
	Args: cobra.ExactArgs(1),
	RunE: runKeywordsIdeas,
}

var keywordsAnalyseCmd = &cobra.Command{
	Use:     "analyse [doc-id]",
	Aliases: []string{"analyze"},
	Short:   "Propose pillar keywords for an existing document",
	Args:    cobra.ExactArgs(1),
	RunE:    runKeywordsAnalyse,
}

func init() {
	keywordsBatchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "read seeds from a file")
	keywordsIdeasCmd.Flags().BoolVar(&keywordsJSON, "json", false, "output as JSON")
	keywordsAnalyseCmd.Flags().BoolVar(&keywordsJSON, "json", false, "output as JSON")

	keywordsCmd.AddCommand(keywordsSuggestCmd)
	keywordsCmd.AddCommand(keywordsBatchCmd)
	keywordsCmd.AddCommand(keywordsIdeasCmd)
	keywordsCmd.AddCommand(keywordsAnalyseCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywordsSuggest(cmd *cobra.Command, args []string) error {
	if keywordService == nil {
		return errors.New("keyword service not configured")
	}

	suggestions, err := keywordService.Suggest(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	for i, s := range suggestions {
		cmd.Printf("%2d. %s\n", i+1, s)
	}
	return nil
}

func runKeywordsBatch(cmd *cobra.Command, args []string) error {
	if keywordService == nil {
		return errors.New("keyword service not configured")
	}

	raw := strings.Join(args, "\n")
	if batchFile != "" {
		data, err := readInput(cmd, batchFile)
		if err != nil {
			return err
		}
		raw += "\n" + string(data)
	}

	results, err := keywordService.SuggestBatch(commandContext(cmd), raw)
	if err != nil {
		return fmt.Errorf("batch suggest failed: %w", err)
	}

	for _, r := range results {
		cmd.Println(styles.Title.Render(r.Seed))
		for _, s := range r.Suggestions {
			cmd.Printf("  - %s\n", s)
		}
	}
	return nil
}

func runKeywordsIdeas(cmd *cobra.Command, args []string) error {
	if keywordService == nil {
		return errors.New("keyword service not configured")
	}

	result, err := keywordService.Ideas(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("keyword ideas failed: %w", err)
	}

	if keywordsJSON {
		return printJSON(cmd, result)
	}

	for _, e := range result.Errors {
		cmd.Println(styles.Warning.Render("Warning: " + e))
	}
	if len(result.Ideas) == 0 {
		cmd.Println("No keyword ideas found.")
		return nil
	}

	rows := make([][]string, 0, len(result.Ideas))
	for _, idea := range result.Ideas {
		rows = append(rows, []string{
			idea.Keyword,
			strconv.FormatInt(idea.MonthlySearches, 10),
			idea.Competition.Label(),
			string(idea.Intent),
			strconv.Itoa(idea.RelevanceScore),
			string(idea.Source),
		})
	}
	cmd.Println(renderTable([]string{"Keyword", "Searches", "Competition", "Intent", "Relevance", "Source"}, rows))
	return nil
}

func runKeywordsAnalyse(cmd *cobra.Command, args []string) error {
	if keywordService == nil {
		return errors.New("keyword service not configured")
	}

	analysis, err := keywordService.AnalysePillar(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if keywordsJSON {
		return printJSON(cmd, analysis)
	}

	cmd.Println(styles.Title.Render("Pillar keywords for " + analysis.DocumentID))
	cmd.Printf("  Keywords:  %s\n", strings.Join(analysis.Keywords, ", "))
	if analysis.PillarPotential != "" {
		cmd.Printf("  Potential: %s\n", analysis.PillarPotential)
	}
	if analysis.Analysis != "" {
		cmd.Printf("  Analysis:  %s\n", analysis.Analysis)
	}
	cmd.Println(styles.Muted.Render("Source: " + analysis.Source))
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
