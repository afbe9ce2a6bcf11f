package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

var (
	proposeJSON   bool
	proposalsJSON bool
	resetYes      bool
)

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Rebuild the pillar to cluster proposal table",
	Long: `Scans every document with pillar keywords, scores the other documents
against those keywords and replaces the stored proposal table.

The previous table is kept when the content store fails part way through.`,
	Args: cobra.NoArgs,
	RunE: runPropose,
}

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "Inspect the stored proposal table",
	RunE:  runProposalsShow,
}

var proposalsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show pillars and their ranked clusters",
	Args:  cobra.NoArgs,
	RunE:  runProposalsShow,
}

var proposalsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the proposal table and run summary",
	Args:  cobra.NoArgs,
	RunE:  runProposalsReset,
}

func init() {
	proposeCmd.Flags().BoolVar(&proposeJSON, "json", false, "output the run summary as JSON")
	proposalsShowCmd.Flags().BoolVar(&proposalsJSON, "json", false, "output the table as JSON")
	proposalsResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")

	proposalsCmd.AddCommand(proposalsShowCmd)
	proposalsCmd.AddCommand(proposalsResetCmd)
	rootCmd.AddCommand(proposeCmd)
	rootCmd.AddCommand(proposalsCmd)
}

func runPropose(cmd *cobra.Command, _ []string) error {
	if proposalService == nil {
		return errors.New("proposal service not configured")
	}

	run, err := proposalService.Propose(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("proposal run failed: %w", err)
	}

	if proposeJSON {
		return printJSON(cmd, run)
	}

	cmd.Println(styles.Title.Render("Proposal run " + run.Summary.RunID))
	cmd.Printf("  Pillars:  %d\n", run.Summary.PillarCount)
	cmd.Printf("  Clusters: %d\n", run.Summary.ClusterCount)
	if len(run.SkippedPillars) > 0 {
		cmd.Printf("  Skipped (no keywords): %s\n", strings.Join(run.SkippedPillars, ", "))
	}
	for _, w := range run.Warnings {
		cmd.Println(styles.Warning.Render("Warning: " + w))
	}
	return nil
}

func runProposalsShow(cmd *cobra.Command, _ []string) error {
	if proposalService == nil {
		return errors.New("proposal service not configured")
	}
	ctx := commandContext(cmd)

	table, err := proposalService.Table(ctx)
	if err != nil {
		return fmt.Errorf("failed to load proposals: %w", err)
	}

	if proposalsJSON {
		return printJSON(cmd, table)
	}

	summary, err := proposalService.Summary(ctx)
	switch {
	case err == nil:
		cmd.Printf("Last run %s at %s\n", summary.RunID, summary.CompletedAt.Local().Format("2006-01-02 15:04"))
	case errors.Is(err, domain.ErrNotFound):
		cmd.Println(styles.Muted.Render("No proposal run recorded. Run 'clusterlink propose'."))
	default:
		return fmt.Errorf("failed to load summary: %w", err)
	}

	if table.PillarCount() == 0 {
		cmd.Println("No proposals.")
		return nil
	}

	rows := make([][]string, 0, table.ClusterCount()+table.PillarCount())
	for _, pillarID := range table.Pillars {
		clusters := table.Clusters(pillarID)
		if len(clusters) == 0 {
			rows = append(rows, []string{pillarID, "-", "", ""})
			continue
		}
		for _, c := range clusters {
			rows = append(rows, []string{pillarID, c.ClusterID, strconv.Itoa(c.Score), strings.Join(c.MatchedKeywords, ", ")})
		}
	}
	cmd.Println(renderTable([]string{"Pillar", "Cluster", "Score", "Matched keywords"}, rows))
	return nil
}

func runProposalsReset(cmd *cobra.Command, _ []string) error {
	if proposalService == nil {
		return errors.New("proposal service not configured")
	}

	if !resetYes {
		cmd.Print("Clear all proposals? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := proposalService.Reset(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to reset proposals: %w", err)
	}
	cmd.Println(styles.Success.Render("Proposals cleared."))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
