package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

var (
	linkRegenerate bool
	linkJSON       bool
	linkInsertText string
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Work with proposal links between documents",
	Long: `Inspect link budgets, draft link text and insert links.

A document may carry a limited number of proposal links. Links are only
offered between a pillar and its clusters.`,
}

var linkTextCmd = &cobra.Command{
	Use:   "text [source-id] [target-id]",
	Short: "Draft one sentence linking source to target",
	Long: `Drafts an HTML sentence containing exactly one link from the source
document to the target document. The LLM is used when configured; a
template sentence is produced otherwise.`,
	Args: cobra.ExactArgs(2),
	RunE: runLinkText,
}

var linkBudgetCmd = &cobra.Command{
	Use:   "budget [doc-id]",
	Short: "Show how many more proposal links a document may receive",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinkBudget,
}

var linkStatusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show cluster affiliation, budget and link targets",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinkStatus,
}

var linkInsertCmd = &cobra.Command{
	Use:   "insert [source-id] [target-id]",
	Short: "Append a link sentence to the source document",
	Long: `Appends a paragraph with a link to the target at the end of the source
document and records it in the link history. Without --text the sentence
is generated first.`,
	Args: cobra.ExactArgs(2),
	RunE: runLinkInsert,
}

var linkHistoryCmd = &cobra.Command{
	Use:   "history [doc-id]",
	Short: "List inserted links, optionally for one source document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLinkHistory,
}

func init() {
	linkTextCmd.Flags().BoolVarP(&linkRegenerate, "regenerate", "r", false, "ignore previously drafted text")
	linkTextCmd.Flags().BoolVar(&linkJSON, "json", false, "output as JSON")
	linkStatusCmd.Flags().BoolVar(&linkJSON, "json", false, "output as JSON")
	linkInsertCmd.Flags().StringVar(&linkInsertText, "text", "", "HTML fragment to insert instead of generating one")

	linkCmd.AddCommand(linkTextCmd)
	linkCmd.AddCommand(linkBudgetCmd)
	linkCmd.AddCommand(linkStatusCmd)
	linkCmd.AddCommand(linkInsertCmd)
	linkCmd.AddCommand(linkHistoryCmd)
	rootCmd.AddCommand(linkCmd)
}

func runLinkText(cmd *cobra.Command, args []string) error {
	if linkService == nil {
		return errors.New("link service not configured")
	}

	generate := linkService.GenerateLinkText
	if linkRegenerate {
		generate = linkService.RegenerateLinkText
	}
	text, err := generate(commandContext(cmd), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to generate link text: %w", err)
	}

	if linkJSON {
		return printJSON(cmd, text)
	}

	cmd.Println(text.HTML)
	source := "Source: " + string(text.Source)
	if text.Reason != "" {
		source += " (" + text.Reason + ")"
	}
	cmd.Println(styles.Muted.Render(source))
	return nil
}

func runLinkBudget(cmd *cobra.Command, args []string) error {
	if linkService == nil {
		return errors.New("link service not configured")
	}

	budget, err := linkService.Budget(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to compute budget: %w", err)
	}

	cmd.Printf("Document %s: %d of %d proposal links used, %d remaining\n",
		args[0], budget.Existing, budget.Max, budget.Remaining)
	return nil
}

func runLinkStatus(cmd *cobra.Command, args []string) error {
	if linkService == nil {
		return errors.New("link service not configured")
	}

	status, err := linkService.Status(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get link status: %w", err)
	}

	if linkJSON {
		return printJSON(cmd, status)
	}

	cmd.Println(styles.Title.Render("Document " + args[0]))
	cmd.Printf("  Role:   %s\n", status.Affiliation.Role())
	if len(status.Affiliation.ClusterOf) > 0 {
		cmd.Printf("  Cluster of: %v\n", status.Affiliation.ClusterOf)
	}
	budget := fmt.Sprintf("  Budget: %d/%d used, %d remaining", status.Budget.Existing, status.Budget.Max, status.Budget.Remaining)
	if status.Budget.Exhausted() {
		budget = styles.Warning.Render(budget)
	}
	cmd.Println(budget)
	cmd.Println()

	printTargets(cmd, "Already linked", status.Linked)
	printTargets(cmd, "Eligible targets", status.Eligible)
	return nil
}

func printTargets(cmd *cobra.Command, title string, targets []domain.LinkTarget) {
	if len(targets) == 0 {
		cmd.Printf("%s: none\n", title)
		return
	}
	cmd.Printf("%s:\n", title)
	rows := make([][]string, 0, len(targets))
	for _, t := range targets {
		score := ""
		if t.Score > 0 {
			score = strconv.Itoa(t.Score)
		}
		rows = append(rows, []string{t.DocumentID, string(t.Role), t.Title, score})
	}
	cmd.Println(renderTable([]string{"ID", "Role", "Title", "Score"}, rows))
}

func runLinkInsert(cmd *cobra.Command, args []string) error {
	if linkService == nil {
		return errors.New("link service not configured")
	}
	ctx := commandContext(cmd)
	sourceID, targetID := args[0], args[1]

	fragment := linkInsertText
	if fragment == "" {
		text, err := linkService.GenerateLinkText(ctx, sourceID, targetID)
		if err != nil {
			return fmt.Errorf("failed to generate link text: %w", err)
		}
		fragment = text.HTML
	}

	entry, err := linkService.InsertLink(ctx, sourceID, targetID, fragment)
	if err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}

	cmd.Println(styles.Success.Render(fmt.Sprintf("Inserted link %s -> %s (history #%d)", sourceID, targetID, entry.ID)))
	cmd.Println(entry.LinkText)
	return nil
}

func runLinkHistory(cmd *cobra.Command, args []string) error {
	if linkService == nil {
		return errors.New("link service not configured")
	}

	var documentID string
	if len(args) == 1 {
		documentID = args[0]
	}
	entries, err := linkService.History(commandContext(cmd), documentID)
	if err != nil {
		return fmt.Errorf("failed to load link history: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No links inserted yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.SourceDocumentID,
			e.TargetDocumentID,
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	cmd.Println(renderTable([]string{"#", "Source", "Target", "Inserted"}, rows))
	return nil
}
