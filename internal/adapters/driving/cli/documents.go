package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

var (
	documentsTypes    []string
	documentsHasField string
	documentsLimit    int
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Browse and import documents",
	Long:    `List and view documents in the content store, or import documents into the local store.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsGet,
}

var documentsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import documents from a JSON file into the local store",
	Long: `Imports a JSON array of documents into the local SQLite store. Use - to
read from stdin. Each entry looks like:

  {
    "id": "42",
    "type": "post",
    "title": "...",
    "content": "<p>...</p>",
    "excerpt": "...",
    "permalink": "https://example.com/42/",
    "fields": {"pillar_keywords": "a, b, c"}
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsImport,
}

var documentsOpenCmd = &cobra.Command{
	Use:   "open [doc-id]",
	Short: "Open the document in the browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsOpen,
}

func init() {
	documentsListCmd.Flags().StringSliceVarP(&documentsTypes, "type", "t", nil, "restrict to these content types")
	documentsListCmd.Flags().StringVar(&documentsHasField, "has-field", "", "only documents with this custom field set")
	documentsListCmd.Flags().IntVarP(&documentsLimit, "limit", "n", 0, "maximum number of documents (0 = all)")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsGetCmd)
	documentsCmd.AddCommand(documentsImportCmd)
	documentsCmd.AddCommand(documentsOpenCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(commandContext(cmd), domain.DocumentFilter{
		Types:    documentsTypes,
		HasField: documentsHasField,
		Limit:    documentsLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	rows := make([][]string, 0, len(docs))
	for i := range docs {
		rows = append(rows, []string{docs[i].ID, docs[i].Type, docs[i].Title, docs[i].Status})
	}
	cmd.Println(renderTable([]string{"ID", "Type", "Title", "Status"}, rows))
	return nil
}

func runDocumentsGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n", doc.ID)
	cmd.Printf("  Title:     %s\n", doc.Title)
	cmd.Printf("  Type:      %s\n", doc.Type)
	cmd.Printf("  Status:    %s\n", doc.Status)
	cmd.Printf("  Permalink: %s\n", doc.Permalink)
	if !doc.UpdatedAt.IsZero() {
		cmd.Printf("  Updated:   %s\n", doc.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	if len(doc.Fields) > 0 {
		cmd.Println("  Fields:")
		names := make([]string, 0, len(doc.Fields))
		for name := range doc.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cmd.Printf("    %s: %s\n", name, doc.Fields[name])
		}
	}
	return nil
}

// importedDocument is the JSON shape accepted by documents import.
type importedDocument struct {
	ID        documentID        `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Excerpt   string            `json:"excerpt"`
	Permalink string            `json:"permalink"`
	Status    string            `json:"status"`
	Fields    map[string]string `json:"fields"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// documentID accepts both string and numeric JSON ids.
type documentID string

func (d *documentID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = documentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("document id must be a string or number: %s", b)
	}
	*d = documentID(n.String())
	return nil
}

func runDocumentsImport(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	var records []importedDocument
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("invalid document JSON: %w", err)
	}

	docs := make([]domain.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, domain.Document{
			ID:        string(r.ID),
			Type:      r.Type,
			Title:     r.Title,
			Content:   r.Content,
			Excerpt:   r.Excerpt,
			Permalink: r.Permalink,
			Status:    r.Status,
			Fields:    r.Fields,
			UpdatedAt: r.UpdatedAt,
		})
	}

	n, err := documentService.Import(commandContext(cmd), docs)
	if err != nil {
		return fmt.Errorf("import failed after %d documents: %w", n, err)
	}
	cmd.Println(styles.Success.Render(fmt.Sprintf("Imported %d documents.", n)))
	return nil
}

func runDocumentsOpen(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Open(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	cmd.Printf("Opened document %s\n", args[0])
	return nil
}
