package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/clusterlink/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/markup"
)

// DefaultFileName is the database file inside the data directory.
const DefaultFileName = "clusterlink.db"

// Store is a unified SQLite-based storage that provides access to
// the local store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.clusterlink/data/clusterlink.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clusterlink", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DefaultFileName)

	// WAL keeps the file readable by other processes during a write.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection serialises writers; SQLite allows only one at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns the local content store backed by this store.
func (s *Store) DocumentStore() *DocumentStore {
	return &DocumentStore{store: s}
}

// ProposalStore returns a ProposalStore interface backed by this store.
func (s *Store) ProposalStore() driven.ProposalStore {
	return &proposalStore{store: s}
}

// LinkHistoryStore returns a LinkHistoryStore interface backed by this store.
func (s *Store) LinkHistoryStore() driven.LinkHistoryStore {
	return &linkHistoryStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Document Store ====================

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore  = (*DocumentStore)(nil)
	_ driven.DocumentWriter = (*DocumentStore)(nil)
)

// DocumentStore is the offline content store.
type DocumentStore struct {
	store *Store
}

const documentColumns = "id, type, title, content, excerpt, permalink, status, fields, updated_at"

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	fields := doc.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshalling fields: %w", err)
	}
	updatedAt := doc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			title = excluded.title,
			content = excluded.content,
			excerpt = excluded.excerpt,
			permalink = excluded.permalink,
			status = excluded.status,
			fields = excluded.fields,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Type, doc.Title, doc.Content, doc.Excerpt, doc.Permalink,
		doc.Status, string(fieldsJSON), updatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// FindDocuments returns documents matching the filter in the filter's order.
func (s *DocumentStore) FindDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents"
	var args []any
	if len(filter.Types) > 0 {
		query += " WHERE type IN (?" + strings.Repeat(", ?", len(filter.Types)-1) + ")"
		for _, t := range filter.Types {
			args = append(args, t)
		}
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if filter.Matches(doc) {
			docs = append(docs, *doc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	// Numeric IDs sort by value, which SQL text ordering cannot express.
	return filter.Arrange(docs), nil
}

// GetField returns a custom field value.
func (s *DocumentStore) GetField(ctx context.Context, id, name string) (string, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.Field(name), nil
}

// InsertContent appends fragment to the document body as a new paragraph.
func (s *DocumentStore) InsertContent(ctx context.Context, id, fragment string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var content string
	err = tx.QueryRowContext(ctx, "SELECT content FROM documents WHERE id = ?", id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET content = ?, updated_at = ? WHERE id = ?",
		markup.AppendParagraph(content, fragment), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("updating content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Proposal Store ====================

// proposalStore implements driven.ProposalStore.
type proposalStore struct {
	store *Store
}

var _ driven.ProposalStore = (*proposalStore)(nil)

// Load returns the stored table, or an empty one.
func (s *proposalStore) Load(ctx context.Context) (*domain.ProposalTable, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, "SELECT pillar_id FROM proposal_pillars ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying pillars: %w", err)
	}
	var pillars []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning pillar: %w", err)
		}
		pillars = append(pillars, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pillars: %w", err)
	}

	candidates := make(map[string][]domain.ClusterCandidate, len(pillars))
	rows, err = tx.QueryContext(ctx, `
		SELECT pillar_id, cluster_id, score, matched_keywords, details
		FROM proposal_candidates ORDER BY pillar_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pillarID, keywordsJSON, detailsJSON string
		var c domain.ClusterCandidate
		if err := rows.Scan(&pillarID, &c.ClusterID, &c.Score, &keywordsJSON, &detailsJSON); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		if err := json.Unmarshal([]byte(keywordsJSON), &c.MatchedKeywords); err != nil {
			return nil, fmt.Errorf("unmarshaling matched keywords: %w", err)
		}
		if err := json.Unmarshal([]byte(detailsJSON), &c.Details); err != nil {
			return nil, fmt.Errorf("unmarshaling match details: %w", err)
		}
		candidates[pillarID] = append(candidates[pillarID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}

	table := domain.NewProposalTable()
	for _, id := range pillars {
		table.Set(id, candidates[id])
	}
	return table, nil
}

// Replace swaps the table and summary in one transaction.
func (s *proposalStore) Replace(ctx context.Context, table *domain.ProposalTable, summary domain.ProposalSummary) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := clearProposals(ctx, tx); err != nil {
		return err
	}

	pillarStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO proposal_pillars (pillar_id, position) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer pillarStmt.Close()

	candidateStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO proposal_candidates (pillar_id, cluster_id, position, score, matched_keywords, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer candidateStmt.Close()

	if table != nil {
		for i, pillarID := range table.Pillars {
			if _, err := pillarStmt.ExecContext(ctx, pillarID, i); err != nil {
				return fmt.Errorf("saving pillar %s: %w", pillarID, err)
			}
			for j, c := range table.Candidates[pillarID] {
				keywords := c.MatchedKeywords
				if keywords == nil {
					keywords = []string{}
				}
				keywordsJSON, err := json.Marshal(keywords)
				if err != nil {
					return fmt.Errorf("marshalling matched keywords: %w", err)
				}
				details := c.Details
				if details == nil {
					details = map[string]domain.MatchDetail{}
				}
				detailsJSON, err := json.Marshal(details)
				if err != nil {
					return fmt.Errorf("marshalling match details: %w", err)
				}
				if _, err := candidateStmt.ExecContext(ctx, pillarID, c.ClusterID, j, c.Score,
					string(keywordsJSON), string(detailsJSON)); err != nil {
					return fmt.Errorf("saving candidate %s of %s: %w", c.ClusterID, pillarID, err)
				}
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO proposal_summary (id, run_id, pillar_count, cluster_count, completed_at)
		VALUES (1, ?, ?, ?, ?)
	`, summary.RunID, summary.PillarCount, summary.ClusterCount, summary.CompletedAt.UTC()); err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Clear removes the table and summary.
func (s *proposalStore) Clear(ctx context.Context) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := clearProposals(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Summary returns the last run summary.
func (s *proposalStore) Summary(ctx context.Context) (*domain.ProposalSummary, error) {
	var summary domain.ProposalSummary
	err := s.store.db.QueryRowContext(ctx, `
		SELECT run_id, pillar_count, cluster_count, completed_at
		FROM proposal_summary WHERE id = 1
	`).Scan(&summary.RunID, &summary.PillarCount, &summary.ClusterCount, &summary.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning summary: %w", err)
	}
	return &summary, nil
}

func clearProposals(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"proposal_candidates", "proposal_pillars", "proposal_summary"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// ==================== Link History Store ====================

// linkHistoryStore implements driven.LinkHistoryStore.
type linkHistoryStore struct {
	store *Store
}

var _ driven.LinkHistoryStore = (*linkHistoryStore)(nil)

// Append records an insertion and assigns its ID.
func (s *linkHistoryStore) Append(ctx context.Context, entry *domain.LinkHistoryEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO link_history (source_document_id, target_document_id, link_text, created_at)
		VALUES (?, ?, ?, ?)
	`, entry.SourceDocumentID, entry.TargetDocumentID, entry.LinkText, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving link history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading link history id: %w", err)
	}
	entry.ID = id
	return nil
}

// List returns entries for a source document, oldest first.
func (s *linkHistoryStore) List(ctx context.Context, documentID string) ([]domain.LinkHistoryEntry, error) {
	query := "SELECT id, source_document_id, target_document_id, link_text, created_at FROM link_history"
	var args []any
	if documentID != "" {
		query += " WHERE source_document_id = ?"
		args = append(args, documentID)
	}
	query += " ORDER BY id"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying link history: %w", err)
	}
	defer rows.Close()

	var entries []domain.LinkHistoryEntry
	for rows.Next() {
		var e domain.LinkHistoryEntry
		if err := rows.Scan(&e.ID, &e.SourceDocumentID, &e.TargetDocumentID, &e.LinkText, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning link history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating link history: %w", err)
	}
	return entries, nil
}

// ==================== Helpers ====================

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a single document row.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var fieldsJSON string
	var updatedAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.Type, &doc.Title, &doc.Content, &doc.Excerpt,
		&doc.Permalink, &doc.Status, &fieldsJSON, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &doc.Fields); err != nil {
			return nil, fmt.Errorf("unmarshaling fields: %w", err)
		}
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}

	return &doc, nil
}
