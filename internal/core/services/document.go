package services

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driving"
	"github.com/custodia-labs/clusterlink/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes the content store to the driving adapters.
type DocumentService struct {
	docStore driven.DocumentStore
	writer   driven.DocumentWriter
	siteURL  string

	// open launches the system browser.
	open func(string) error
}

// NewDocumentService creates a new document service. writer may be nil
// when the content store is remote.
func NewDocumentService(
	docStore driven.DocumentStore,
	writer driven.DocumentWriter,
	siteURL string,
) *DocumentService {
	return &DocumentService{
		docStore: docStore,
		writer:   writer,
		siteURL:  siteURL,
		open:     openURL,
	}
}

// List returns documents matching the filter.
func (s *DocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	docs, err := s.docStore.FindDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", domain.ErrStoreUnavailable, err)
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// Import validates every document before saving any of them.
func (s *DocumentService) Import(ctx context.Context, docs []domain.Document) (int, error) {
	if s.writer == nil {
		return 0, &domain.ConfigurationError{Component: "document store (read-only)"}
	}

	seen := make(map[string]bool, len(docs))
	for i := range docs {
		doc := &docs[i]
		doc.ID = strings.TrimSpace(doc.ID)
		if doc.ID == "" {
			return 0, fmt.Errorf("%w: document %d has no id", domain.ErrInvalidInput, i+1)
		}
		if seen[doc.ID] {
			return 0, fmt.Errorf("%w: duplicate document id %s", domain.ErrInvalidInput, doc.ID)
		}
		seen[doc.ID] = true
		if doc.Type == "" {
			doc.Type = "post"
		}
		if doc.Status == "" {
			doc.Status = "publish"
		}
	}

	for i := range docs {
		if err := s.writer.SaveDocument(ctx, &docs[i]); err != nil {
			return i, fmt.Errorf("%w: save document %s: %w", domain.ErrStoreUnavailable, docs[i].ID, err)
		}
	}
	logger.Info("Imported %d documents", len(docs))
	return len(docs), nil
}

// Open opens the document's permalink in the default browser.
func (s *DocumentService) Open(ctx context.Context, documentID string) error {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	target := resolvePermalink(doc.Permalink, s.siteURL)
	if target == "" {
		return fmt.Errorf("%w: document %s has no permalink", domain.ErrInvalidInput, documentID)
	}
	return s.open(target)
}

// resolvePermalink makes a relative permalink absolute against siteURL.
func resolvePermalink(permalink, siteURL string) string {
	if permalink == "" {
		return ""
	}
	ref, err := url.Parse(permalink)
	if err != nil || ref.IsAbs() || siteURL == "" {
		return permalink
	}
	base, err := url.Parse(siteURL)
	if err != nil {
		return permalink
	}
	return base.ResolveReference(ref).String()
}

// openURL opens a URL using the system default handler.
func openURL(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
