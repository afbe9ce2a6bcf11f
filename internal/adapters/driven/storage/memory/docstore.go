package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/markup"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore  = (*DocumentStore)(nil)
	_ driven.DocumentWriter = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory content store.
// Documents are returned in ascending ID order.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document

	// Err, when set, is returned by every call. Used to simulate outages.
	Err error
}

// NewDocumentStore creates a store holding docs.
func NewDocumentStore(docs ...domain.Document) *DocumentStore {
	s := &DocumentStore{documents: make(map[string]domain.Document, len(docs))}
	for _, d := range docs {
		s.documents[d.ID] = cloneDocument(d)
	}
	return s
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = cloneDocument(*doc)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc = cloneDocument(doc)
	return &doc, nil
}

// FindDocuments returns documents matching the filter.
func (s *DocumentStore) FindDocuments(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document
	for _, doc := range s.documents {
		if filter.Matches(&doc) {
			docs = append(docs, cloneDocument(doc))
		}
	}
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

// InsertContent appends fragment to the document body.
func (s *DocumentStore) InsertContent(_ context.Context, id, fragment string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Content = markup.AppendParagraph(doc.Content, fragment)
	s.documents[id] = doc
	return nil
}

func cloneDocument(d domain.Document) domain.Document {
	if d.Fields != nil {
		fields := make(map[string]string, len(d.Fields))
		for k, v := range d.Fields {
			fields[k] = v
		}
		d.Fields = fields
	}
	return d
}
