package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.LinkHistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory append-only link history.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.LinkHistoryEntry
	nextID  int64
}

// NewHistoryStore creates an empty history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{nextID: 1}
}

// Append records an insertion.
func (s *HistoryStore) Append(_ context.Context, entry *domain.LinkHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID
	s.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries = append(s.entries, *entry)
	return nil
}

// List returns entries for a source document, oldest first.
func (s *HistoryStore) List(_ context.Context, documentID string) ([]domain.LinkHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.LinkHistoryEntry
	for _, e := range s.entries {
		if documentID == "" || e.SourceDocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}
