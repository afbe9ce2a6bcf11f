package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

func seedDocuments() *DocumentStore {
	return NewDocumentStore(
		domain.Document{ID: "10", Type: "post", Title: "Ten", Fields: map[string]string{"pillar_keywords": "a"}},
		domain.Document{ID: "9", Type: "post", Title: "Nine"},
		domain.Document{ID: "11", Type: "page", Title: "Eleven"},
		domain.Document{ID: "2", Type: "local_trouble", Title: "Two", Fields: map[string]string{"pillar_keywords": "b"}},
	)
}

func ids(docs []domain.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestDocumentStore_GetDocument(t *testing.T) {
	store := seedDocuments()
	ctx := context.Background()

	doc, err := store.GetDocument(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, "Nine", doc.Title)

	_, err = store.GetDocument(ctx, "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_FindDocuments(t *testing.T) {
	store := seedDocuments()
	ctx := context.Background()

	tests := []struct {
		name     string
		filter   domain.DocumentFilter
		expected []string
	}{
		{"all in numeric order", domain.DocumentFilter{}, []string{"2", "9", "10", "11"}},
		{"types", domain.DocumentFilter{Types: []string{"post", "local_trouble"}}, []string{"2", "9", "10"}},
		{"has field", domain.DocumentFilter{HasField: "pillar_keywords"}, []string{"2", "10"}},
		{"exclude", domain.DocumentFilter{ExcludeIDs: []string{"2", "9"}}, []string{"10", "11"}},
		{"limit", domain.DocumentFilter{Limit: 2}, []string{"2", "9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := store.FindDocuments(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(docs))
		})
	}
}

func TestDocumentStore_FindDocumentsNewest(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewDocumentStore(
		domain.Document{ID: "1", Type: "post", UpdatedAt: base},
		domain.Document{ID: "2", Type: "post", UpdatedAt: base.Add(48 * time.Hour)},
		domain.Document{ID: "3", Type: "post", UpdatedAt: base.Add(24 * time.Hour)},
		domain.Document{ID: "4", Type: "post", UpdatedAt: base.Add(48 * time.Hour)},
	)
	ctx := context.Background()

	tests := []struct {
		name     string
		filter   domain.DocumentFilter
		expected []string
	}{
		{"newest first, ties by id", domain.DocumentFilter{Newest: true}, []string{"2", "4", "3", "1"}},
		{"limit keeps latest", domain.DocumentFilter{Newest: true, Limit: 2}, []string{"2", "4"}},
		{"id order limit keeps oldest ids", domain.DocumentFilter{Limit: 2}, []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := store.FindDocuments(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(docs))
		})
	}
}

func TestDocumentStore_GetField(t *testing.T) {
	store := seedDocuments()
	ctx := context.Background()

	v, err := store.GetField(ctx, "10", "pillar_keywords")
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, err = store.GetField(ctx, "9", "pillar_keywords")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestDocumentStore_InsertContent(t *testing.T) {
	store := NewDocumentStore(domain.Document{ID: "1", Content: "<p>body</p>"}, domain.Document{ID: "2"})
	ctx := context.Background()

	require.NoError(t, store.InsertContent(ctx, "1", "see <a href=\"/x\">x</a>"))
	doc, err := store.GetDocument(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "<p>body</p>\n<p>see <a href=\"/x\">x</a></p>", doc.Content)

	require.NoError(t, store.InsertContent(ctx, "2", "frag"))
	doc, err = store.GetDocument(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "<p>frag</p>", doc.Content)

	assert.ErrorIs(t, store.InsertContent(ctx, "404", "x"), domain.ErrNotFound)
}

func TestDocumentStore_ReturnsCopies(t *testing.T) {
	store := seedDocuments()
	ctx := context.Background()

	doc, err := store.GetDocument(ctx, "10")
	require.NoError(t, err)
	doc.Fields["pillar_keywords"] = "mutated"

	v, err := store.GetField(ctx, "10", "pillar_keywords")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestDocumentStore_SimulatedError(t *testing.T) {
	store := seedDocuments()
	store.Err = errors.New("connection refused")
	ctx := context.Background()

	_, err := store.FindDocuments(ctx, domain.DocumentFilter{})
	assert.Error(t, err)
	_, err = store.GetDocument(ctx, "10")
	assert.Error(t, err)
	assert.Error(t, store.InsertContent(ctx, "10", "x"))
}
