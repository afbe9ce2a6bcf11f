package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clusterlink/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

func TestDocumentService_List(t *testing.T) {
	store := memory.NewDocumentStore(
		domain.Document{ID: "2", Type: "post", Title: "b"},
		domain.Document{ID: "10", Type: "page", Title: "c"},
		domain.Document{ID: "1", Type: "post", Title: "a"},
	)
	svc := NewDocumentService(store, store, "")

	docs, err := svc.List(context.Background(), domain.DocumentFilter{Types: []string{"post"}})

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, "2", docs[1].ID)
}

func TestDocumentService_List_StoreError(t *testing.T) {
	store := memory.NewDocumentStore()
	store.Err = errors.New("offline")
	svc := NewDocumentService(store, nil, "")

	_, err := svc.List(context.Background(), domain.DocumentFilter{})

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestDocumentService_Get(t *testing.T) {
	store := memory.NewDocumentStore(domain.Document{ID: "1", Title: "Pillar"})
	svc := NewDocumentService(store, nil, "")

	doc, err := svc.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Pillar", doc.Title)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("saves with defaults", func(t *testing.T) {
		store := memory.NewDocumentStore()
		svc := NewDocumentService(store, store, "")

		n, err := svc.Import(ctx, []domain.Document{{ID: " 5 ", Title: "five"}, {ID: "6", Type: "local_trouble"}})

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		doc, err := store.GetDocument(ctx, "5")
		require.NoError(t, err)
		assert.Equal(t, "post", doc.Type)
		assert.Equal(t, "publish", doc.Status)
	})

	t.Run("read-only store", func(t *testing.T) {
		store := memory.NewDocumentStore()
		svc := NewDocumentService(store, nil, "")

		_, err := svc.Import(ctx, []domain.Document{{ID: "1"}})

		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("missing id saves nothing", func(t *testing.T) {
		store := memory.NewDocumentStore()
		svc := NewDocumentService(store, store, "")

		_, err := svc.Import(ctx, []domain.Document{{ID: "1"}, {Title: "no id"}})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = store.GetDocument(ctx, "1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		store := memory.NewDocumentStore()
		svc := NewDocumentService(store, store, "")

		_, err := svc.Import(ctx, []domain.Document{{ID: "1"}, {ID: "1"}})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestDocumentService_Open(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocumentStore(
		domain.Document{ID: "1", Permalink: "/guides/leak/"},
		domain.Document{ID: "2"},
	)
	svc := NewDocumentService(store, nil, "https://example.com")

	var opened string
	svc.open = func(target string) error {
		opened = target
		return nil
	}

	require.NoError(t, svc.Open(ctx, "1"))
	assert.Equal(t, "https://example.com/guides/leak/", opened)

	assert.ErrorIs(t, svc.Open(ctx, "2"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Open(ctx, "3"), domain.ErrNotFound)
}

func TestResolvePermalink(t *testing.T) {
	tests := []struct {
		name      string
		permalink string
		siteURL   string
		expected  string
	}{
		{name: "absolute passthrough", permalink: "https://a.example/x", siteURL: "https://b.example", expected: "https://a.example/x"},
		{name: "relative resolved", permalink: "/x/", siteURL: "https://b.example/", expected: "https://b.example/x/"},
		{name: "relative without site", permalink: "/x/", expected: "/x/"},
		{name: "empty", permalink: "", siteURL: "https://b.example", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolvePermalink(tt.permalink, tt.siteURL))
		})
	}
}
