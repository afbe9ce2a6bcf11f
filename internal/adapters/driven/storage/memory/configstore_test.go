package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(map[string]any{"linker.max_links": 3}, map[string]any{"llm.model": "gpt-4o"})

	assert.Equal(t, 3, store.GetInt("linker.max_links"))
	assert.Equal(t, "gpt-4o", store.GetString("llm.model"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("s", "value"))
	require.NoError(t, store.Set("i64", int64(7)))
	require.NoError(t, store.Set("f", 0.25))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("list", []any{"post", 3, "page"}))

	assert.Equal(t, "value", store.GetString("s"))
	assert.Empty(t, store.GetString("i64"), "wrong type yields zero value")
	assert.Equal(t, 7, store.GetInt("i64"))
	assert.Equal(t, 0, store.GetInt("f"))
	assert.InDelta(t, 0.25, store.GetFloat("f"), 0.0001)
	assert.InDelta(t, 7.0, store.GetFloat("i64"), 0.0001)
	assert.Zero(t, store.GetFloat("missing"))
	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("s"))
	assert.Equal(t, []string{"post", "page"}, store.GetStringSlice("list"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SaveAndLoadAreNoOps(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}
