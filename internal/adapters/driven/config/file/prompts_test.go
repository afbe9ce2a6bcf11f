package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

var testDefaults = map[string]string{
	driven.PromptLinkText:       "excerpt %s title %s url %s",
	driven.PromptLinkTextSystem: "system prompt",
}

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)
	return store, dir
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("", nil)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".clusterlink", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, err := store.Load(driven.PromptLinkText)
	require.NoError(t, err)

	for _, f := range []string{"link_text.txt", "link_text_system.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "link_text_system.txt")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "カスタム %s %s %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "link_text.txt"), []byte(custom+"\n"), 0600))

	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptLinkText)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, _ = store.Load(driven.PromptLinkText)
	require.NoError(t, os.Remove(filepath.Join(dir, "link_text.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptLinkText)
	require.NoError(t, err)
	assert.Equal(t, testDefaults[driven.PromptLinkText], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("nonexistent_prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	store, dir := newTestPromptStore(t)

	first, err := store.Load(driven.PromptLinkTextSystem)
	require.NoError(t, err)
	assert.Equal(t, "system prompt", first)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "link_text_system.txt"), []byte("edited"), 0600))
	cached, err := store.Load(driven.PromptLinkTextSystem)
	require.NoError(t, err)
	assert.Equal(t, "system prompt", cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptLinkTextSystem)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "link_text_system.txt")
	require.NoError(t, os.WriteFile(path, []byte("mine"), 0600))

	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptLinkText)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}

func TestPromptStore_Watch_ReloadsOnChange(t *testing.T) {
	store, dir := newTestPromptStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx, ready) }()
	<-ready

	prompt, err := store.Load(driven.PromptLinkTextSystem)
	require.NoError(t, err)
	assert.Equal(t, "system prompt", prompt)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "link_text_system.txt"), []byte("watched"), 0600))

	assert.Eventually(t, func() bool {
		p, err := store.Load(driven.PromptLinkTextSystem)
		return err == nil && p == "watched"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, _ := newTestPromptStore(t)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptLinkText)
			assert.NoError(t, err)
			assert.Equal(t, testDefaults[driven.PromptLinkText], prompt)
			store.Reload()
		}()
	}
	wg.Wait()
}
