package file

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
	"github.com/custodia-labs/clusterlink/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Each prompt lives in <dir>/<name>.txt; missing files fall back to the
// defaults given at construction.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	defaults  map[string]string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a new file-based prompt store seeded with defaults.
// If promptDir is empty, defaults to ~/.clusterlink/prompts/.
func NewPromptStore(promptDir string, defaults map[string]string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, DefaultDirName, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		defaults:  maps.Clone(defaults),
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// Returns cached value if available, otherwise loads from file.
// Falls back to the default if the file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := s.defaults[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := s.defaults[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("empty file")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch reloads prompts whenever a file in the prompt directory changes.
// It blocks until ctx is done. ready, if non-nil, is closed once the
// watcher is registered.
func (s *PromptStore) Watch(ctx context.Context, ready chan<- struct{}) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".txt") {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				logger.Debug("Prompt file %s changed, reloading", filepath.Base(event.Name))
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Prompt watcher: %v", err)
		}
	}
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range s.defaults {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README listing the prompt files.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	var b strings.Builder
	b.WriteString("# clusterlink prompts\n\n")
	b.WriteString("Edit a file to change what is sent to the LLM. Changes are picked up\n")
	b.WriteString("on the next command, or immediately while `clusterlink mcp serve` runs.\n\n")
	b.WriteString("Keep the %s and %d placeholders in their original order.\n\n## Files\n\n")
	for _, name := range slices.Sorted(maps.Keys(s.defaults)) {
		fmt.Fprintf(&b, "- `%s.txt`\n", name)
	}
	return os.WriteFile(path, []byte(b.String()), 0600)
}
