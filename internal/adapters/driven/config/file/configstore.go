package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultDirName is the directory under the user's home holding config,
// prompts and the database.
const DefaultDirName = ".clusterlink"

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Keys are dotted ("llm.api_key") in memory and written as nested tables.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.clusterlink/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, DefaultDirName)
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// valueAs returns the value at key when it holds a T.
func valueAs[T any](s *ConfigStore, key string) (T, bool) {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := val.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	v, _ := valueAs[string](s, key)
	return v
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := valueAs[bool](s, key)
	return v
}

// GetInt retrieves an integer configuration value. TOML decodes
// integers as int64; values set at runtime may be plain ints.
func (s *ConfigStore) GetInt(key string) int {
	n, isFloat, ok := s.number(key)
	if !ok || isFloat {
		return 0
	}
	return int(n)
}

// GetFloat retrieves a floating point configuration value.
// Integers are accepted so "temperature = 1" reads as 1.0.
func (s *ConfigStore) GetFloat(key string) float64 {
	n, _, _ := s.number(key)
	return n
}

func (s *ConfigStore) number(key string) (n float64, isFloat, ok bool) {
	val, found := s.Get(key)
	if !found {
		return 0, false, false
	}
	switch v := val.(type) {
	case float64:
		return v, true, true
	case int64:
		return float64(v), false, true
	case int:
		return float64(v), false, true
	}
	return 0, false, false
}

// GetStringSlice retrieves a string slice configuration value.
// TOML arrays decode as []any; non-string items are skipped.
func (s *ConfigStore) GetStringSlice(key string) []string {
	if v, ok := valueAs[[]string](s, key); ok {
		return v
	}
	items, ok := valueAs[[]any](s, key)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// holds API keys
	return os.WriteFile(s.filePath, data, 0o600)
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.data = flattenMap(loaded, "")
	return nil
}

// nestMap converts dot-notation keys back into nested tables.
// E.g., {"a.b": 1} becomes {"a": {"b": 1}}.
func nestMap(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return result
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any, len(m))
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		nested, ok := value.(map[string]any)
		if !ok {
			result[key] = value
			continue
		}
		maps.Copy(result, flattenMap(nested, key))
	}
	return result
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
