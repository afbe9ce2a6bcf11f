package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskAPIKey(t *testing.T) {
	for input, want := range map[string]string{
		"":                                   "****",
		"abc123":                             "****",
		"12345678":                           "****",
		"sk-1234567890abcdef":                "sk-1...cdef",
		"sk-proj-1234567890abcdefghijklmnop": "sk-p...mnop",
	} {
		assert.Equal(t, want, maskAPIKey(input), "input %q", input)
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input      string
		defaultVal int
		want       int
	}{
		{input: "", defaultVal: 1, want: 1},
		{input: "3", defaultVal: 1, want: 3},
		{input: "1", defaultVal: 2, want: 1},
		{input: "5", defaultVal: 1, want: 5},
		{input: "0", defaultVal: 1, want: 1},
		{input: "6", defaultVal: 1, want: 1},
		{input: "-1", defaultVal: 1, want: 1},
		{input: "abc", defaultVal: 2, want: 2},
		{input: "   ", defaultVal: 1, want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseChoice(tt.input, 5, tt.defaultVal), "input %q", tt.input)
	}
}

func TestSettingsShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Linker]")
	assert.Contains(t, out, "Keyword field: pillar_keywords")
	assert.Contains(t, out, "Max links per document: 2")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Status: not configured (missing developer_token")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_NoService(t *testing.T) {
	SetServices(nil)

	_, err := execute("settings")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestSettingsSetCmd(t *testing.T) {
	env, cleanup := setupTestEnv()
	defer cleanup()

	out, err := execute("settings", "set", "linker.max_links", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "linker.max_links = 3")

	v, ok := env.config.Get("linker.max_links")
	require.True(t, ok)
	assert.EqualValues(t, 3, v)
}

func TestSettingsSetCmd_MasksSecrets(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "set", "llm.api_key", "sk-1234567890abcdef")

	require.NoError(t, err)
	assert.Contains(t, out, "llm.api_key = sk-1...cdef")
	assert.NotContains(t, out, "567890")
}

func TestSettingsSetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("settings", "set", "nope.key", "1")

	assert.Error(t, err)
}

func TestSettingsSetCmd_WarnsOnInvalidCombination(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "set", "store.backend", "wordpress")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "store.wordpress_url")
}

func TestSettingsKeysCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "linker.keyword_field")
	assert.Contains(t, out, "store.wordpress_app_password")
}

func TestSettingsLLMCmd_ConfiguresProvider(t *testing.T) {
	env, cleanup := setupTestEnv()
	defer cleanup()

	out, err := executeWithInput("2\n\nsk-ant-test-key-123\n", "settings", "llm")

	require.NoError(t, err)
	assert.Contains(t, out, "Validating configuration... OK")
	v, ok := env.config.Get("llm.provider")
	require.True(t, ok)
	assert.Equal(t, "anthropic", v)
}

func TestSettingsLLMCmd_RequiresAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput("1\n\n\n", "settings", "llm")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}
