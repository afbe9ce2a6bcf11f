package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture redirects output to a buffer for the duration of the test.
func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose_Toggles(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		log     func()
		verbose string
		quiet   string
	}{
		{
			name:    "debug",
			log:     func() { Debug("strategy %s failed", "ai") },
			verbose: "[DEBUG] strategy ai failed\n",
		},
		{
			name:    "info",
			log:     func() { Info("%d pillars", 3) },
			verbose: "[INFO] 3 pillars\n",
		},
		{
			name:    "warn",
			log:     func() { Warn("falling back to %s", "template") },
			verbose: "[WARN] falling back to template\n",
		},
		{
			name:    "section",
			log:     func() { Section("Propose") },
			verbose: "\n=== Propose ===\n",
		},
		{
			name:    "error prints without verbose",
			log:     func() { Error("store: %s", "locked") },
			verbose: "[ERROR] store: locked\n",
			quiet:   "[ERROR] store: locked\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/verbose", func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			assert.Equal(t, tt.verbose, buf.String())
		})
		t.Run(tt.name+"/quiet", func(t *testing.T) {
			buf := capture(t, false)
			tt.log()
			assert.Equal(t, tt.quiet, buf.String())
		})
	}
}

func TestOpenFile_RecordsEveryLevel(t *testing.T) {
	capture(t, false)
	path := filepath.Join(t.TempDir(), "clusterlink.log")

	closer, err := OpenFile(path)
	require.NoError(t, err)

	Debug("matched %d candidates", 4)
	Error("upstream timeout")
	require.NoError(t, closer.Close())

	// nothing reaches the file after Close
	Info("after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[DEBUG] matched 4 candidates")
	assert.Contains(t, lines[1], "[ERROR] upstream timeout")
	assert.NotContains(t, string(data), "after close")
}

func TestOpenFile_Appends(t *testing.T) {
	capture(t, false)
	path := filepath.Join(t.TempDir(), "clusterlink.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o600))

	closer, err := OpenFile(path)
	require.NoError(t, err)
	Warn("second run")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "previous run\n"))
	assert.Contains(t, string(data), "[WARN] second run")
}

func TestOpenFile_BadPath(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing", "dir", "log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open log file")
}
