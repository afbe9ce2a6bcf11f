// Package logger provides verbose logging for the clusterlink CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to show which strategy produced each result.
// Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	logFile io.Writer
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// OpenFile appends every message, verbose or not, to the file at path
// with a timestamp. Close the returned file to stop.
func OpenFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	mu.Lock()
	logFile = f
	mu.Unlock()
	return closerFunc(func() error {
		mu.Lock()
		logFile = nil
		mu.Unlock()
		return f.Close()
	}), nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "[DEBUG] "+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	write(false, "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "[INFO] "+format+"\n", args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(false, "[WARN] "+format+"\n", args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(true, "[ERROR] "+format+"\n", args...)
}

func write(always bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose || always {
		fmt.Fprintf(output, format, args...)
	}
	if logFile != nil {
		fmt.Fprintf(logFile, time.Now().Format(time.RFC3339)+" "+format, args...)
	}
}
