package domain

import (
	"errors"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates a required setting is missing.
	// Callers fall back to an alternative strategy where one exists.
	ErrConfiguration = errors.New("configuration incomplete")

	// ErrUpstream indicates an external API failed (network, timeout, non-2xx).
	ErrUpstream = errors.New("upstream service failed")

	// ErrMalformedResponse indicates an external API answered but the
	// response did not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Link text and keyword ideas fall back to templates and patterns.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Data Errors.

	// ErrNoPillars indicates no document carries pillar keywords.
	// This is informational: a proposal run simply produces no entries.
	ErrNoPillars = errors.New("no pillar documents found")

	// ErrNoKeywords indicates a keyword field was present but yielded no tokens.
	ErrNoKeywords = errors.New("no keywords")

	// Storage Errors.

	// ErrStoreUnavailable indicates the content or proposal store could not be read or written.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrLinkBudgetExhausted indicates the document already holds the maximum number of links.
	ErrLinkBudgetExhausted = errors.New("link budget exhausted")
)

// ConfigurationError lists the settings a component is missing.
// It matches ErrConfiguration with errors.Is.
type ConfigurationError struct {
	Component string
	Missing   []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Component + ": " + ErrConfiguration.Error()
	}
	return e.Component + ": " + ErrConfiguration.Error() + " (missing " + strings.Join(e.Missing, ", ") + ")"
}

// Unwrap returns ErrConfiguration.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
