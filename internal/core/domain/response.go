package domain

import "fmt"

// ResponseStatus tags the outcome of parsing an external API response.
type ResponseStatus int

// Available response statuses.
const (
	// ResponseSuccess means the response parsed into the expected data.
	ResponseSuccess ResponseStatus = iota

	// ResponseMalformed means the call succeeded but the payload had the wrong shape.
	ResponseMalformed

	// ResponseUpstreamFailure means the call itself failed (network, timeout, non-2xx).
	ResponseUpstreamFailure
)

// String returns the string representation.
func (s ResponseStatus) String() string {
	switch s {
	case ResponseSuccess:
		return "success"
	case ResponseMalformed:
		return "malformed"
	case ResponseUpstreamFailure:
		return "upstream_failure"
	default:
		return "unknown"
	}
}

// ParsedResponse is a tagged variant: exactly one of Success (with Data),
// Malformed or UpstreamFailure (with Reason).
type ParsedResponse[T any] struct {
	Status ResponseStatus
	Data   T
	Reason string
}

// Success wraps successfully parsed data.
func Success[T any](data T) ParsedResponse[T] {
	return ParsedResponse[T]{Status: ResponseSuccess, Data: data}
}

// Malformed records a response that could not be interpreted.
func Malformed[T any](reason string) ParsedResponse[T] {
	return ParsedResponse[T]{Status: ResponseMalformed, Reason: reason}
}

// UpstreamFailure records a failed call.
func UpstreamFailure[T any](reason string) ParsedResponse[T] {
	return ParsedResponse[T]{Status: ResponseUpstreamFailure, Reason: reason}
}

// OK reports whether the response parsed successfully.
func (r ParsedResponse[T]) OK() bool {
	return r.Status == ResponseSuccess
}

// Err converts a failed response into an error wrapping ErrMalformedResponse
// or ErrUpstream. It returns nil on success.
func (r ParsedResponse[T]) Err() error {
	switch r.Status {
	case ResponseSuccess:
		return nil
	case ResponseMalformed:
		return fmt.Errorf("%w: %s", ErrMalformedResponse, r.Reason)
	default:
		return fmt.Errorf("%w: %s", ErrUpstream, r.Reason)
	}
}
