// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse reports a 200 response without a body.
	ErrEmptyResponse = errors.New("empty response")

	// ErrServiceError reports an error message embedded in a 200 response.
	ErrServiceError = errors.New("service error")

	// ErrMalformedResponse reports a body that is truncated or not in the
	// requested format.
	ErrMalformedResponse = errors.New("malformed response")
)

// ConfigError reports an invalid setting detected before any network call.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// RemoteError reports a failed or unusable esearch call. Queries are not
// retried.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// FetchError reports a chunk that still failed after all retries. Chunks
// fetched before it remain available to the caller.
type FetchError struct {
	// Index is the 1-based chunk number.
	Index int

	// Offset is the retstart of the failed chunk.
	Offset int

	// Attempts is the number of requests made for the chunk.
	Attempts int

	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("chunk %d at offset %d failed after %d attempt(s): %v",
		e.Index, e.Offset, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
