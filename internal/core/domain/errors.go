package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// The typed errors below unwrap to one of these, so callers can match
// with errors.Is and inspect details with errors.As.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuery indicates a retrieval call without query text.
	ErrEmptyQuery = errors.New("query is empty")

	// Ingestion Errors.

	// ErrFetch indicates the source could not be retrieved.
	ErrFetch = errors.New("fetch failed")

	// ErrUnsupportedFormat indicates a path suffix no chunker handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrFormat indicates malformed document content.
	ErrFormat = errors.New("format error")

	// Provider Errors.

	// ErrEmbedding indicates the embedding provider failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrEmbeddingUnavailable indicates no embedding provider is configured or reachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates a vector of the wrong length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreUnavailable indicates the vector store is not configured or unreachable.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)

// FetchError reports a source that could not be retrieved:
// a network failure, a non-2xx status or a timeout.
type FetchError struct {
	Location string

	// StatusCode is set for non-2xx HTTP responses.
	StatusCode int

	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Location, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error { return e.Err }

// Is matches ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// UnsupportedFormatError reports a path whose suffix selects no chunker.
type UnsupportedFormatError struct {
	Path   string
	Suffix string
}

func (e *UnsupportedFormatError) Error() string {
	exts := make([]string, 0, len(AllFormats()))
	for _, f := range AllFormats() {
		exts = append(exts, f.Extension())
	}
	suffix := e.Suffix
	if suffix == "" {
		suffix = "(none)"
	}
	return fmt.Sprintf("unsupported format for %s: expected suffix %s, found %s",
		e.Path, strings.Join(exts, ", "), suffix)
}

// Is matches ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// FormatError reports document content that cannot be chunked.
// Expected and Found describe the mismatch for operators fixing the file.
type FormatError struct {
	Format   Format
	Reason   string
	Expected string
	Found    string
	Err      error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	b.WriteString(e.Format.Description())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Expected != "" || e.Found != "" {
		fmt.Fprintf(&b, " (expected %s, found %s)", orUnknown(e.Expected), orUnknown(e.Found))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the parser error, if any.
func (e *FormatError) Unwrap() error { return e.Err }

// Is matches ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// EmbeddingError reports a failed call to the embedding provider.
type EmbeddingError struct {
	Provider string
	Model    string

	// StatusCode is set when the provider answered with an HTTP error.
	StatusCode int

	Err error
}

func (e *EmbeddingError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("embedding %s/%s: status %d: %v", e.Provider, e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("embedding %s/%s: %v", e.Provider, e.Model, e.Err)
}

// Unwrap returns the provider error.
func (e *EmbeddingError) Unwrap() error { return e.Err }

// Is matches ErrEmbedding.
func (e *EmbeddingError) Is(target error) bool { return target == ErrEmbedding }

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
