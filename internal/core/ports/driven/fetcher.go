package driven

import "context"

// SourceFetcher retrieves the complete content of a document.
// Failures are reported as *domain.FetchError. Implementations do not retry.
type SourceFetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}
