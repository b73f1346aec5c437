package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorStore persists embedded chunks and performs similarity search.
// Implementations are safe for concurrent use.
type VectorStore interface {
	// Add stores a batch of embedded chunks in one write.
	// IDs are assigned by the store; any ID set by the caller is ignored.
	Add(ctx context.Context, chunks []domain.EmbeddedChunk) error

	// Search returns up to k stored chunks nearest to vector, best first.
	// Only chunks matching filter are eligible.
	Search(ctx context.Context, vector []float32, k int, filter domain.Filter) ([]domain.ScoredChunk, error)

	// Count returns the number of stored chunks matching filter.
	Count(ctx context.Context, filter domain.Filter) (int, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error

	// Close releases pooled connections.
	Close() error
}
