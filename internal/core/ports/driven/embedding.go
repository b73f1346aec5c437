// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The model and dimensionality are fixed when the service is constructed;
// they are never per-call parameters. Provider failures are reported as
// *domain.EmbeddingError and are not retried.
//
// Implementations:
//   - Nomic (nomic-embed-text-v1.5, 768 dimensions)
//   - Ollama (nomic-embed-text)
//   - OpenAI (text-embedding-3-small reduced to 768 dimensions)
type EmbeddingService interface {
	// Embed generates a vector embedding for a query.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for document chunks, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
