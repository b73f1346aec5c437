package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrievalService answers similarity queries against the vector store.
type RetrievalService interface {
	// Retrieve returns up to ClampK(q.K) results, best first.
	// A search that exceeds the retrieval timeout yields an empty slice and a nil error.
	Retrieve(ctx context.Context, q domain.RetrievalQuery) ([]domain.RetrievalResult, error)
}
