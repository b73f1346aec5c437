package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestionService loads documents into the vector store.
type IngestionService interface {
	// Ingest fetches, chunks, embeds and stores one document.
	// Returns the number of chunks stored.
	Ingest(ctx context.Context, req domain.IngestRequest) (int, error)

	// IngestManifest ingests every manifest entry with bounded parallelism.
	// One report is returned per entry, in manifest order; a failed entry
	// does not stop the others.
	IngestManifest(ctx context.Context, m domain.Manifest) ([]domain.IngestReport, error)
}

// StatusService reports what the running instance is backed by.
type StatusService interface {
	Status(ctx context.Context) (*domain.Status, error)
}
