package services

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

const statusTimeout = 5 * time.Second

// StatusService reports backend health.
type StatusService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	provider domain.EmbeddingProvider
	backend  domain.StoreBackend
}

// NewStatusService creates a status service.
func NewStatusService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	provider domain.EmbeddingProvider,
	backend domain.StoreBackend,
) *StatusService {
	return &StatusService{
		embedder: embedder,
		store:    store,
		provider: provider,
		backend:  backend,
	}
}

// Status pings both backends and counts stored chunks.
// Failures are reported in the result, never as an error.
func (s *StatusService) Status(ctx context.Context) (*domain.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	status := &domain.Status{
		EmbeddingProvider: s.provider.String(),
		EmbeddingModel:    s.embedder.ModelName(),
		Dimensions:        s.embedder.Dimensions(),
		StoreBackend:      s.backend.String(),
		Chunks:            -1,
	}

	if err := s.embedder.Ping(ctx); err != nil {
		logger.Warn("embedding service unreachable: %v", err)
	} else {
		status.EmbeddingOK = true
	}

	if err := s.store.Ping(ctx); err != nil {
		logger.Warn("vector store unreachable: %v", err)
		return status, nil
	}
	status.StoreOK = true

	if n, err := s.store.Count(ctx, domain.Filter{}); err == nil {
		status.Chunks = n
	} else {
		logger.Warn("counting chunks: %v", err)
	}

	return status, nil
}
