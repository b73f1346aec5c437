package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error

	lastQuery domain.RetrievalQuery
}

func (m *mockRetrievalService) Retrieve(_ context.Context, q domain.RetrievalQuery) ([]domain.RetrievalResult, error) {
	m.lastQuery = q
	return m.results, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	chunks int
	err    error

	lastRequest domain.IngestRequest
}

func (m *mockIngestionService) Ingest(_ context.Context, req domain.IngestRequest) (int, error) {
	m.lastRequest = req
	return m.chunks, m.err
}

func (m *mockIngestionService) IngestManifest(
	_ context.Context, _ domain.Manifest,
) ([]domain.IngestReport, error) {
	return nil, m.err
}

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	status *domain.Status
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (*domain.Status, error) {
	return m.status, m.err
}
