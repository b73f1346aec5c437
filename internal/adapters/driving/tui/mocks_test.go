package tui

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error
	last    domain.RetrievalQuery
}

func (m *mockRetrievalService) Retrieve(_ context.Context, q domain.RetrievalQuery) ([]domain.RetrievalResult, error) {
	m.last = q
	return m.results, m.err
}

type mockIngestionService struct {
	chunks int
	err    error
}

func (m *mockIngestionService) Ingest(context.Context, domain.IngestRequest) (int, error) {
	return m.chunks, m.err
}

func (m *mockIngestionService) IngestManifest(context.Context, domain.Manifest) ([]domain.IngestReport, error) {
	return nil, nil
}

type mockStatusService struct {
	status *domain.Status
}

func (m *mockStatusService) Status(context.Context) (*domain.Status, error) {
	return m.status, nil
}
