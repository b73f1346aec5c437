package watch

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type mockIngestionService struct {
	mu       sync.Mutex
	requests []domain.IngestRequest
	chunks   int
	err      error
}

func (m *mockIngestionService) Ingest(_ context.Context, req domain.IngestRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.chunks, m.err
}

func (m *mockIngestionService) IngestManifest(context.Context, domain.Manifest) ([]domain.IngestReport, error) {
	return nil, nil
}

func (m *mockIngestionService) calls() []domain.IngestRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.IngestRequest(nil), m.requests...)
}
