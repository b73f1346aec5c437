package cli

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockRetrievalService records the last query and answers with fixed results.
type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error

	lastQuery domain.RetrievalQuery
	calls     int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, q domain.RetrievalQuery) ([]domain.RetrievalResult, error) {
	m.calls++
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockIngestionService records requests. IngestManifest builds one report
// per entry using ingestFn.
type mockIngestionService struct {
	mu       sync.Mutex
	requests []domain.IngestRequest
	manifest *domain.Manifest

	ingestFn func(req domain.IngestRequest) (int, error)
}

func (m *mockIngestionService) Ingest(_ context.Context, req domain.IngestRequest) (int, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.ingestFn != nil {
		return m.ingestFn(req)
	}
	return 3, nil
}

func (m *mockIngestionService) IngestManifest(ctx context.Context, man domain.Manifest) ([]domain.IngestReport, error) {
	m.mu.Lock()
	m.manifest = &man
	m.mu.Unlock()

	reports := make([]domain.IngestReport, 0, len(man.Documents))
	for _, d := range man.Documents {
		req := d.Request(man.Tag)
		n, err := m.Ingest(ctx, req)
		reports = append(reports, domain.IngestReport{Location: req.Location, Tag: req.Tag, Chunks: n, Err: err})
	}
	return reports, nil
}

func (m *mockIngestionService) Requests() []domain.IngestRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.IngestRequest(nil), m.requests...)
}

type mockStatusService struct {
	status *domain.Status
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (*domain.Status, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings domain.Settings
	values   map[string]string
	setErr   error
	getErr   error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultSettings(),
		values:   map[string]string{},
	}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Lookup(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockSettingsService) Keys() []string {
	keys := []string{"embedding.api_key", "embedding.provider", "retrieval.default_k", "store.backend", "store.dsn"}
	sort.Strings(keys)
	return keys
}

func (m *mockSettingsService) Path() string {
	return "/tmp/sercha-rag/config.toml"
}
