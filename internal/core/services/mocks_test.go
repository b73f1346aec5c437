package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	pingErr   error
	dims      int

	// embedFn overrides Embed when set.
	embedFn func(ctx context.Context, text string) ([]float32, error)

	// batchFn overrides EmbedBatch when set.
	batchFn func(texts []string) ([][]float32, error)
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.batchFn != nil {
		return m.batchFn(texts)
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	mu sync.Mutex

	hits     []domain.ScoredChunk
	count    int
	addErr   error
	pingErr  error
	countErr error

	// searchFn overrides Search when set.
	searchFn func(ctx context.Context, k int, filter domain.Filter) ([]domain.ScoredChunk, error)

	added      [][]domain.EmbeddedChunk
	lastK      int
	lastFilter domain.Filter
}

func (m *mockVectorStore) Add(_ context.Context, chunks []domain.EmbeddedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, chunks)
	return nil
}

func (m *mockVectorStore) Search(
	ctx context.Context, _ []float32, k int, filter domain.Filter,
) ([]domain.ScoredChunk, error) {
	m.mu.Lock()
	m.lastK = k
	m.lastFilter = filter
	m.mu.Unlock()

	if m.searchFn != nil {
		return m.searchFn(ctx, k, filter)
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorStore) Count(_ context.Context, _ domain.Filter) (int, error) {
	return m.count, m.countErr
}

func (m *mockVectorStore) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockVectorStore) Close() error {
	return nil
}

func (m *mockVectorStore) batches() [][]domain.EmbeddedChunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.added
}

// mockFetcher implements driven.SourceFetcher for testing.
type mockFetcher struct {
	mu      sync.Mutex
	content map[string][]byte
	err     error
	calls   []string
}

func (m *mockFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, location)
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.content[location]
	if !ok {
		return nil, &domain.FetchError{Location: location, StatusCode: 404}
	}
	return data, nil
}

func (m *mockFetcher) fetched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// mockChunker implements driven.Chunker for testing.
type mockChunker struct {
	mu     sync.Mutex
	format domain.Format
	chunks []string
	err    error

	lastOpts domain.ChunkOptions
}

func (m *mockChunker) Format() domain.Format {
	return m.format
}

func (m *mockChunker) Chunk(_ []byte, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	m.mu.Lock()
	m.lastOpts = opts
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Chunk, len(m.chunks))
	for i, text := range m.chunks {
		out[i] = opts.NewChunk(text, "ROOT")
	}
	return out, nil
}

// mockRegistry implements driven.ChunkerRegistry for testing.
type mockRegistry map[domain.Format]driven.Chunker

func (m mockRegistry) Get(format domain.Format) (driven.Chunker, error) {
	c, ok := m[format]
	if !ok {
		return nil, domain.ErrUnsupportedFormat
	}
	return c, nil
}
