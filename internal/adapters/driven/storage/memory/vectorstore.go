package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore using
// brute-force cosine similarity. Contents are lost on exit.
type VectorStore struct {
	mu         sync.RWMutex
	dimensions int
	chunks     []domain.EmbeddedChunk
	closed     bool
}

// NewVectorStore creates an empty store for vectors of the given size.
func NewVectorStore(dimensions int) *VectorStore {
	if dimensions <= 0 {
		dimensions = domain.EmbeddingDimensions
	}
	return &VectorStore{dimensions: dimensions}
}

// Add stores chunks with fresh IDs. The batch is all-or-nothing.
func (s *VectorStore) Add(_ context.Context, chunks []domain.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := vecmath.CheckDimensions(chunks, s.dimensions); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreUnavailable
	}
	for _, c := range chunks {
		c.ID = uuid.NewString()
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.chunks = append(s.chunks, c)
	}
	return nil
}

// Search returns up to k chunks nearest to vector that match filter.
func (s *VectorStore) Search(ctx context.Context, vector []float32, k int, filter domain.Filter) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrStoreUnavailable
	}

	scored := make([]domain.ScoredChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !filter.Matches(c.Metadata) {
			continue
		}
		scored = append(scored, domain.ScoredChunk{
			ID:    c.ID,
			Chunk: c.Chunk,
			Score: vecmath.Cosine(vector, c.Embedding),
		})
	}
	return vecmath.TopK(scored, k), nil
}

// Count returns the number of stored chunks matching filter.
func (s *VectorStore) Count(_ context.Context, filter domain.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.chunks {
		if filter.Matches(c.Metadata) {
			n++
		}
	}
	return n, nil
}

// Ping reports whether the store is open.
func (s *VectorStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreUnavailable
	}
	return nil
}

// Close drops all stored chunks.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.closed = true
	return nil
}
