package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService embeds queries and searches the vector store.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	timeout  time.Duration
}

// NewRetrievalService creates a retrieval service.
// A non-positive timeout uses domain.DefaultRetrievalTimeout.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	timeout time.Duration,
) *RetrievalService {
	if timeout <= 0 {
		timeout = domain.DefaultRetrievalTimeout
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		timeout:  timeout,
	}
}

type searchOutcome struct {
	hits  []domain.ScoredChunk
	err   error
	embed bool
}

// Retrieve returns up to ClampK(q.K) chunks nearest to the query, best first.
// Embedding and search share the timeout: outliving it yields an empty
// result and no error. Other embedding and store failures are returned.
func (s *RetrievalService) Retrieve(ctx context.Context, q domain.RetrievalQuery) ([]domain.RetrievalResult, error) {
	logger.Section("Retrieval")

	query := strings.TrimSpace(q.Query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.RetrievalResult{}, nil
	}

	k := domain.ClampK(q.K)
	filter := domain.Filter{Tag: q.Tag}
	logger.Debug("Query: %q, k=%d (requested %d), tag filter: %v", query, k, q.K, filter.HasTag())

	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Neither the embedder nor the store may honour cancellation, so the
	// wait itself is bounded.
	done := make(chan searchOutcome, 1)
	started := time.Now()
	go func() {
		vector, err := s.embedder.Embed(searchCtx, query)
		if err != nil {
			done <- searchOutcome{err: err, embed: true}
			return
		}
		hits, err := s.store.Search(searchCtx, vector, k, filter)
		done <- searchOutcome{hits: hits, err: err}
	}()

	var outcome searchOutcome
	select {
	case outcome = <-done:
	case <-searchCtx.Done():
		return s.timedOut(ctx, started)
	}

	if outcome.err != nil {
		if errors.Is(outcome.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return s.timedOut(ctx, started)
		}
		if outcome.embed {
			return nil, fmt.Errorf("retrieve: %w", outcome.err)
		}
		return nil, fmt.Errorf("retrieve: search: %w", outcome.err)
	}

	results := make([]domain.RetrievalResult, 0, len(outcome.hits))
	for i := range outcome.hits {
		results = append(results, domain.RetrievalResult{
			Text:     outcome.hits[i].Chunk.Text,
			Metadata: outcome.hits[i].Chunk.Metadata,
		})
	}
	logger.Debug("Retrieved %d results in %s", len(results), time.Since(started))

	return results, nil
}

// timedOut converts the search deadline into an empty result.
// Cancellation of the caller's own context is still reported.
func (s *RetrievalService) timedOut(ctx context.Context, started time.Time) ([]domain.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	logger.Warn("retrieval exceeded %s (after %s), returning no results",
		s.timeout, time.Since(started).Round(time.Millisecond))
	return []domain.RetrievalResult{}, nil
}
