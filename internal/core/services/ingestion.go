package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultConcurrency bounds manifest ingestion when nothing else does.
const DefaultConcurrency = 4

// IngestionConfig holds the collaborators and defaults of an IngestionService.
type IngestionConfig struct {
	Fetcher  driven.SourceFetcher
	Chunkers driven.ChunkerRegistry
	Embedder driven.EmbeddingService
	Store    driven.VectorStore

	// SourceLabel selects how chunk source labels are derived.
	SourceLabel domain.SourceLabelRule

	// Concurrency bounds IngestManifest; zero uses DefaultConcurrency.
	Concurrency int
}

// IngestionService fetches, chunks, embeds and stores documents.
type IngestionService struct {
	fetcher     driven.SourceFetcher
	chunkers    driven.ChunkerRegistry
	embedder    driven.EmbeddingService
	store       driven.VectorStore
	sourceLabel domain.SourceLabelRule
	concurrency int
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(cfg IngestionConfig) *IngestionService {
	if !cfg.SourceLabel.IsValid() {
		cfg.SourceLabel = domain.SourceLabelStem
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &IngestionService{
		fetcher:     cfg.Fetcher,
		chunkers:    cfg.Chunkers,
		embedder:    cfg.Embedder,
		store:       cfg.Store,
		sourceLabel: cfg.SourceLabel,
		concurrency: cfg.Concurrency,
	}
}

// Ingest loads one document and returns the number of chunks stored.
// The format is resolved from the suffix before anything is fetched.
// All chunks are embedded in one batch and written in one store call.
func (s *IngestionService) Ingest(ctx context.Context, req domain.IngestRequest) (int, error) {
	logger.Section("Ingestion")

	location := strings.TrimSpace(req.Location)
	if location == "" {
		return 0, fmt.Errorf("%w: location is empty", domain.ErrInvalidInput)
	}

	format, err := domain.FormatFromPath(location)
	if err != nil {
		return 0, err
	}
	chunker, err := s.chunkers.Get(format)
	if err != nil {
		return 0, err
	}

	opts := domain.ChunkOptions{
		Tag:          req.Tag,
		Source:       domain.SourceLabel(location, s.sourceLabel),
		ChunkSize:    req.ChunkSize,
		ChunkOverlap: req.ChunkOverlap,
	}.WithDefaults()
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	logger.Debug("Location: %s (format %s, source %q, tag %q, size %d, overlap %d)",
		location, format, opts.Source, opts.Tag, opts.ChunkSize, opts.ChunkOverlap)

	started := time.Now()
	raw, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		return 0, err
	}
	logger.Debug("Fetched %d bytes in %s", len(raw), time.Since(started))

	chunks, err := chunker.Chunk(raw, opts)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		logger.Debug("No text found in %s, nothing stored", location)
		return 0, nil
	}
	logger.Debug("Split into %d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, &domain.EmbeddingError{
			Model: s.embedder.ModelName(),
			Err:   fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors)),
		}
	}

	dims := s.embedder.Dimensions()
	embedded := make([]domain.EmbeddedChunk, len(chunks))
	for i := range chunks {
		if len(vectors[i]) != dims {
			return 0, fmt.Errorf("%w: chunk %d has %d dimensions, want %d",
				domain.ErrDimensionMismatch, i, len(vectors[i]), dims)
		}
		embedded[i] = domain.EmbeddedChunk{Chunk: chunks[i], Embedding: vectors[i]}
	}

	if err := s.store.Add(ctx, embedded); err != nil {
		return 0, fmt.Errorf("ingest: store: %w", err)
	}
	logger.Debug("Stored %d chunks from %s in %s", len(embedded), location, time.Since(started))

	return len(embedded), nil
}

// IngestManifest ingests every entry with at most m.Concurrency (or the
// service default) running at once. Each entry gets its own report; one
// failure does not stop the rest.
func (s *IngestionService) IngestManifest(ctx context.Context, m domain.Manifest) ([]domain.IngestReport, error) {
	if len(m.Documents) == 0 {
		return nil, fmt.Errorf("%w: manifest lists no documents", domain.ErrInvalidInput)
	}

	limit := m.Concurrency
	if limit <= 0 {
		limit = s.concurrency
	}
	logger.Debug("Ingesting %d documents, %d at a time", len(m.Documents), limit)

	reports := make([]domain.IngestReport, len(m.Documents))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, entry := range m.Documents {
		req := entry.Request(m.Tag)
		reports[i] = domain.IngestReport{Location: req.Location, Tag: req.Tag}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				reports[i].Err = err
				return nil
			}
			n, err := s.Ingest(ctx, req)
			reports[i].Chunks = n
			reports[i].Err = err
			if err != nil {
				logger.Warn("ingest %s failed: %v", req.Location, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return reports, nil
}
