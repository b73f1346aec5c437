// Package milvus provides a vector store on a Milvus collection.
package milvus

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Collection fields.
const (
	FieldID        = "id"
	FieldText      = "text"
	FieldSource    = "source"
	FieldLocation  = "location"
	FieldTag       = "tag"
	FieldEmbedding = "embedding"

	countField = "count(*)"
)

// Default configuration values.
const (
	DefaultAddress    = "localhost:19530"
	DefaultCollection = "embedded_documents"
	DefaultNList      = 128
	DefaultNProbe     = 10
)

var outputFields = []string{FieldID, FieldText, FieldSource, FieldLocation, FieldTag}

// Config holds configuration for the Milvus store.
type Config struct {
	// Address is the Milvus gRPC endpoint (default: localhost:19530).
	Address string

	// Collection is the collection name (default: embedded_documents).
	Collection string

	// Dimensions is the vector field size (default: 768).
	Dimensions int
}

// Store is a Milvus-backed vector store.
type Store struct {
	client     client.Client
	collection string
	dimensions int
}

// Connect dials Milvus and prepares the collection.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to milvus at %s: %w", domain.ErrStoreUnavailable, cfg.Address, err)
	}
	s, err := NewStore(ctx, c, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps a connected client, creating and indexing the collection
// if needed, then loading it for search.
func NewStore(ctx context.Context, c client.Client, cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = domain.EmbeddingDimensions
	}

	s := &Store{client: c, collection: cfg.Collection, dimensions: cfg.Dimensions}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %s: %w", domain.ErrStoreUnavailable, s.collection, err)
	}

	if !exists {
		logger.Info("milvus: creating collection %s", s.collection)
		if err := s.client.CreateCollection(ctx, s.schema(), entity.DefaultShardNumber,
			client.WithConsistencyLevel(entity.ClStrong)); err != nil {
			return fmt.Errorf("creating collection %s: %w", s.collection, err)
		}
		idx, err := entity.NewIndexIvfFlat(entity.COSINE, DefaultNList)
		if err != nil {
			return fmt.Errorf("building index: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("creating index on %s: %w", FieldEmbedding, err)
		}
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("loading collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *Store) schema() *entity.Schema {
	return entity.NewSchema().
		WithName(s.collection).
		WithDescription("sercha-rag embedded chunks").
		WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(64).WithIsPrimaryKey(true)).
		WithField(entity.NewField().WithName(FieldText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
		WithField(entity.NewField().WithName(FieldSource).WithDataType(entity.FieldTypeVarChar).WithMaxLength(1024)).
		WithField(entity.NewField().WithName(FieldLocation).WithDataType(entity.FieldTypeVarChar).WithMaxLength(1024)).
		WithField(entity.NewField().WithName(FieldTag).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
		WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(s.dimensions)))
}

// Add inserts all chunks in one Insert call.
func (s *Store) Add(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := vecmath.CheckDimensions(chunks, s.dimensions); err != nil {
		return err
	}

	n := len(chunks)
	ids := make([]string, n)
	texts := make([]string, n)
	sources := make([]string, n)
	locations := make([]string, n)
	tags := make([]string, n)
	vectors := make([][]float32, n)
	for i, c := range chunks {
		ids[i] = uuid.NewString()
		texts[i] = c.Text
		sources[i] = c.Metadata.Source
		locations[i] = c.Metadata.Location
		tags[i] = c.Metadata.Tag
		vectors[i] = c.Embedding
	}

	_, err := s.client.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnVarChar(FieldText, texts),
		entity.NewColumnVarChar(FieldSource, sources),
		entity.NewColumnVarChar(FieldLocation, locations),
		entity.NewColumnVarChar(FieldTag, tags),
		entity.NewColumnFloatVector(FieldEmbedding, s.dimensions, vectors),
	)
	if err != nil {
		return fmt.Errorf("inserting into %s: %w", s.collection, err)
	}

	logger.Debug("milvus: inserted %d chunks into %s", n, s.collection)
	return nil
}

// Search returns the k nearest chunks by cosine similarity.
func (s *Store) Search(ctx context.Context, vector []float32, k int, filter domain.Filter) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(DefaultNProbe)
	if err != nil {
		return nil, fmt.Errorf("building search params: %w", err)
	}

	results, err := s.client.Search(ctx, s.collection, []string{}, FilterExpr(filter), outputFields,
		[]entity.Vector{entity.FloatVector(vector)}, FieldEmbedding, entity.COSINE, k, sp)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", s.collection, err)
	}

	scored := []domain.ScoredChunk{}
	for _, res := range results {
		cols := map[string][]string{}
		for _, name := range outputFields {
			col, ok := findColumn(res.Fields, name).(*entity.ColumnVarChar)
			if !ok {
				return nil, fmt.Errorf("search result missing field %s", name)
			}
			cols[name] = col.Data()
		}
		for i := 0; i < res.ResultCount; i++ {
			scored = append(scored, domain.ScoredChunk{
				ID: cols[FieldID][i],
				Chunk: domain.Chunk{
					Text: cols[FieldText][i],
					Metadata: domain.Metadata{
						Source:   cols[FieldSource][i],
						Location: cols[FieldLocation][i],
						Tag:      cols[FieldTag][i],
					},
				},
				Score: float64(res.Scores[i]),
			})
		}
	}
	return scored, nil
}

// Count returns the number of chunks matching filter.
func (s *Store) Count(ctx context.Context, filter domain.Filter) (int, error) {
	rs, err := s.client.Query(ctx, s.collection, []string{}, FilterExpr(filter), []string{countField})
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", s.collection, err)
	}
	col, ok := findColumn(rs, countField).(*entity.ColumnInt64)
	if !ok || len(col.Data()) == 0 {
		return 0, fmt.Errorf("count result missing from %s", s.collection)
	}
	return int(col.Data()[0]), nil
}

// Ping checks the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.ListCollections(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func findColumn(cols []entity.Column, name string) entity.Column {
	for _, c := range cols {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

var exprQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// FilterExpr renders a filter as a Milvus boolean expression.
// An unrestricted filter is the empty expression.
func FilterExpr(filter domain.Filter) string {
	if !filter.HasTag() {
		return ""
	}
	return fmt.Sprintf(`%s == "%s"`, FieldTag, exprQuoter.Replace(*filter.Tag))
}
