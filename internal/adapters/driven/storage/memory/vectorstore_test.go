package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func embedded(text, tag string, vec ...float32) domain.EmbeddedChunk {
	return domain.EmbeddedChunk{
		Chunk:     domain.Chunk{Text: text, Metadata: domain.Metadata{Source: "src", Location: "Page 1", Tag: tag}},
		Embedding: vec,
	}
}

func TestVectorStore_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewVectorStore(2)

	require.NoError(t, s.Add(ctx, []domain.EmbeddedChunk{
		embedded("east", "A", 1, 0),
		embedded("north", "B", 0, 1),
		embedded("north-east", "A", 1, 1),
	}))

	results, err := s.Search(ctx, []float32{1, 0.1}, 2, domain.Filter{})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "east", results[0].Chunk.Text)
	assert.Equal(t, "north-east", results[1].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.NotEmpty(t, results[0].ID)
	assert.NotEqual(t, results[0].ID, results[1].ID)
}

func TestVectorStore_TagFilter(t *testing.T) {
	ctx := context.Background()
	s := NewVectorStore(2)
	require.NoError(t, s.Add(ctx, []domain.EmbeddedChunk{
		embedded("a1", "A", 1, 0),
		embedded("b1", "B", 1, 0),
		embedded("a2", "A", 0, 1),
	}))

	results, err := s.Search(ctx, []float32{1, 0}, 10, domain.TagFilter("A"))

	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "A", r.Chunk.Metadata.Tag)
	}

	n, err := s.Count(ctx, domain.TagFilter("B"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Count(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestVectorStore_DimensionMismatch(t *testing.T) {
	s := NewVectorStore(3)

	err := s.Add(context.Background(), []domain.EmbeddedChunk{
		embedded("ok", "A", 1, 2, 3),
		embedded("short", "A", 1, 2),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	n, _ := s.Count(context.Background(), domain.Filter{})
	assert.Zero(t, n)
}

func TestVectorStore_EmptyAndZeroK(t *testing.T) {
	ctx := context.Background()
	s := NewVectorStore(0)

	require.NoError(t, s.Add(ctx, nil))
	results, err := s.Search(ctx, make([]float32, domain.EmbeddingDimensions), 5, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search(ctx, nil, 0, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorStore_CancelledContext(t *testing.T) {
	s := NewVectorStore(1)
	require.NoError(t, s.Add(context.Background(), []domain.EmbeddedChunk{embedded("x", "A", 1)}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, []float32{1}, 1, domain.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVectorStore_Close(t *testing.T) {
	ctx := context.Background()
	s := NewVectorStore(1)
	require.NoError(t, s.Ping(ctx))

	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(ctx), domain.ErrStoreUnavailable)
	assert.ErrorIs(t, s.Add(ctx, []domain.EmbeddedChunk{embedded("x", "A", 1)}), domain.ErrStoreUnavailable)
	_, err := s.Search(ctx, []float32{1}, 1, domain.Filter{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
