package chunkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type stubChunker struct {
	format domain.Format
	text   string
}

func (s *stubChunker) Format() domain.Format { return s.format }

func (s *stubChunker) Chunk(_ []byte, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	return []domain.Chunk{opts.NewChunk(s.text, "stub")}, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	require.NotNil(t, r)
	assert.Empty(t, r.Formats())
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubChunker{format: domain.FormatQA, text: "first"})

	c, err := r.Get(domain.FormatQA)
	require.NoError(t, err)
	chunks, err := c.Chunk(nil, domain.ChunkOptions{})
	require.NoError(t, err)
	assert.Equal(t, "first", chunks[0].Text)

	r.Register(&stubChunker{format: domain.FormatQA, text: "second"})
	c, err = r.Get(domain.FormatQA)
	require.NoError(t, err)
	chunks, err = c.Chunk(nil, domain.ChunkOptions{})
	require.NoError(t, err)
	assert.Equal(t, "second", chunks[0].Text)
}

func TestRegistry_GetUnknown(t *testing.T) {
	_, err := NewRegistry().Get(domain.FormatPDF)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestRegisterDefaults(t *testing.T) {
	r := Default()

	assert.Equal(t, []domain.Format{domain.FormatMarkdown, domain.FormatPDF, domain.FormatQA}, r.Formats())
	for _, f := range domain.AllFormats() {
		t.Run(string(f), func(t *testing.T) {
			c, err := r.Get(f)
			require.NoError(t, err)
			assert.Equal(t, f, c.Format())
		})
	}
}
