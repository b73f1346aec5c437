package domain

import "fmt"

// Default chunking parameters used when a caller leaves them unset.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// EmbeddingDimensions is the fixed vector size for every stored chunk.
const EmbeddingDimensions = 768

// Metadata locates a chunk within its origin document.
type Metadata struct {
	// Source is the label derived from the origin filename.
	Source string `json:"source"`

	// Location is "Page {n}", a heading breadcrumb, "ROOT" or "Q&A #{n}".
	Location string `json:"location"`

	// Tag is the caller-supplied classification label.
	Tag string `json:"tag"`
}

// Chunk is the atomic retrievable unit.
// Text is never empty.
type Chunk struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// EmbeddedChunk is a Chunk with its embedding, as persisted by a vector store.
type EmbeddedChunk struct {
	// ID is assigned by the store on insert.
	ID string

	Chunk

	// Embedding has EmbeddingDimensions entries.
	Embedding []float32
}

// ScoredChunk is a stored chunk returned by a similarity search.
type ScoredChunk struct {
	ID    string
	Chunk Chunk

	// Score is the similarity to the query vector; higher is closer.
	Score float64
}

// ChunkOptions carries the per-call inputs every chunker receives.
type ChunkOptions struct {
	Tag          string
	Source       string
	ChunkSize    int
	ChunkOverlap int
}

// WithDefaults replaces a non-positive ChunkSize with DefaultChunkSize and a
// negative ChunkOverlap with DefaultChunkOverlap. A zero overlap is kept.
func (o ChunkOptions) WithDefaults() ChunkOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkOverlap < 0 {
		o.ChunkOverlap = DefaultChunkOverlap
	}
	return o
}

// Validate reports whether the sizes can drive a splitter.
func (o ChunkOptions) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, o.ChunkSize)
	}
	if o.ChunkOverlap > o.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d is larger than chunk size %d",
			ErrInvalidInput, o.ChunkOverlap, o.ChunkSize)
	}
	return nil
}

// NewChunk builds a chunk carrying the options' source and tag.
func (o ChunkOptions) NewChunk(text, location string) Chunk {
	return Chunk{
		Text: text,
		Metadata: Metadata{
			Source:   o.Source,
			Location: location,
			Tag:      o.Tag,
		},
	}
}
