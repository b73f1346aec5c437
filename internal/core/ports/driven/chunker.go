package driven

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// Chunker splits the raw bytes of one document format into normalised chunks.
//
// Every returned chunk has non-empty text and carries opts.Source and opts.Tag.
// Malformed input is reported as *domain.FormatError.
type Chunker interface {
	// Format returns the document format this chunker handles.
	Format() domain.Format

	// Chunk splits raw into chunks.
	Chunk(raw []byte, opts domain.ChunkOptions) ([]domain.Chunk, error)
}

// ChunkerRegistry selects a chunker by format.
type ChunkerRegistry interface {
	// Get returns the chunker for a format.
	// The error wraps domain.ErrUnsupportedFormat if none is registered.
	Get(format domain.Format) (Chunker, error)
}
