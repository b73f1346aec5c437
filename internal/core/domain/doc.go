// Package domain defines the core entities of sercha-rag.
//
// This package is the innermost layer of the hexagonal architecture.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: a normalised unit of text plus its metadata
//   - EmbeddedChunk: a Chunk with its embedding vector
//   - Format: the document kinds the chunkers understand
//   - RetrievalQuery / RetrievalResult: the query-time contract
//   - FetchError, FormatError, UnsupportedFormatError, EmbeddingError
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
