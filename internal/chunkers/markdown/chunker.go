// Package markdown chunks Markdown documents by heading section.
package markdown

import (
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/chunkers/sniff"
	"github.com/custodia-labs/sercha-rag/internal/chunkers/splitter"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits Markdown into heading sections, then splits each section
// body with the recursive splitter. Chunk locations are the heading path
// joined with " > ", or "ROOT" for text before the first heading.
type Chunker struct{}

// New creates a Markdown chunker.
func New() *Chunker {
	return &Chunker{}
}

// Format returns domain.FormatMarkdown.
func (c *Chunker) Format() domain.Format {
	return domain.FormatMarkdown
}

// Chunk splits raw Markdown. Invalid UTF-8 sequences are dropped.
func (c *Chunker) Chunk(raw []byte, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	if ok, found := sniff.IsText(raw); !ok {
		return nil, &domain.FormatError{
			Format:   domain.FormatMarkdown,
			Reason:   "content is not text",
			Expected: "text/markdown",
			Found:    found,
		}
	}

	opts = opts.WithDefaults()
	s := splitter.New(splitter.WithChunkSize(opts.ChunkSize), splitter.WithOverlap(opts.ChunkOverlap))

	text := strings.ToValidUTF8(string(raw), "")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []domain.Chunk
	for _, section := range SplitSections(text) {
		body := strings.TrimSpace(section.Body)
		if body == "" {
			continue
		}
		location := section.Location()
		for _, piece := range s.Chunks(body) {
			chunks = append(chunks, opts.NewChunk(piece, location))
		}
	}
	return chunks, nil
}
