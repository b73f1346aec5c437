// Package pdf chunks PDF documents page by page.
package pdf

import (
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/chunkers/sniff"
	"github.com/custodia-labs/sercha-rag/internal/chunkers/splitter"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits each page's text with the recursive splitter.
// Chunk locations are "Page {n}", 1-indexed over all pages.
type Chunker struct {
	extractor PageExtractor
}

// Option configures the PDF chunker.
type Option func(*Chunker)

// WithExtractor replaces the page text extractor.
func WithExtractor(e PageExtractor) Option {
	return func(c *Chunker) {
		if e != nil {
			c.extractor = e
		}
	}
}

// New creates a PDF chunker.
func New(opts ...Option) *Chunker {
	c := &Chunker{extractor: plainTextExtractor{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format returns domain.FormatPDF.
func (c *Chunker) Format() domain.Format {
	return domain.FormatPDF
}

// Chunk extracts every page and splits pages that have text.
func (c *Chunker) Chunk(raw []byte, opts domain.ChunkOptions) ([]domain.Chunk, error) {
	if ok, found := sniff.IsPDF(raw); !ok {
		return nil, &domain.FormatError{
			Format:   domain.FormatPDF,
			Reason:   "content is not a PDF",
			Expected: sniff.PDFMime,
			Found:    found,
		}
	}

	pages, err := c.extractor.Pages(raw)
	if err != nil {
		return nil, &domain.FormatError{
			Format:   domain.FormatPDF,
			Reason:   "unreadable document",
			Expected: sniff.PDFMime,
			Found:    "damaged PDF",
			Err:      err,
		}
	}

	opts = opts.WithDefaults()
	s := splitter.New(splitter.WithChunkSize(opts.ChunkSize), splitter.WithOverlap(opts.ChunkOverlap))

	var chunks []domain.Chunk
	for i, text := range pages {
		if text == "" {
			continue
		}
		location := fmt.Sprintf("Page %d", i+1)
		for _, piece := range s.Chunks(text) {
			chunks = append(chunks, opts.NewChunk(piece, location))
		}
	}
	return chunks, nil
}
