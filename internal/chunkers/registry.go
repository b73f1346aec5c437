// Package chunkers maps document formats to their chunkers.
package chunkers

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ChunkerRegistry = (*Registry)(nil)

// Registry maps formats to chunkers.
type Registry struct {
	chunkers map[domain.Format]driven.Chunker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		chunkers: make(map[domain.Format]driven.Chunker),
	}
}

// Register adds a chunker under its own format, replacing any previous one.
func (r *Registry) Register(c driven.Chunker) {
	r.chunkers[c.Format()] = c
}

// Get returns the chunker for a format.
func (r *Registry) Get(format domain.Format) (driven.Chunker, error) {
	c, ok := r.chunkers[format]
	if !ok {
		return nil, fmt.Errorf("%w: no chunker registered for %q", domain.ErrUnsupportedFormat, format)
	}
	return c, nil
}

// Has returns true if a chunker is registered for the format.
func (r *Registry) Has(format domain.Format) bool {
	_, ok := r.chunkers[format]
	return ok
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []domain.Format {
	formats := make([]domain.Format, 0, len(r.chunkers))
	for f := range r.chunkers {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
