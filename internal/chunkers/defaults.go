package chunkers

import (
	"github.com/custodia-labs/sercha-rag/internal/chunkers/markdown"
	"github.com/custodia-labs/sercha-rag/internal/chunkers/pdf"
	"github.com/custodia-labs/sercha-rag/internal/chunkers/qa"
)

// RegisterDefaults registers the built-in PDF, Markdown and Q&A chunkers.
func RegisterDefaults(r *Registry) {
	r.Register(pdf.New())
	r.Register(markdown.New())
	r.Register(qa.New())
}

// Default returns a registry with the built-in chunkers.
func Default() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
