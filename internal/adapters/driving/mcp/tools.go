package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const retrievalDescription = `Retrieve relevant information from a curated document knowledge base
to ground responses with accurate and reliable sources.

Arguments:
  - query: refined from the user question
  - k: number of documents (higher for broad questions, lower for specific ones), max 20
  - tag: inferred from the question; omit to search every tag

Returns the matching document chunks, best first.`

// RetrievalInput is the input schema for the retrieval tool.
type RetrievalInput struct {
	Query string  `json:"query" jsonschema:"the question, refined for search"`
	K     int     `json:"k" jsonschema:"number of documents to return, 1 to 20"`
	Tag   *string `json:"tag,omitempty" jsonschema:"restrict results to documents with this tag"`
}

// RetrievalOutput is the output schema for the retrieval tool.
type RetrievalOutput struct {
	Documents []Document `json:"documents"`
}

// Document is one retrieved chunk.
type Document struct {
	Text     string          `json:"text"`
	Metadata domain.Metadata `json:"metadata"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Location     string `json:"location" jsonschema:"URL or file path ending in .pdf, .md or .json"`
	Tag          string `json:"tag" jsonschema:"tag stamped on every chunk"`
	ChunkSize    *int   `json:"chunk_size,omitempty" jsonschema:"maximum chunk length in characters (default 500)"`
	ChunkOverlap *int   `json:"chunk_overlap,omitempty" jsonschema:"characters shared by neighbouring chunks (default 50)"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Chunks int `json:"chunks"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieval",
		Title:       "Retrieve Relevant Documents",
		Description: retrievalDescription,
		Annotations: &mcp.ToolAnnotations{
			Title:        "Retrieve Relevant Documents",
			ReadOnlyHint: true,
		},
	}, s.handleRetrieval)

	if s.opts.AllowIngest {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Title:       "Ingest Document",
			Description: "Fetch a PDF, Markdown or JSON Q&A document, chunk it, embed it and store it under a tag.",
		}, s.handleIngest)
	}
}

// handleRetrieval handles the retrieval tool invocation.
func (s *Server) handleRetrieval(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrievalInput,
) (*mcp.CallToolResult, RetrievalOutput, error) {
	results, err := s.ports.Retrieval.Retrieve(ctx, domain.RetrievalQuery{
		Query: input.Query,
		K:     input.K,
		Tag:   input.Tag,
	})
	if err != nil {
		return nil, RetrievalOutput{}, err
	}

	output := RetrievalOutput{Documents: make([]Document, len(results))}
	for i := range results {
		output.Documents[i] = Document{
			Text:     results[i].Text,
			Metadata: results[i].Metadata,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	req := domain.IngestRequest{
		Location:     input.Location,
		Tag:          input.Tag,
		ChunkOverlap: -1,
	}
	if input.ChunkSize != nil {
		req.ChunkSize = *input.ChunkSize
	}
	if input.ChunkOverlap != nil {
		req.ChunkOverlap = *input.ChunkOverlap
	}

	n, err := s.ports.Ingestion.Ingest(ctx, req)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{Chunks: n}, nil
}
