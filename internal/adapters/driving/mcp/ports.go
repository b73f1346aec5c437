package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers the retrieval tool.
	Retrieval driving.RetrievalService

	// Ingestion backs the ingest tool. Optional.
	Ingestion driving.IngestionService

	// Status backs the status resource. Optional.
	Status driving.StatusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate(allowIngest bool) error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if allowIngest && p.Ingestion == nil {
		return ErrMissingIngestionService
	}
	return nil
}
