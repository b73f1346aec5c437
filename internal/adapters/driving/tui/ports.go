// Package tui provides an interactive terminal interface for querying and
// loading the vector store. It is a driving adapter over the core services.
package tui

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Retrieval answers queries. Required.
	Retrieval driving.RetrievalService

	// Ingestion enables the Ingest view when set.
	Ingestion driving.IngestionService

	// Status enables backend health reporting when set.
	Status driving.StatusService
}

// NewPorts creates a Ports aggregate.
func NewPorts(
	retrieval driving.RetrievalService,
	ingestion driving.IngestionService,
	status driving.StatusService,
) *Ports {
	return &Ports{
		Retrieval: retrieval,
		Ingestion: ingestion,
		Status:    status,
	}
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
