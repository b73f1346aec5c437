// Package mcp provides the MCP (Model Context Protocol) server adapter.
// It exposes document retrieval, and optionally ingestion, as tools for
// chat agents, over stdio or streamable HTTP.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrMissingIngestionService is returned when ingestion is allowed but no service is provided.
var ErrMissingIngestionService = errors.New("mcp: ingestion service is required when ingest is allowed")
