// Package services implements the driving port interfaces.
// Services orchestrate the driven ports: the fetcher, chunker registry,
// embedding service and vector store. They hold no per-call state and are
// safe for concurrent use.
//
// The only dependency outside the standard library is errgroup, which
// bounds manifest ingestion.
package services
