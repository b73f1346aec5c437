// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceFetcher: Retrieves raw document bytes from a URL or path
//   - Chunker: Splits raw bytes of one Format into chunks
//   - ChunkerRegistry: Selects the chunker for a Format
//   - EmbeddingService: Generates vector embeddings (Nomic, Ollama, OpenAI)
//   - VectorStore: Persists embedded chunks and runs similarity search
//   - ConfigStore: Application configuration
//
// The embedding service is constructed before the vector store, and both
// are long-lived handles shared by every ingestion and retrieval call.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or chunker package
package driven
