package domain

import "time"

// EmbeddingProvider identifies an embedding service provider.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderNomic is the Nomic Atlas hosted API.
	EmbeddingProviderNomic EmbeddingProvider = "nomic"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI API or a compatible endpoint.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderNomic, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderNomic || p == EmbeddingProviderOpenAI
}

// APIKeyEnv is the environment variable consulted when no key is configured.
func (p EmbeddingProvider) APIKeyEnv() string {
	switch p {
	case EmbeddingProviderNomic:
		return "NOMIC_API_KEY"
	case EmbeddingProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderNomic:
		return "Nomic (cloud)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// DefaultEmbeddingModels returns default models for each provider.
// Every default produces EmbeddingDimensions-sized vectors.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderNomic:  "nomic-embed-text-v1.5",
		EmbeddingProviderOllama: "nomic-embed-text",
		EmbeddingProviderOpenAI: "text-embedding-3-small",
	}
}

// StoreBackend identifies a vector store implementation.
type StoreBackend string

// Available vector store backends.
const (
	StoreBackendSQLite StoreBackend = "sqlite"
	StoreBackendMemory StoreBackend = "memory"
	StoreBackendTiDB   StoreBackend = "tidb"
	StoreBackendMilvus StoreBackend = "milvus"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendMemory, StoreBackendTiDB, StoreBackendMilvus:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider EmbeddingProvider
	Model    string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey falls back to Provider.APIKeyEnv() when empty.
	APIKey string

	// RequestsPerSecond limits calls to hosted providers; zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	Backend StoreBackend

	// Path is the SQLite database file.
	Path string

	// DSN is the TiDB connection string (MySQL driver format).
	DSN string

	// Table is the TiDB table name.
	Table string

	// Address is the Milvus endpoint.
	Address string

	// Collection is the Milvus collection name.
	Collection string
}

// IngestSettings holds ingestion defaults.
type IngestSettings struct {
	ChunkSize    int
	ChunkOverlap int
	FetchTimeout time.Duration
	SourceLabel  SourceLabelRule

	// Concurrency bounds parallel manifest ingestions.
	Concurrency int
}

// RetrievalSettings holds query-time configuration.
type RetrievalSettings struct {
	Timeout  time.Duration
	DefaultK int
}

// ServerSettings holds MCP and REST server configuration.
type ServerSettings struct {
	// MCPPort serves MCP over streamable HTTP when non-zero and requested.
	MCPPort int

	// APIAddr is the REST listen address.
	APIAddr string

	// AllowIngest exposes the ingest tool over MCP.
	AllowIngest bool
}

// Settings holds all application settings.
type Settings struct {
	Embedding EmbeddingSettings
	Store     StoreSettings
	Ingest    IngestSettings
	Retrieval RetrievalSettings
	Server    ServerSettings
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderNomic,
			Model:    DefaultEmbeddingModels()[EmbeddingProviderNomic],
		},
		Store: StoreSettings{
			Backend:    StoreBackendSQLite,
			Table:      "embedded_documents",
			Address:    "localhost:19530",
			Collection: "embedded_documents",
		},
		Ingest: IngestSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
			FetchTimeout: 60 * time.Second,
			SourceLabel:  SourceLabelStem,
			Concurrency:  4,
		},
		Retrieval: RetrievalSettings{
			Timeout:  DefaultRetrievalTimeout,
			DefaultK: MaxK,
		},
		Server: ServerSettings{
			MCPPort: 8100,
			APIAddr: ":8080",
		},
	}
}
