package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedRPS      = "embedding.requests_per_second"

	keyStoreBackend    = "store.backend"
	keyStorePath       = "store.path"
	keyStoreDSN        = "store.dsn"
	keyStoreTable      = "store.table"
	keyStoreAddress    = "store.address"
	keyStoreCollection = "store.collection"

	keyChunkSize    = "ingest.chunk_size"
	keyChunkOverlap = "ingest.chunk_overlap"
	keyFetchTimeout = "ingest.fetch_timeout"
	keySourceLabel  = "ingest.source_label"
	keyConcurrency  = "ingest.concurrency"

	keyRetrievalTimeout = "retrieval.timeout"
	keyDefaultK         = "retrieval.default_k"

	keyMCPPort     = "server.mcp_port"
	keyAPIAddr     = "server.api_addr"
	keyAllowIngest = "server.allow_ingest"
)

// envTiDBDSN supplies store.dsn when the config file leaves it empty.
const envTiDBDSN = "TIDB_DSN"

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

type settingDef struct {
	kind settingKind

	// check validates the parsed value; nil accepts anything of the right kind.
	check func(value any) error
}

var settingDefs = map[string]settingDef{
	keyEmbedProvider: {kind: kindString, check: func(v any) error {
		if !domain.EmbeddingProvider(v.(string)).IsValid() {
			return fmt.Errorf("expected nomic, ollama or openai, got %q", v)
		}
		return nil
	}},
	keyEmbedModel:   {kind: kindString},
	keyEmbedBaseURL: {kind: kindString},
	keyEmbedAPIKey:  {kind: kindString},
	keyEmbedRPS:     {kind: kindFloat, check: nonNegativeFloat},

	keyStoreBackend: {kind: kindString, check: func(v any) error {
		if !domain.StoreBackend(v.(string)).IsValid() {
			return fmt.Errorf("expected sqlite, memory, tidb or milvus, got %q", v)
		}
		return nil
	}},
	keyStorePath:       {kind: kindString},
	keyStoreDSN:        {kind: kindString},
	keyStoreTable:      {kind: kindString},
	keyStoreAddress:    {kind: kindString},
	keyStoreCollection: {kind: kindString},

	keyChunkSize:    {kind: kindInt, check: positiveInt},
	keyChunkOverlap: {kind: kindInt, check: nonNegativeInt},
	keyFetchTimeout: {kind: kindDuration},
	keySourceLabel: {kind: kindString, check: func(v any) error {
		if !domain.SourceLabelRule(v.(string)).IsValid() {
			return fmt.Errorf("expected stem or legacy, got %q", v)
		}
		return nil
	}},
	keyConcurrency: {kind: kindInt, check: positiveInt},

	keyRetrievalTimeout: {kind: kindDuration},
	keyDefaultK:         {kind: kindInt, check: positiveInt},

	keyMCPPort:     {kind: kindInt, check: nonNegativeInt},
	keyAPIAddr:     {kind: kindString},
	keyAllowIngest: {kind: kindBool},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults. An empty API key is
// read from the provider's environment variable, an empty DSN from TIDB_DSN.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	provider := domain.EmbeddingProvider(s.getString(keyEmbedProvider, d.Embedding.Provider.String()))
	if !provider.IsValid() {
		provider = d.Embedding.Provider
	}
	model := s.configStore.GetString(keyEmbedModel)
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}
	apiKey := s.configStore.GetString(keyEmbedAPIKey)
	if apiKey == "" && provider.APIKeyEnv() != "" {
		apiKey = s.getenv(provider.APIKeyEnv())
	}

	dsn := s.configStore.GetString(keyStoreDSN)
	if dsn == "" {
		dsn = s.getenv(envTiDBDSN)
	}

	backend := domain.StoreBackend(s.getString(keyStoreBackend, d.Store.Backend.String()))
	if !backend.IsValid() {
		backend = d.Store.Backend
	}

	rule := domain.SourceLabelRule(s.getString(keySourceLabel, string(d.Ingest.SourceLabel)))
	if !rule.IsValid() {
		rule = d.Ingest.SourceLabel
	}

	settings := &domain.Settings{
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // empty selects the provider default
			APIKey:            apiKey,
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		Store: domain.StoreSettings{
			Backend:    backend,
			Path:       s.configStore.GetString(keyStorePath),
			DSN:        dsn,
			Table:      s.getString(keyStoreTable, d.Store.Table),
			Address:    s.getString(keyStoreAddress, d.Store.Address),
			Collection: s.getString(keyStoreCollection, d.Store.Collection),
		},
		Ingest: domain.IngestSettings{
			ChunkSize:    s.getInt(keyChunkSize, d.Ingest.ChunkSize),
			ChunkOverlap: s.getIntAllowZero(keyChunkOverlap, d.Ingest.ChunkOverlap),
			FetchTimeout: s.getDuration(keyFetchTimeout, d.Ingest.FetchTimeout),
			SourceLabel:  rule,
			Concurrency:  s.getInt(keyConcurrency, d.Ingest.Concurrency),
		},
		Retrieval: domain.RetrievalSettings{
			Timeout:  s.getDuration(keyRetrievalTimeout, d.Retrieval.Timeout),
			DefaultK: domain.ClampK(s.getInt(keyDefaultK, d.Retrieval.DefaultK)),
		},
		Server: domain.ServerSettings{
			MCPPort:     s.getIntAllowZero(keyMCPPort, d.Server.MCPPort),
			APIAddr:     s.getString(keyAPIAddr, d.Server.APIAddr),
			AllowIngest: s.configStore.GetBool(keyAllowIngest),
		},
	}

	opts := domain.ChunkOptions{ChunkSize: settings.Ingest.ChunkSize, ChunkOverlap: settings.Ingest.ChunkOverlap}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	return settings, nil
}

// Set parses value according to the key's type, validates it and persists it.
func (s *SettingsService) Set(key, value string) error {
	def, ok := settingDefs[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(def.kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if def.check != nil {
		if err := def.check(parsed); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.configStore.Save()
}

// Lookup returns the configured value of key as text.
func (s *SettingsService) Lookup(key string) (string, bool) {
	val, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(val), true
}

// Keys returns every recognised setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingDefs))
	for k := range settingDefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func parseSetting(kind settingKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, err
		}
		// Stored as text so the file stays readable.
		return value, nil
	default:
		return value, nil
	}
}

func positiveInt(v any) error {
	if v.(int) <= 0 {
		return fmt.Errorf("must be positive, got %d", v)
	}
	return nil
}

func nonNegativeInt(v any) error {
	if v.(int) < 0 {
		return fmt.Errorf("must not be negative, got %d", v)
	}
	return nil
}

func nonNegativeFloat(v any) error {
	if v.(float64) < 0 {
		return fmt.Errorf("must not be negative, got %v", v)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	str := s.configStore.GetString(key)
	if str == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(str)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
