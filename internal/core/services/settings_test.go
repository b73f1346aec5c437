package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func newSettingsService(values map[string]any, env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore(values)
	service := NewSettingsService(store)
	service.getenv = func(key string) string { return env[key] }
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettingsService(nil, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Store, settings.Store)
	assert.Equal(t, defaults.Ingest, settings.Ingest)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Server, settings.Server)
	assert.Equal(t, domain.EmbeddingProviderNomic, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text-v1.5", settings.Embedding.Model)
	assert.Empty(t, settings.Embedding.APIKey)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, _ := newSettingsService(map[string]any{
		"embedding.provider":            "ollama",
		"embedding.base_url":            "http://gpu:11434",
		"embedding.requests_per_second": 2,
		"store.backend":                 "tidb",
		"store.table":                   "docs",
		"ingest.chunk_size":             int64(800),
		"ingest.chunk_overlap":          0,
		"ingest.source_label":           "legacy",
		"retrieval.timeout":             "2s",
		"retrieval.default_k":           50,
		"server.allow_ingest":           true,
		"server.mcp_port":               0,
	}, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://gpu:11434", settings.Embedding.BaseURL)
	assert.InDelta(t, 2.0, settings.Embedding.RequestsPerSecond, 1e-9)
	assert.Equal(t, domain.StoreBackendTiDB, settings.Store.Backend)
	assert.Equal(t, "docs", settings.Store.Table)
	assert.Equal(t, 800, settings.Ingest.ChunkSize)
	assert.Equal(t, 0, settings.Ingest.ChunkOverlap)
	assert.Equal(t, domain.SourceLabelLegacy, settings.Ingest.SourceLabel)
	assert.Equal(t, 2*time.Second, settings.Retrieval.Timeout)
	assert.Equal(t, domain.MaxK, settings.Retrieval.DefaultK)
	assert.True(t, settings.Server.AllowIngest)
	assert.Equal(t, 0, settings.Server.MCPPort)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, _ := newSettingsService(map[string]any{
		"embedding.provider":  "invalid_provider",
		"store.backend":       "redis",
		"ingest.source_label": "weird",
		"retrieval.timeout":   "soon",
		"ingest.concurrency":  -3,
	}, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Store.Backend, settings.Store.Backend)
	assert.Equal(t, defaults.Ingest.SourceLabel, settings.Ingest.SourceLabel)
	assert.Equal(t, defaults.Retrieval.Timeout, settings.Retrieval.Timeout)
	assert.Equal(t, defaults.Ingest.Concurrency, settings.Ingest.Concurrency)
}

func TestSettingsService_Get_APIKeyFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]any
		env      map[string]string
		expected string
	}{
		{
			name:     "nomic env",
			env:      map[string]string{"NOMIC_API_KEY": "nk-env"},
			expected: "nk-env",
		},
		{
			name:     "openai env",
			values:   map[string]any{"embedding.provider": "openai"},
			env:      map[string]string{"OPENAI_API_KEY": "sk-env", "NOMIC_API_KEY": "nk-env"},
			expected: "sk-env",
		},
		{
			name:     "config wins",
			values:   map[string]any{"embedding.api_key": "nk-file"},
			env:      map[string]string{"NOMIC_API_KEY": "nk-env"},
			expected: "nk-file",
		},
		{
			name:     "ollama ignores env",
			values:   map[string]any{"embedding.provider": "ollama"},
			env:      map[string]string{"NOMIC_API_KEY": "nk-env"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newSettingsService(tt.values, tt.env)

			settings, err := service.Get()

			require.NoError(t, err)
			assert.Equal(t, tt.expected, settings.Embedding.APIKey)
		})
	}
}

func TestSettingsService_Get_DSNFromEnv(t *testing.T) {
	env := map[string]string{"TIDB_DSN": "root@tcp(env:4000)/rag"}

	t.Run("env fallback", func(t *testing.T) {
		service, _ := newSettingsService(map[string]any{"store.backend": "tidb"}, env)

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "root@tcp(env:4000)/rag", settings.Store.DSN)
	})

	t.Run("config wins", func(t *testing.T) {
		service, _ := newSettingsService(map[string]any{"store.dsn": "root@tcp(file:4000)/rag"}, env)

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "root@tcp(file:4000)/rag", settings.Store.DSN)
	})
}

func TestSettingsService_Get_OverlapLargerThanSize(t *testing.T) {
	service, _ := newSettingsService(map[string]any{
		"ingest.chunk_size":    100,
		"ingest.chunk_overlap": 200,
	}, nil)

	_, err := service.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		expected any
	}{
		{name: "provider", key: "embedding.provider", value: "openai", expected: "openai"},
		{name: "int", key: "ingest.chunk_size", value: "750", expected: 750},
		{name: "zero overlap", key: "ingest.chunk_overlap", value: "0", expected: 0},
		{name: "float", key: "embedding.requests_per_second", value: "1.5", expected: 1.5},
		{name: "bool", key: "server.allow_ingest", value: "true", expected: true},
		{name: "duration kept as text", key: "retrieval.timeout", value: "3s", expected: "3s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newSettingsService(nil, nil)

			require.NoError(t, service.Set(tt.key, tt.value))

			val, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.expected, val)
			assert.Equal(t, 1, store.Saves())
		})
	}
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown key", key: "search.mode", value: "hybrid"},
		{name: "bad provider", key: "embedding.provider", value: "cohere"},
		{name: "bad backend", key: "store.backend", value: "redis"},
		{name: "not an int", key: "ingest.chunk_size", value: "big"},
		{name: "zero size", key: "ingest.chunk_size", value: "0"},
		{name: "negative overlap", key: "ingest.chunk_overlap", value: "-1"},
		{name: "bad duration", key: "retrieval.timeout", value: "5"},
		{name: "bad bool", key: "server.allow_ingest", value: "maybe"},
		{name: "bad label rule", key: "ingest.source_label", value: "basename"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newSettingsService(nil, nil)

			err := service.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys())
			assert.Zero(t, store.Saves())
		})
	}
}

func TestSettingsService_LookupAndKeys(t *testing.T) {
	service, _ := newSettingsService(map[string]any{"ingest.chunk_size": 640}, nil)

	val, ok := service.Lookup("ingest.chunk_size")
	assert.True(t, ok)
	assert.Equal(t, "640", val)

	_, ok = service.Lookup("store.dsn")
	assert.False(t, ok)

	keys := service.Keys()
	assert.Contains(t, keys, "embedding.provider")
	assert.Contains(t, keys, "store.backend")
	assert.IsIncreasing(t, keys)
	assert.Equal(t, ":memory:", service.Path())
}
