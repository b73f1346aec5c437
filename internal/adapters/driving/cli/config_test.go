package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(configCmd.Commands()))
	for _, c := range configCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "get", "set", "path"}, names)
}

func TestConfigList(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.values["embedding.api_key"] = "nk-1234567890abcdef"
	ts.settings.values["embedding.provider"] = "ollama"

	out, err := executeCommand("config", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Config file: /tmp/sercha-rag/config.toml")
	assert.Contains(t, out, "nk-1...cdef")
	assert.NotContains(t, out, "nk-1234567890abcdef")
	assert.Regexp(t, `embedding\.provider\s+ollama`, out)
	assert.Regexp(t, `retrieval\.default_k\s+\(default\)`, out)
}

func TestConfigCmd_DefaultsToList(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("config")
	require.NoError(t, err)
	assert.Contains(t, out, "Config file:")
}

func TestConfigGet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		values  map[string]string
		want    string
		wantErr string
	}{
		{name: "set value", key: "embedding.provider", values: map[string]string{"embedding.provider": "openai"}, want: "openai"},
		{name: "default", key: "retrieval.default_k", want: "(default)"},
		{name: "masked secret", key: "store.dsn", values: map[string]string{"store.dsn": "root:pw@tcp(db:4000)/rag"}, want: "root.../rag"},
		{name: "unknown key", key: "nope.key", wantErr: `unknown setting "nope.key"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()
			for k, v := range tt.values {
				ts.settings.values[k] = v
			}

			out, err := executeCommand("config", "get", tt.key)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestConfigSet(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("config", "set", "retrieval.default_k", "10")
	require.NoError(t, err)

	assert.Equal(t, "10", ts.settings.values["retrieval.default_k"])
	assert.Contains(t, out, "retrieval.default_k updated.")
}

func TestConfigSet_ValidationError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.setErr = errors.New("invalid input: retrieval.default_k: must be positive")

	_, err := executeCommand("config", "set", "retrieval.default_k", "0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save setting")
	assert.Contains(t, err.Error(), "must be positive")
}

func TestConfigSet_ValueRequired(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("config", "set", "embedding.provider")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a value is required for embedding.provider")
}

func TestConfigSet_SecretFromStdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	oldStdin := stdin
	stdin = strings.NewReader("sk-secret-value\n")
	defer func() { stdin = oldStdin }()

	out, err := executeCommand("config", "set", "embedding.api_key")
	require.NoError(t, err)

	assert.Equal(t, "sk-secret-value", ts.settings.values["embedding.api_key"])
	assert.NotContains(t, out, "sk-secret-value")
}

func TestConfigPath(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("config", "path")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sercha-rag/config.toml", strings.TrimSpace(out))
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "", want: "****"},
		{key: "short", want: "****"},
		{key: "12345678", want: "****"},
		{key: "123456789", want: "1234...6789"},
		{key: "nk-abcdefghijklmnop", want: "nk-a...mnop"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, maskAPIKey(tt.key))
		})
	}
}

func TestReadSecret_Fallback(t *testing.T) {
	oldStdin := stdin
	defer func() { stdin = oldStdin }()

	stdin = strings.NewReader("  padded  \nsecond line\n")
	assert.Equal(t, "padded", readSecret())
}
