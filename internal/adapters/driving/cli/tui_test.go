package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui"
)

func stubRunApp(t *testing.T, fn func(app *tui.App) error) {
	t.Helper()
	old := runApp
	runApp = fn
	t.Cleanup(func() { runApp = old })
}

func TestTUICmd_Exists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered")
}

func TestTUICmd_UsesCLIServices(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var started *tui.App
	stubRunApp(t, func(app *tui.App) error {
		started = app
		return nil
	})

	_, err := executeCommand("tui")
	require.NoError(t, err)
	require.NotNil(t, started)
	assert.Equal(t, 0, ts.buildCalls)
}

func TestTUICmd_UsesConfig(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	retrievalService = nil

	SetTUIConfig(&TUIConfig{RetrievalService: ts.retrieval, DefaultK: 3})

	called := false
	stubRunApp(t, func(*tui.App) error {
		called = true
		return nil
	})

	_, err := executeCommand("tui")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 0, ts.buildCalls)
}

func TestTUICmd_MissingRetrieval(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	retrievalService = nil

	stubRunApp(t, func(*tui.App) error {
		t.Fatal("app should not start")
		return nil
	})

	_, err := executeCommand("tui")

	require.Error(t, err)
	assert.ErrorIs(t, err, tui.ErrMissingRetrievalService)
}

func TestTUICmd_RunError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stubRunApp(t, func(*tui.App) error { return errors.New("no tty") })

	_, err := executeCommand("tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUI error: no tty")
}

func TestTUICmd_RecoversPanic(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	stubRunApp(t, func(*tui.App) error { panic("boom") })

	_, err := executeCommand("tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUI panic: boom")
}
