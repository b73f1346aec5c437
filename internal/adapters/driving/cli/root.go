// Package cli implements the sercha-rag command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/fetch"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage"
	"github.com/custodia-labs/sercha-rag/internal/chunkers"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	verbose    bool
	configPath string
	envFile    string
)

// Services used by the commands. They are built on first use, or injected
// by tests.
var (
	settingsService  driving.SettingsService
	retrievalService driving.RetrievalService
	ingestionService driving.IngestionService
	statusService    driving.StatusService
)

// closers release the long-lived clients opened by buildServices.
var closers []func() error

// buildServices opens the embedding client and the vector store and wires
// the core services. Replaced in tests.
var buildServices = defaultBuildServices

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Retrieval-augmented search over your documents",
	Long: `sercha-rag ingests documents into a vector store and answers similarity
queries over them.

Documents (PDF, Markdown and Q&A JSON) are fetched from URLs or local paths,
split into chunks, embedded and stored with a source label and an optional tag.
Queries return the closest chunks, optionally restricted to one tag.

The same retrieval and ingestion operations are exposed over MCP (serve),
a REST API (api), a directory watcher (watch) and a terminal UI (tui).`,
	SilenceUsage:       true,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $SERCHA_RAG_CONFIG or ~/.sercha-rag/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading settings")
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as serve, api and watch.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

func persistentPreRun(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	if settingsService != nil {
		return nil
	}
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

func persistentPostRun(_ *cobra.Command, _ []string) error {
	closeServices()
	return nil
}

// loadEnvFile loads path into the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.Debug("loaded environment from %s", path)
	return nil
}

// ensureServices builds the core services unless they are already set.
func ensureServices(ctx context.Context) error {
	if retrievalService != nil && ingestionService != nil && statusService != nil {
		return nil
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	return buildServices(ctx, settings)
}

func defaultBuildServices(ctx context.Context, settings *domain.Settings) error {
	logger.Section("Services")

	// Embedding before store.
	embedder, err := embedding.CreateAndValidate(ctx, settings.Embedding)
	if err != nil {
		return err
	}
	logger.Debug("embedding: %s (%s)", settings.Embedding.Provider, settings.Embedding.Model)

	store, err := storage.New(ctx, settings.Store, embedder.Dimensions())
	if err != nil {
		_ = embedder.Close()
		return err
	}
	logger.Debug("store: %s", settings.Store.Backend)

	closers = append(closers, store.Close, embedder.Close)

	retrievalService = services.NewRetrievalService(embedder, store, settings.Retrieval.Timeout)
	ingestionService = services.NewIngestionService(services.IngestionConfig{
		Fetcher:     fetch.New(fetch.Config{Timeout: settings.Ingest.FetchTimeout}),
		Chunkers:    chunkers.Default(),
		Embedder:    embedder,
		Store:       store,
		SourceLabel: settings.Ingest.SourceLabel,
		Concurrency: settings.Ingest.Concurrency,
	})
	statusService = services.NewStatusService(embedder, store,
		settings.Embedding.Provider, settings.Store.Backend)
	return nil
}

func closeServices() {
	for _, c := range closers {
		if err := c(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	closers = nil
}

// currentSettings returns the resolved settings, or the defaults when no
// settings service is configured.
func currentSettings() domain.Settings {
	if settingsService == nil {
		return domain.DefaultSettings()
	}
	s, err := settingsService.Get()
	if err != nil || s == nil {
		logger.Warn("using default settings: %v", err)
		return domain.DefaultSettings()
	}
	return *s
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return f != nil && termCheck(int(f.Fd()))
}
