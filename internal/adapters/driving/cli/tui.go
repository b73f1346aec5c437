package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// TUIConfig holds configuration for the TUI command.
// Unset services fall back to the ones built for the CLI.
type TUIConfig struct {
	RetrievalService driving.RetrievalService
	IngestionService driving.IngestionService
	StatusService    driving.StatusService

	// DefaultK is used when the retrieval form leaves k empty.
	DefaultK int
}

// tuiConfig holds the current TUI configuration.
var tuiConfig *TUIConfig

// runApp starts the program. Replaced in tests.
var runApp = func(app *tui.App) error { return app.Run() }

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for sercha-rag.

The TUI lets you run retrievals, browse and expand results, ingest documents
and check backend status with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Submit / Expand
  Tab      - Next field
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

// SetTUIConfig sets the configuration for the TUI command.
func SetTUIConfig(config *TUIConfig) {
	tuiConfig = config
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	cfg := TUIConfig{}
	if tuiConfig != nil {
		cfg = *tuiConfig
	}
	if cfg.RetrievalService == nil {
		if err := ensureServices(cmd.Context()); err != nil {
			return err
		}
		cfg.RetrievalService = retrievalService
		if cfg.IngestionService == nil {
			cfg.IngestionService = ingestionService
		}
		if cfg.StatusService == nil {
			cfg.StatusService = statusService
		}
	}
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = currentSettings().Retrieval.DefaultK
	}

	ports := tui.NewPorts(cfg.RetrievalService, cfg.IngestionService, cfg.StatusService)

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithDefaultK(cfg.DefaultK)

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
