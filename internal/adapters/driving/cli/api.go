package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/rest"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Serve retrieval over HTTP.

Endpoints:
  POST /api/v1/retrieve   {"query": "...", "k": 5, "tag": "..."}
  POST /api/v1/ingest     {"location": "...", "tag": "..."} (with --allow-ingest)
  GET  /healthz`,
	Args: cobra.NoArgs,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().String("addr", "", "listen address (default server.api_addr)")
	apiCmd.Flags().Bool("log-json", false, "write logs as JSON")
	apiCmd.Flags().Bool("allow-ingest", false, "expose the ingest endpoint")
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return fmt.Errorf("getting log-json flag: %w", err)
	}
	allowIngest, err := cmd.Flags().GetBool("allow-ingest")
	if err != nil {
		return fmt.Errorf("getting allow-ingest flag: %w", err)
	}

	settings := currentSettings()
	if addr == "" {
		addr = settings.Server.APIAddr
	}
	if !cmd.Flags().Changed("allow-ingest") {
		allowIngest = settings.Server.AllowIngest
	}
	if logJSON {
		logger.SetJSON(true)
		defer logger.SetJSON(false)
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	ports := rest.Ports{
		Retrieval: retrievalService,
		Status:    statusService,
	}
	if allowIngest {
		ports.Ingestion = ingestionService
	}

	server, err := rest.NewServer(ports)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "REST API listening on %s\n", addr)
	return server.Run(cmd.Context(), addr)
}
