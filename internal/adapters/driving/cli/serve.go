package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can retrieve
context from the vector store.

By default the server communicates over stdio using JSON-RPC. Use --port, or
--http for the configured server.mcp_port, to serve streamable HTTP instead.

The ingest tool is only registered with --allow-ingest or when
server.allow_ingest is set.

Examples:
  # Stdio mode (for desktop assistants)
  sercha-rag serve

  # HTTP mode
  sercha-rag serve --port 8100

Assistant configuration:
  {
    "mcpServers": {
      "sercha-rag": {
        "command": "/path/to/sercha-rag",
        "args": ["serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	serveCmd.Flags().Bool("http", false, "serve HTTP on server.mcp_port")
	serveCmd.Flags().Bool("allow-ingest", false, "expose the ingest tool")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	useHTTP, err := cmd.Flags().GetBool("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}
	allowIngest, err := cmd.Flags().GetBool("allow-ingest")
	if err != nil {
		return fmt.Errorf("getting allow-ingest flag: %w", err)
	}

	settings := currentSettings()
	if !cmd.Flags().Changed("allow-ingest") {
		allowIngest = settings.Server.AllowIngest
	}
	if useHTTP && port == 0 {
		port = settings.Server.MCPPort
	}

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	ports := &mcp.Ports{
		Retrieval: retrievalService,
		Ingestion: ingestionService,
		Status:    statusService,
	}

	server, err := mcp.NewServer(ports, mcp.Options{AllowIngest: allowIngest})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
