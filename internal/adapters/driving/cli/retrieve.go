package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	retrieveK    int
	retrieveTag  string
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve the chunks closest to a query",
	Long: `Embeds the query and returns the most similar stored chunks, best first.

At most 20 results are returned. Use --tag to search only chunks ingested
with that tag. Output is a table on a terminal and JSON when piped.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "k", "k", domain.MaxK,
		"maximum number of results (1-20, default from retrieval.default_k)")
	retrieveCmd.Flags().StringVarP(&retrieveTag, "tag", "t", "", "only return chunks with this tag")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	q := domain.RetrievalQuery{
		Query: args[0],
		K:     retrieveK,
	}
	if !cmd.Flags().Changed("k") {
		q.K = currentSettings().Retrieval.DefaultK
	}
	if cmd.Flags().Changed("tag") {
		tag := retrieveTag
		q.Tag = &tag
	}

	results, err := retrievalService.Retrieve(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if wantJSON(cmd) {
		return outputRetrieveJSON(cmd, results)
	}
	return outputRetrieveTable(cmd, results)
}

// wantJSON selects JSON when asked for, or when stdout is a file or pipe
// rather than a terminal.
func wantJSON(cmd *cobra.Command) bool {
	if retrieveJSON {
		return true
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return !isTerminal(f)
	}
	return false
}

func outputRetrieveJSON(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRetrieveTable(cmd *cobra.Command, results []domain.RetrievalResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s", i+1, list.Heading(r.Metadata))
		if r.Metadata.Tag != "" {
			cmd.Printf(" [%s]", r.Metadata.Tag)
		}
		cmd.Println()
		cmd.Printf("      %s\n", list.Preview(r.Text, 160))
		cmd.Println()
	}
	return nil
}
