package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the embedding provider and vector store in use",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if statusService == nil {
		return errors.New("status service not configured")
	}

	st, err := statusService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Embedding:  %s (%s, %d dims) %s\n",
		st.EmbeddingProvider, st.EmbeddingModel, st.Dimensions, okLabel(st.EmbeddingOK))
	cmd.Printf("Store:      %s %s\n", st.StoreBackend, okLabel(st.StoreOK))
	if st.Chunks >= 0 {
		cmd.Printf("Chunks:     %d\n", st.Chunks)
	} else {
		cmd.Println("Chunks:     unknown")
	}
	return nil
}

func okLabel(ok bool) string {
	if ok {
		return "[ok]"
	}
	return "[unreachable]"
}
