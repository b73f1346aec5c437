package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/watch"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Ingest documents as they appear in a directory",
	Long: `Watch a directory tree and ingest supported files (.pdf, .md, .json)
whenever they are created or written. Hidden files and directories are
skipped. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("tag", "t", "", "tag stamped on every chunk")
	watchCmd.Flags().Int("chunk-size", domain.DefaultChunkSize, "target chunk size in characters")
	watchCmd.Flags().Int("chunk-overlap", domain.DefaultChunkOverlap, "characters shared by consecutive chunks")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed file is ingested")
	watchCmd.Flags().Bool("initial", false, "ingest existing files before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	tag, _ := flags.GetString("tag")
	size, _ := flags.GetInt("chunk-size")
	overlap, _ := flags.GetInt("chunk-overlap")
	debounce, _ := flags.GetDuration("debounce")
	initial, _ := flags.GetBool("initial")

	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	out := cmd.OutOrStdout()
	w, err := watch.New(ingestionService, watch.Config{
		Root:         args[0],
		Tag:          tag,
		ChunkSize:    size,
		ChunkOverlap: overlap,
		Debounce:     debounce,
		Initial:      initial,
		OnResult: func(r watch.Result) {
			ts := time.Now().Format(time.TimeOnly)
			if r.Err != nil {
				fmt.Fprintf(out, "%s  FAIL  %s: %v\n", ts, r.Path, r.Err)
				return
			}
			fmt.Fprintf(out, "%s  OK    %s (%d chunks)\n", ts, r.Path, r.Chunks)
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context())
}
