package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	ingestTag          string
	ingestChunkSize    int
	ingestChunkOverlap int
	ingestManifest     string
	ingestConcurrency  int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [location]",
	Short: "Ingest a document into the vector store",
	Long: `Fetch a document, split it into chunks, embed the chunks and store them.

The location is an http(s) URL, a file:// URL or a local path. Its suffix
selects the format: .pdf, .md or .json (question/answer pairs).

Use --manifest to ingest several documents from a YAML file:

  tag: handbook
  concurrency: 4
  documents:
    - location: https://example.com/guide.pdf
    - location: ./faq.json
      tag: faq
      chunk_size: 300`,
	Args: func(cmd *cobra.Command, args []string) error {
		if ingestManifest != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTag, "tag", "t", "", "tag stamped on every chunk")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", domain.DefaultChunkSize, "target chunk size in characters")
	ingestCmd.Flags().IntVar(&ingestChunkOverlap, "chunk-overlap", domain.DefaultChunkOverlap,
		"characters shared by consecutive chunks")
	ingestCmd.Flags().StringVarP(&ingestManifest, "manifest", "m", "", "YAML manifest listing documents to ingest")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 0,
		"parallel ingestions for --manifest (0 = configured default)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	if ingestManifest != "" {
		return runIngestManifest(cmd)
	}

	req := domain.IngestRequest{
		Location:     args[0],
		Tag:          ingestTag,
		ChunkSize:    ingestChunkSize,
		ChunkOverlap: ingestChunkOverlap,
	}
	n, err := ingestionService.Ingest(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Stored %d chunks from %s", n, req.Location)
	if req.Tag != "" {
		cmd.Printf(" [%s]", req.Tag)
	}
	cmd.Println()
	return nil
}

func runIngestManifest(cmd *cobra.Command) error {
	m, err := loadManifest(ingestManifest)
	if err != nil {
		return err
	}
	if ingestTag != "" && m.Tag == "" {
		m.Tag = ingestTag
	}
	if ingestConcurrency > 0 {
		m.Concurrency = ingestConcurrency
	}

	reports, err := ingestionService.IngestManifest(cmd.Context(), *m)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	failed, total := 0, 0
	for _, r := range reports {
		if r.Failed() {
			failed++
			cmd.Printf("  FAIL  %s: %v\n", r.Location, r.Err)
			continue
		}
		total += r.Chunks
		cmd.Printf("  OK    %s (%d chunks)\n", r.Location, r.Chunks)
	}
	cmd.Printf("\n%d of %d documents ingested, %d chunks stored.\n",
		len(reports)-failed, len(reports), total)

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(reports))
	}
	return nil
}

// loadManifest reads and validates a YAML manifest.
func loadManifest(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m domain.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if len(m.Documents) == 0 {
		return nil, fmt.Errorf("manifest %s lists no documents", path)
	}
	for i, d := range m.Documents {
		if d.Location == "" {
			return nil, fmt.Errorf("manifest %s: document %d has no location", path, i+1)
		}
	}
	return &m, nil
}
