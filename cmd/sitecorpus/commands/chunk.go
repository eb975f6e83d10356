package commands

import (
	"github.com/spf13/cobra"

	"github.com/sitecorpus/sitecorpus/internal/chunker"
	"github.com/sitecorpus/sitecorpus/internal/corpus"
	"github.com/sitecorpus/sitecorpus/internal/logger"
	"github.com/sitecorpus/sitecorpus/internal/output"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Split cleaned pages into embedding-sized chunks",
	Long: `Chunk a cleaned corpus into fixed-size, word-aware text pieces with
stable ids, ready for an embedding model.

Examples:
  sitecorpus chunk -i cleaned.json -o chunks.json

  # Smaller chunks for models with tight context windows
  sitecorpus chunk -i cleaned.json -o chunks.json --chunk-size 400`,
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)

	flags := chunkCmd.Flags()
	flags.StringP("input", "i", "cleaned.json", "cleaned corpus to chunk")
	flags.StringP("output", "o", "chunks.json", "output file")
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.Int("chunk-size", chunker.DefaultChunkSize, "max characters per chunk")
}

func runChunk(cmd *cobra.Command, args []string) error {
	initLogger()

	inPath, _ := cmd.Flags().GetString("input")
	pages, err := corpus.LoadCleanedPages(inPath)
	if err != nil {
		logger.Error("failed to load cleaned pages", "path", inPath, "error", err)
		return err
	}
	logger.Debug("cleaned pages loaded", "path", inPath, "pages", len(pages))

	size, _ := cmd.Flags().GetInt("chunk-size")
	chunks := chunker.ChunkAll(pages, size)

	outPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")
	if err := output.WriteFile(outPath, output.Format(formatStr), output.Items(chunks)); err != nil {
		logger.Error("failed to write chunks", "path", outPath, "error", err)
		return err
	}

	logger.Info("chunks written",
		"path", outPath,
		"pages", len(pages),
		"chunks", len(chunks),
		"chunk_size", size)
	return nil
}
