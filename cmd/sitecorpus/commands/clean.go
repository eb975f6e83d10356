package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitecorpus/sitecorpus/internal/cleaner"
	"github.com/sitecorpus/sitecorpus/internal/corpus"
	"github.com/sitecorpus/sitecorpus/internal/logger"
	"github.com/sitecorpus/sitecorpus/internal/output"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Strip boilerplate from a crawled corpus",
	Long: `Clean a crawl artifact for retrieval: remove junk phrases, collapse
blank-line runs, and merge each page's substantial paragraphs into a single
readable text field.

Junk phrases can also be listed under junk_phrases in the config file.

Examples:
  sitecorpus clean -i corpus.json -o cleaned.json

  # Site-specific boilerplate
  sitecorpus clean -i corpus.json -o cleaned.json \
      --junk "Subscribe to our newsletter" --junk "Accept all cookies"`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	flags.StringP("input", "i", "corpus.json", "crawl artifact to clean")
	flags.StringP("output", "o", "cleaned.json", "output file")
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.StringSlice("junk", nil, "junk phrase to strip (can be repeated; overrides the defaults)")

	_ = viper.BindPFlag("junk_phrases", flags.Lookup("junk"))
}

func runClean(cmd *cobra.Command, args []string) error {
	initLogger()

	inPath, _ := cmd.Flags().GetString("input")
	docs, err := corpus.LoadDocuments(inPath)
	if err != nil {
		logger.Error("failed to load corpus", "path", inPath, "error", err)
		return err
	}
	logger.Debug("corpus loaded", "path", inPath, "documents", len(docs))

	junk := viper.GetStringSlice("junk_phrases")
	if len(junk) == 0 {
		junk = cleaner.DefaultJunkPhrases
	}

	chain := cleaner.NewChain(
		cleaner.NewPhrase(junk...),
		cleaner.NewWhitespace(),
	)
	logger.Debug("cleaning", "cleaner", chain.Name(), "junk_phrases", len(junk))

	pages, err := cleaner.CleanAll(docs, chain)
	if err != nil {
		logger.Error("cleaning failed", "error", err)
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")
	if err := output.WriteFile(outPath, output.Format(formatStr), output.Items(pages)); err != nil {
		logger.Error("failed to write cleaned pages", "path", outPath, "error", err)
		return err
	}

	logger.Info("cleaned corpus written", "path", outPath, "pages", len(pages))
	return nil
}
