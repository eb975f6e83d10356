// Package commands implements the CLI commands for sitecorpus.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitecorpus/sitecorpus/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sitecorpus",
	Short: "Single-domain web crawler that builds a RAG-ready text corpus",
	Long: `Sitecorpus crawls one domain with a headless browser, extracts the
text content of every page, and writes a de-duplicated corpus of page
documents for retrieval-augmented generation pipelines.

Examples:
  # Crawl a site into corpus.json
  sitecorpus crawl -u "https://example.com" -o corpus.json

  # Crawl deeper and faster over a server-rendered site
  sitecorpus crawl -u "https://example.com" --max-depth 3 \
      --fetch-mode static --concurrency 4

  # Strip boilerplate and merge paragraphs
  sitecorpus clean -i corpus.json -o cleaned.json

  # Split cleaned pages into embedding-sized chunks
  sitecorpus chunk -i cleaned.json -o chunks.json`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.sitecorpus.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".sitecorpus")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("SITECORPUS")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// initLogger configures logging from the persistent flags. Called at the top
// of every command's RunE.
func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
