package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sitecorpus/sitecorpus/internal/crawler"
	"github.com/sitecorpus/sitecorpus/internal/fetcher"
	"github.com/sitecorpus/sitecorpus/internal/logger"
	"github.com/sitecorpus/sitecorpus/internal/metrics"
	"github.com/sitecorpus/sitecorpus/internal/output"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl one domain into a corpus of page documents",
	Long: `Crawl a website breadth-first, staying on the start URL's domain,
and write every successfully fetched page as a structured document.

The crawler drives a headless Chrome session by default so JavaScript-heavy
sites render before extraction. Use --fetch-mode static for plain HTTP, or
auto to try static first and fall back to the browser per page.

Examples:
  # Default crawl: 100 pages, depth 2, 2s politeness delay
  sitecorpus crawl -u "https://example.com"

  # Shallow but wide, four pages in flight
  sitecorpus crawl -u "https://example.com" --max-depth 1 \
      --max-pages 500 --concurrency 4 --delay 500ms

  # Expose Prometheus metrics while the crawl runs
  sitecorpus crawl -u "https://example.com" --metrics-addr :9090`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	flags := crawlCmd.Flags()

	// Crawl scope
	flags.StringP("url", "u", "", "start URL (required)")
	flags.Int("max-pages", 100, "page budget for the run")
	flags.Int("max-depth", 2, "link depth from the start URL (0=start page only)")
	flags.Duration("delay", 2*time.Second, "politeness delay between page loads")
	flags.IntP("concurrency", "c", 1, "parallel page loads (1 keeps strict breadth-first order)")

	// Retry settings
	flags.Int("retries", 3, "fetch attempts per page")
	flags.Duration("retry-delay", 5*time.Second, "pause between attempts for one page")

	// Fetch settings
	flags.String("fetch-mode", "chrome", "fetch mode: chrome, static, auto")
	flags.Duration("timeout", 60*time.Second, "page load budget")
	flags.String("user-agent", "", "override the browser user agent")
	flags.String("max-body-size", "", "response size cap for static fetches (e.g. 10MB, 0=default)")

	// Output settings
	flags.StringP("output", "o", "corpus.json", "output file")
	flags.String("format", "json", "output format: json, jsonl, yaml")

	// Observability
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while crawling (e.g. :9090)")

	_ = crawlCmd.MarkFlagRequired("url")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startURL, _ := cmd.Flags().GetString("url")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	delay, _ := cmd.Flags().GetDuration("delay")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	retries, _ := cmd.Flags().GetInt("retries")
	retryDelay, _ := cmd.Flags().GetDuration("retry-delay")

	cfg := crawler.Config{
		StartURL:    startURL,
		MaxPages:    maxPages,
		MaxDepth:    maxDepth,
		Delay:       delay,
		MaxAttempts: retries,
		RetryDelay:  retryDelay,
		Concurrency: concurrency,
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid crawl configuration", "error", err)
		return err
	}

	fetchCfg, err := fetchConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	modeStr, _ := cmd.Flags().GetString("fetch-mode")
	logger.Debug("creating fetcher", "mode", modeStr)
	f, err := fetcher.New(fetcher.Mode(modeStr), fetchCfg)
	if err != nil {
		logger.Error("failed to create fetcher", "mode", modeStr, "error", err)
		return err
	}
	defer func() { _ = f.Close() }()

	opts := []crawler.Option{}
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		m, reg := metrics.New()
		opts = append(opts, crawler.WithMetrics(m))

		srv := &http.Server{
			Addr:              addr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	c := crawler.New(f, cfg, opts...)

	result, err := c.Run(ctx)
	if err != nil {
		logger.Error("crawl failed", "error", err)
		return err
	}

	if len(result.Documents) == 0 {
		logger.Warn("no documents produced, skipping output file")
		return nil
	}

	outPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")
	if err := output.WriteFile(outPath, output.Format(formatStr), output.Items(result.Documents)); err != nil {
		logger.Error("failed to write corpus", "path", outPath, "error", err)
		return err
	}

	logger.Info("corpus written",
		"path", outPath,
		"format", formatStr,
		"documents", result.Summary.Documents,
		"total_text_chars", humanize.Comma(int64(result.Summary.TotalTextLength)),
		"avg_text_chars", result.Summary.AvgTextLength,
		"non_trivial_pages", result.Summary.NonTrivialPages)

	return nil
}

// fetchConfigFromFlags assembles the fetcher configuration; unset flags fall
// through to the fetcher defaults.
func fetchConfigFromFlags(cmd *cobra.Command) (fetcher.Config, error) {
	cfg := fetcher.Config{}

	if ua, _ := cmd.Flags().GetString("user-agent"); ua != "" {
		cfg.UserAgent = ua
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.NavTimeout = timeout
	}

	sizeStr, _ := cmd.Flags().GetString("max-body-size")
	if s := strings.TrimSpace(sizeStr); s != "" && s != "0" {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			logger.Error("invalid max-body-size", "value", sizeStr, "error", err)
			return cfg, err
		}
		cfg.MaxBodySize = int(n)
	}

	return cfg, nil
}
