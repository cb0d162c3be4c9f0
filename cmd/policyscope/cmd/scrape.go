package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/policyscope/policyscope/internal/archive"
	"github.com/policyscope/policyscope/internal/batch"
	"github.com/policyscope/policyscope/internal/config"
	"github.com/policyscope/policyscope/internal/elasticsearch"
	"github.com/policyscope/policyscope/internal/events"
	"github.com/policyscope/policyscope/internal/extract"
	"github.com/policyscope/policyscope/internal/ingestion"
	"github.com/policyscope/policyscope/internal/storage"
	"github.com/policyscope/policyscope/internal/store"
)

var (
	scrapePlatform string
	noIngest       bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run the scrape pipeline for configured platforms",
	Long: `Locate monthly snapshots of each platform's terms documents, extract
and tokenize their content, and write summary tables and word corpora.

Examples:
  # Scrape all configured platforms
  policyscope scrape

  # Scrape a single platform by name
  policyscope scrape --platform twitter

  # Write to S3 only, skip Elasticsearch ingestion
  policyscope scrape --no-ingest`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVar(&scrapePlatform, "platform", "", "Platform name from config to scrape")
	scrapeCmd.Flags().BoolVar(&noIngest, "no-ingest", false, "Write to S3 only, skip ingestion")
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("scrape command starting", "verbose", verbose, "no_ingest", noIngest)

	// Determine which platforms to scrape
	var platforms []config.Platform
	for _, p := range cfg.Platforms {
		if scrapePlatform != "" && p.Name != scrapePlatform {
			continue
		}
		platforms = append(platforms, p)
	}
	if len(platforms) == 0 {
		if scrapePlatform != "" {
			return fmt.Errorf("platform %q not found in config", scrapePlatform)
		}
		return fmt.Errorf("no platforms configured")
	}

	locator := archive.New(archive.Config{
		BaseURL:   cfg.Archive.BaseURL,
		UserAgent: cfg.Archive.UserAgent,
		Timeout:   cfg.Archive.Timeout,
	})
	extractor := extract.New(extract.Config{
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.Scraper.Timeout,
	})
	runner := batch.New(batch.Config{Workers: cfg.Scraper.Workers}, locator, extractor)

	// Use event-driven flow when S3 storage is configured
	if cfg.Storage.Endpoint != "" {
		return runEventDrivenScrape(ctx, &cfg, runner, platforms)
	}

	// Local-only flow: CSV outputs under the output dir
	return runLocalScrape(ctx, &cfg, runner, platforms)
}

// runLocalScrape writes summary tables and word corpora to the local
// output directory.
func runLocalScrape(ctx context.Context, cfg *config.Config, runner *batch.Runner, platforms []config.Platform) error {
	totalScraped := 0
	totalFailed := 0

	for _, platform := range platforms {
		fmt.Printf("Scraping: %s\n", platform.Name)

		result, err := runner.Run(ctx, platform)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}

		if err := writeLocal(cfg.Output.Dir, result); err != nil {
			return err
		}

		totalScraped += result.Scraped
		totalFailed += result.Failed
		fmt.Printf("  Rows: %d, Scraped: %d, Failed: %d, Duration: %v\n",
			len(result.Records), result.Scraped, result.Failed, result.Duration)
	}

	fmt.Printf("\nTotal: %d documents scraped, %d rows failed\n", totalScraped, totalFailed)
	return nil
}

// writeLocal persists one platform run under the output dir.
func writeLocal(dir string, result *batch.Result) error {
	if err := store.WriteSummary(dir, result.Platform, result.Records); err != nil {
		return fmt.Errorf("writing summary for %s: %w", result.Platform, err)
	}
	for _, doc := range result.Documents {
		if err := store.WriteWords(dir, result.Platform, doc); err != nil {
			return fmt.Errorf("writing words for %s: %w", result.Platform, err)
		}
	}
	return nil
}

// runEventDrivenScrape writes runs to S3 and, unless disabled, hands
// each completed run to the ingestion worker.
func runEventDrivenScrape(ctx context.Context, cfg *config.Config, runner *batch.Runner, platforms []config.Platform) error {
	storageClient, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	if err := storageClient.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}

	if noIngest {
		return runScrapeOnly(ctx, cfg, runner, storageClient, platforms)
	}

	return runScrapeWithIngest(ctx, cfg, runner, storageClient, platforms)
}

// runScrapeOnly writes runs to S3 without ingestion.
func runScrapeOnly(ctx context.Context, cfg *config.Config, runner *batch.Runner, storageClient *storage.Client, platforms []config.Platform) error {
	totalPages := 0

	for _, platform := range platforms {
		fmt.Printf("Scraping to S3: %s\n", platform.Name)

		result, err := runner.Run(ctx, platform)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}

		prefix, err := storeRun(ctx, cfg, storageClient, result)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}

		totalPages += len(result.Pages)
		fmt.Printf("  Pages: %d, Prefix: %s\n", len(result.Pages), prefix)
	}

	fmt.Printf("\nTotal: %d pages written to S3\n", totalPages)
	fmt.Println("Run 'policyscope ingest --prefix <prefix>' to index these documents")
	return nil
}

// runScrapeWithIngest uses channels to coordinate scraping and ingestion.
func runScrapeWithIngest(ctx context.Context, cfg *config.Config, runner *batch.Runner, storageClient *storage.Client, platforms []config.Platform) error {
	esClient, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to create ES client: %w", err)
	}

	engine := ingestion.New(storageClient, esClient)

	// Event channel for scrape completion
	scrapeEvents := make(chan events.ScrapeCompleteEvent)
	done := make(chan struct{})

	var totalDocsIndexed int
	var totalDuration time.Duration

	// Start ingestion worker (consumer)
	go func() {
		defer close(done)
		for event := range scrapeEvents {
			fmt.Printf("Ingesting: %s (%d pages)\n", event.Prefix, event.PageCount)

			result, err := engine.Ingest(ctx, event.Prefix)
			if err != nil {
				fmt.Printf("  Error: %v\n", err)
				continue
			}

			totalDocsIndexed += result.DocsIndexed
			totalDuration += result.Duration

			fmt.Printf("  Docs indexed: %d, Duration: %v\n", result.DocsIndexed, result.Duration)
			for _, e := range result.Errors {
				fmt.Printf("  Warning: %s\n", e)
			}
		}
	}()

	// Scrape platforms (producer)
	totalPages := 0
	for _, platform := range platforms {
		fmt.Printf("Scraping: %s\n", platform.Name)

		result, err := runner.Run(ctx, platform)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}

		prefix, err := storeRun(ctx, cfg, storageClient, result)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}

		totalPages += len(result.Pages)
		fmt.Printf("  Pages: %d, Prefix: %s\n", len(result.Pages), prefix)

		// Send event to ingestion worker
		scrapeEvents <- events.ScrapeCompleteEvent{
			Bucket:    storageClient.Bucket(),
			Prefix:    prefix,
			Platform:  result.Platform,
			PageCount: len(result.Pages),
			Timestamp: time.Now(),
		}
	}

	// Close channel and wait for ingestion to complete
	close(scrapeEvents)
	<-done

	fmt.Printf("\nTotal: %d pages scraped, %d docs indexed in %v\n",
		totalPages, totalDocsIndexed, totalDuration)

	return nil
}

// storeRun writes one platform run to S3 and returns its prefix. The
// local CSV outputs are written as well so the report command works in
// either mode.
func storeRun(ctx context.Context, cfg *config.Config, storageClient *storage.Client, result *batch.Result) (string, error) {
	if err := writeLocal(cfg.Output.Dir, result); err != nil {
		return "", err
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	prefix := fmt.Sprintf("runs/%s/%s", result.Platform, timestamp)

	pageIDs := make([]string, 0, len(result.Pages))
	for _, page := range result.Pages {
		if err := storageClient.PutPage(ctx, prefix, page); err != nil {
			return "", fmt.Errorf("storing page %s: %w", page.ID, err)
		}
		pageIDs = append(pageIDs, page.ID)
	}

	summary, err := store.SummaryCSV(result.Records)
	if err != nil {
		return "", err
	}
	if err := storageClient.PutSummary(ctx, prefix, summary); err != nil {
		return "", fmt.Errorf("storing summary: %w", err)
	}

	meta := storage.RunMetadata{
		Platform:  result.Platform,
		Timestamp: timestamp,
		Rows:      len(result.Records),
		PageCount: len(result.Pages),
		Pages:     pageIDs,
	}
	if err := storageClient.PutMetadata(ctx, prefix, meta); err != nil {
		return "", fmt.Errorf("storing metadata: %w", err)
	}

	return prefix, nil
}
