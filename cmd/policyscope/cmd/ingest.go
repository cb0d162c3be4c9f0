package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/policyscope/policyscope/internal/elasticsearch"
	"github.com/policyscope/policyscope/internal/ingestion"
	"github.com/policyscope/policyscope/internal/storage"
)

var ingestPrefix string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest stored policy pages from S3 into Elasticsearch",
	Long: `Ingest previously scraped policy pages from S3 into Elasticsearch.

Use this command to re-run ingestion on an existing run, or to index
runs that were created with --no-ingest.

Examples:
  # Ingest a specific run by prefix
  policyscope ingest --prefix runs/twitter/2019-06-01T12-00-00`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "S3 prefix to ingest (required)")
	ingestCmd.MarkFlagRequired("prefix")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("ingest command starting", "prefix", ingestPrefix)

	if cfg.Storage.Endpoint == "" {
		return fmt.Errorf("storage not configured - check config file")
	}

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

	fmt.Printf("Ingesting: %s\n", ingestPrefix)

	result, err := engine.Ingest(ctx, ingestPrefix)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Docs indexed: %d\n", result.DocsIndexed)
	fmt.Printf("  Duration: %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("  Warnings: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	return nil
}
