package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/policyscope/policyscope/internal/elasticsearch"
	"github.com/policyscope/policyscope/internal/storage"
)

// Result holds ingestion execution results.
type Result struct {
	Prefix      string
	DocsIndexed int
	Duration    time.Duration
	Errors      []string
}

// Engine reads stored policy pages from S3 and indexes them to Elasticsearch.
type Engine struct {
	storage  *storage.Client
	esClient *elasticsearch.Client
}

// New creates a new ingestion engine.
func New(storageClient *storage.Client, esClient *elasticsearch.Client) *Engine {
	return &Engine{
		storage:  storageClient,
		esClient: esClient,
	}
}

// Ingest indexes every policy page stored under an S3 prefix.
func (e *Engine) Ingest(ctx context.Context, prefix string) (*Result, error) {
	start := time.Now()
	result := &Result{Prefix: prefix}

	slog.Info("starting ingestion", "prefix", prefix)

	// Ensure ES index exists
	if err := e.esClient.CreateIndex(ctx); err != nil {
		return nil, err
	}

	meta, err := e.storage.GetMetadata(ctx, prefix)
	if err != nil {
		return nil, err
	}
	slog.Info("run metadata loaded", "platform", meta.Platform, "pages", meta.PageCount)

	files, err := e.storage.ListPageFiles(ctx, prefix)
	if err != nil {
		return nil, err
	}

	slog.Info("found files to ingest", "count", len(files))

	// Process each file
	for _, filename := range files {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "context cancelled")
			break
		}

		doc, err := e.storage.GetPage(ctx, prefix, filename)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		slog.Debug("indexing document", "id", doc.ID, "policy", doc.PolicyName)
		if err := e.esClient.IndexDocument(ctx, *doc); err != nil {
			slog.Error("failed to index document", "id", doc.ID, "error", err)
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.DocsIndexed++
		}
	}

	// Refresh index to make documents searchable immediately
	e.esClient.Refresh(ctx)

	result.Duration = time.Since(start)
	slog.Info("ingestion complete",
		"prefix", prefix,
		"docs_indexed", result.DocsIndexed,
		"duration", result.Duration,
		"errors", len(result.Errors))

	return result, nil
}
