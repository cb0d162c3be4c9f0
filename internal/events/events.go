package events

import "time"

// ScrapeCompleteEvent is sent when a platform run finishes writing to S3.
type ScrapeCompleteEvent struct {
	Bucket    string    // S3 bucket name (e.g., "policyscope")
	Prefix    string    // S3 prefix (e.g., "runs/twitter/2019-06-01T12-00-00-abc123")
	Platform  string    // Platform the run scraped
	PageCount int       // Number of policy pages stored
	Timestamp time.Time // When the run completed
}

// IngestionCompleteEvent is sent when ingestion finishes indexing.
type IngestionCompleteEvent struct {
	Prefix      string        // S3 prefix that was ingested
	DocsIndexed int           // Number of documents indexed
	Duration    time.Duration // How long ingestion took
	Errors      []string      // Any errors encountered (non-fatal)
}
