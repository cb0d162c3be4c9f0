package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/policyscope/policyscope/pkg/models"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9000" for MinIO
	Bucket          string // "policyscope"
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client wraps the MinIO/S3 client for policyscope operations.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	err = c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// RunMetadata holds information about one platform scrape run.
type RunMetadata struct {
	Platform  string   `json:"platform"`
	Timestamp string   `json:"timestamp"`
	Rows      int      `json:"rows"`       // summary rows, errored ones included
	PageCount int      `json:"page_count"` // successfully archived pages
	Pages     []string `json:"pages"`      // page document IDs
}

// PutPage writes one archived policy page as JSON to S3.
func (c *Client) PutPage(ctx context.Context, prefix string, doc models.PolicyDocument) error {
	objectName := path.Join(prefix, "pages", doc.ID+".json")

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal page: %w", err)
	}

	_, err = c.minioClient.PutObject(ctx, c.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put page: %w", err)
	}
	return nil
}

// PutSummary writes the platform's summary CSV to S3.
func (c *Client) PutSummary(ctx context.Context, prefix string, csvContent string) error {
	objectName := path.Join(prefix, "summary.csv")
	reader := strings.NewReader(csvContent)

	_, err := c.minioClient.PutObject(ctx, c.bucket, objectName, reader, int64(len(csvContent)), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("failed to put summary: %w", err)
	}
	return nil
}

// PutMetadata writes the run metadata JSON to S3.
func (c *Client) PutMetadata(ctx context.Context, prefix string, meta RunMetadata) error {
	objectName := path.Join(prefix, "metadata.json")

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	reader := bytes.NewReader(data)
	_, err = c.minioClient.PutObject(ctx, c.bucket, objectName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put metadata: %w", err)
	}
	return nil
}

// ListPageFiles returns all page files under a prefix.
func (c *Client) ListPageFiles(ctx context.Context, prefix string) ([]string, error) {
	pagesPrefix := path.Join(prefix, "pages") + "/"
	var files []string

	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    pagesPrefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if strings.HasSuffix(object.Key, ".json") {
			// Return just the filename, not the full path
			files = append(files, path.Base(object.Key))
		}
	}

	return files, nil
}

// GetPage reads one archived policy page from S3.
func (c *Client) GetPage(ctx context.Context, prefix, filename string) (*models.PolicyDocument, error) {
	objectName := path.Join(prefix, "pages", filename)

	object, err := c.minioClient.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	var doc models.PolicyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page: %w", err)
	}

	return &doc, nil
}

// GetMetadata reads the run metadata from S3.
func (c *Client) GetMetadata(ctx context.Context, prefix string) (*RunMetadata, error) {
	objectName := path.Join(prefix, "metadata.json")

	object, err := c.minioClient.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}
