package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/policyscope/policyscope/pkg/models"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty endpoint",
			config:  Config{Endpoint: "", Bucket: "test"},
			wantErr: true,
		},
		{
			name:    "empty bucket",
			config:  Config{Endpoint: "localhost:9000", Bucket: ""},
			wantErr: true,
		},
		{
			name: "valid config",
			config: Config{
				Endpoint:        "localhost:9000",
				Bucket:          "test",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestIntegration_S3Operations tests actual S3 operations against MinIO.
// Skip if MinIO is not running.
func TestIntegration_S3Operations(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := New(Config{
		Endpoint:        endpoint,
		Bucket:          "policyscope-test",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UseSSL:          false,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	// Try to ensure bucket - skip if MinIO is not available
	if err := client.EnsureBucket(ctx); err != nil {
		t.Skipf("MinIO not available, skipping integration test: %v", err)
	}

	// Test prefix for this run
	prefix := "scrapes/example/2024-12-04T17-30-00-test123"

	page := models.PolicyDocument{
		ID:           "abc123",
		Platform:     "example",
		PolicyName:   "Terms of Service",
		URL:          "https://site.com/terms",
		SnapshotURL:  "http://web.archive.org/web/20190103121500/https://site.com/terms",
		SnapshotTime: time.Date(2019, 1, 3, 12, 15, 0, 0, time.UTC),
		Content:      "# Terms\n\nBe nice.",
		WordCount:    3,
		ScrapedAt:    time.Now().UTC(),
	}

	// Test PutPage
	t.Run("PutPage", func(t *testing.T) {
		if err := client.PutPage(ctx, prefix, page); err != nil {
			t.Fatalf("PutPage() error = %v", err)
		}
	})

	// Test GetPage
	t.Run("GetPage", func(t *testing.T) {
		got, err := client.GetPage(ctx, prefix, "abc123.json")
		if err != nil {
			t.Fatalf("GetPage() error = %v", err)
		}
		if got.PolicyName != page.PolicyName {
			t.Errorf("GetPage().PolicyName = %q, want %q", got.PolicyName, page.PolicyName)
		}
		if got.WordCount != page.WordCount {
			t.Errorf("GetPage().WordCount = %d, want %d", got.WordCount, page.WordCount)
		}
	})

	// Test PutSummary
	t.Run("PutSummary", func(t *testing.T) {
		csv := "type,policy_name,word_count\nprimary,Terms of Service,3\n"
		if err := client.PutSummary(ctx, prefix, csv); err != nil {
			t.Fatalf("PutSummary() error = %v", err)
		}
	})

	// Test PutMetadata
	t.Run("PutMetadata", func(t *testing.T) {
		meta := RunMetadata{
			Platform:  "example",
			Timestamp: "2024-12-04T17:30:00Z",
			Rows:      2,
			PageCount: 1,
			Pages:     []string{"abc123"},
		}
		if err := client.PutMetadata(ctx, prefix, meta); err != nil {
			t.Fatalf("PutMetadata() error = %v", err)
		}
	})

	// Test GetMetadata
	t.Run("GetMetadata", func(t *testing.T) {
		meta, err := client.GetMetadata(ctx, prefix)
		if err != nil {
			t.Fatalf("GetMetadata() error = %v", err)
		}
		if meta.Platform != "example" {
			t.Errorf("GetMetadata().Platform = %q, want %q", meta.Platform, "example")
		}
		if meta.PageCount != 1 {
			t.Errorf("GetMetadata().PageCount = %d, want %d", meta.PageCount, 1)
		}
	})

	// Test ListPageFiles
	t.Run("ListPageFiles", func(t *testing.T) {
		files, err := client.ListPageFiles(ctx, prefix)
		if err != nil {
			t.Fatalf("ListPageFiles() error = %v", err)
		}
		if len(files) != 1 {
			t.Errorf("ListPageFiles() returned %d files, want 1", len(files))
		}
		if len(files) > 0 && files[0] != "abc123.json" {
			t.Errorf("ListPageFiles()[0] = %q, want %q", files[0], "abc123.json")
		}
	})
}
