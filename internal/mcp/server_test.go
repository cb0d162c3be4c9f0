package mcp

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/policyscope/policyscope/internal/elasticsearch"
	"github.com/policyscope/policyscope/pkg/models"
)

func skipIfNoES(t *testing.T) {
	if os.Getenv("SKIP_ES_TESTS") == "1" {
		t.Skip("Skipping ES tests")
	}
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     "test-skip",
	})
	if err != nil {
		t.Skipf("Skipping: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !client.Ping(ctx) {
		t.Skip("Skipping: ES not available")
	}
}

func TestServer_Creation(t *testing.T) {
	s, err := NewServer(Config{
		Name:        "policyscope",
		Version:     "1.0.0",
		ESAddresses: []string{"http://localhost:9200"},
		ESIndex:     "policyscope-test",
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	if s == nil {
		t.Fatal("NewServer() returned nil")
	}

	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}
}

func TestServer_SearchTool(t *testing.T) {
	skipIfNoES(t)

	ctx := context.Background()

	// Setup ES with test data
	esClient, err := elasticsearch.New(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     "policyscope-mcp-test",
	})
	if err != nil {
		t.Fatalf("Failed to create ES client: %v", err)
	}

	// Setup test data
	esClient.DeleteIndex(ctx)
	esClient.CreateIndex(ctx)

	now := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	docs := []models.PolicyDocument{
		{
			ID:           "mcp-test-1",
			Platform:     "site",
			PolicyName:   "Terms of Service",
			URL:          "https://site.com/legal/terms",
			SnapshotTime: now,
			Content:      "# Terms of Service\n\nBy using the service you agree to these terms and any arbitration clause.",
			WordCount:    16,
			ScrapedAt:    now,
		},
		{
			ID:           "mcp-test-2",
			Platform:     "site",
			PolicyName:   "Privacy Policy",
			URL:          "https://site.com/legal/privacy",
			SnapshotTime: now,
			Content:      "# Privacy Policy\n\nWe describe how personal data is collected and retained.",
			WordCount:    12,
			ScrapedAt:    now,
		},
	}

	for _, doc := range docs {
		esClient.IndexDocument(ctx, doc)
	}
	time.Sleep(1 * time.Second)
	esClient.Refresh(ctx)

	// Create server
	s, err := NewServer(Config{
		Name:        "policyscope",
		Version:     "1.0.0",
		ESAddresses: []string{"http://localhost:9200"},
		ESIndex:     "policyscope-mcp-test",
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	// Test search handler directly
	results, err := s.handleSearch(ctx, "arbitration", 10)
	if err != nil {
		t.Fatalf("handleSearch() error = %v", err)
	}

	if len(results) == 0 {
		t.Error("handleSearch() should return results for 'arbitration'")
	}

	// Cleanup
	esClient.DeleteIndex(ctx)
}

func TestServer_GetPolicyTool(t *testing.T) {
	skipIfNoES(t)

	ctx := context.Background()

	// Setup ES with test data
	esClient, err := elasticsearch.New(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     "policyscope-mcp-get-test",
	})
	if err != nil {
		t.Fatalf("Failed to create ES client: %v", err)
	}

	// Setup test data
	esClient.DeleteIndex(ctx)
	esClient.CreateIndex(ctx)

	now := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	doc := models.PolicyDocument{
		ID:           "mcp-get-test",
		Platform:     "site",
		PolicyName:   "Cookie Policy",
		URL:          "https://site.com/cookies",
		SnapshotTime: now,
		Content:      "# Cookie Policy\n\nCookies remember your session and preferences.",
		WordCount:    9,
		ScrapedAt:    now,
	}
	esClient.IndexDocument(ctx, doc)
	time.Sleep(500 * time.Millisecond)

	// Create server
	s, err := NewServer(Config{
		Name:        "policyscope",
		Version:     "1.0.0",
		ESAddresses: []string{"http://localhost:9200"},
		ESIndex:     "policyscope-mcp-get-test",
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	// Test get handler directly
	result, err := s.handleGetPolicy(ctx, "mcp-get-test")
	if err != nil {
		t.Fatalf("handleGetPolicy() error = %v", err)
	}

	if result == nil {
		t.Fatal("handleGetPolicy() returned nil")
	}

	if result.ID != doc.ID {
		t.Errorf("ID = %q, want %q", result.ID, doc.ID)
	}

	// Cleanup
	esClient.DeleteIndex(ctx)
}
