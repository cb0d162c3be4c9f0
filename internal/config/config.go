package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Archive       Archive       `mapstructure:"archive"`
	Scraper       Scraper       `mapstructure:"scraper"`
	Output        Output        `mapstructure:"output"`
	Storage       Storage       `mapstructure:"storage"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	MCP           MCP           `mapstructure:"mcp"`
	Platforms     []Platform    `mapstructure:"platforms"`
}

// Archive holds Wayback Machine availability API configuration.
type Archive struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Scraper holds snapshot fetching and batch configuration.
type Scraper struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Workers   int           `mapstructure:"workers"`
}

// Output holds local result persistence configuration.
type Output struct {
	Dir string `mapstructure:"dir"`
}

// Storage holds optional S3/MinIO storage configuration. An empty
// endpoint disables the S3 sink.
type Storage struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Platform defines one platform whose terms documents are tracked.
type Platform struct {
	Name        string   `mapstructure:"name"`
	URL         string   `mapstructure:"url"`
	DisplayName string   `mapstructure:"display_name"` // primary document name, defaults to "Terms of Service"
	Selectors   []string `mapstructure:"selectors"`    // content selector fallback list, tried in order
	From        string   `mapstructure:"from"`         // first target month, "2006-01"
	To          string   `mapstructure:"to"`           // last target month, inclusive
	Secondary   bool     `mapstructure:"secondary"`    // scrape documents linked from primaries
}

const monthLayout = "2006-01"

// DateRange parses the platform's monthly bounds.
func (p Platform) DateRange() (from, to time.Time, err error) {
	from, err = time.Parse(monthLayout, p.From)
	if err != nil {
		return from, to, fmt.Errorf("platform %s: parsing from %q: %w", p.Name, p.From, err)
	}
	to, err = time.Parse(monthLayout, p.To)
	if err != nil {
		return from, to, fmt.Errorf("platform %s: parsing to %q: %w", p.Name, p.To, err)
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("platform %s: range %s..%s is inverted", p.Name, p.From, p.To)
	}
	return from, to, nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Archive: Archive{
			BaseURL:   "https://archive.org/wayback/available",
			UserAgent: "policyscope/1.0",
			Timeout:   30 * time.Second,
		},
		Scraper: Scraper{
			UserAgent: "policyscope/1.0",
			Timeout:   30 * time.Second,
			Workers:   3, // low single digits, the archive rate-limits
		},
		Output: Output{
			Dir: "data",
		},
		Storage: Storage{
			Endpoint:        "", // S3 sink disabled by default
			Bucket:          "policyscope",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		Elasticsearch: Elasticsearch{
			Addresses: []string{"http://localhost:9200"},
			Index:     "policyscope-documents",
		},
		MCP: MCP{
			Name:    "policyscope",
			Version: "1.0.0",
		},
	}
}
