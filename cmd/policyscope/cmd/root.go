package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/policyscope/policyscope/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "policyscope",
	Short: "policyscope: track terms-of-service history via the Wayback Machine",
	Long: `policyscope locates monthly Wayback Machine snapshots of platform
terms-of-service pages, extracts and tokenizes their content, and writes
summary tables and per-document word corpora.

Commands:
  scrape  Run the scrape pipeline for configured platforms
  report  Summarize a previous run from its local output
  search  Search indexed policy pages
  serve   Start the MCP server for policy retrieval`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/policyscope")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// POLICYSCOPE_ELASTICSEARCH_ADDRESSES -> elasticsearch.addresses
	viper.SetEnvPrefix("POLICYSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("archive.base_url", "POLICYSCOPE_ARCHIVE_BASE_URL")
	viper.BindEnv("archive.user_agent", "POLICYSCOPE_ARCHIVE_USER_AGENT")
	viper.BindEnv("scraper.user_agent", "POLICYSCOPE_SCRAPER_USER_AGENT")
	viper.BindEnv("scraper.workers", "POLICYSCOPE_SCRAPER_WORKERS")
	viper.BindEnv("output.dir", "POLICYSCOPE_OUTPUT_DIR")
	viper.BindEnv("storage.endpoint", "POLICYSCOPE_STORAGE_ENDPOINT")
	viper.BindEnv("storage.bucket", "POLICYSCOPE_STORAGE_BUCKET")
	viper.BindEnv("storage.access_key_id", "POLICYSCOPE_STORAGE_ACCESS_KEY_ID")
	viper.BindEnv("storage.secret_access_key", "POLICYSCOPE_STORAGE_SECRET_ACCESS_KEY")
	viper.BindEnv("elasticsearch.addresses", "POLICYSCOPE_ELASTICSEARCH_ADDRESSES")
	viper.BindEnv("elasticsearch.index", "POLICYSCOPE_ELASTICSEARCH_INDEX")
	viper.BindEnv("elasticsearch.username", "POLICYSCOPE_ELASTICSEARCH_USERNAME")
	viper.BindEnv("elasticsearch.password", "POLICYSCOPE_ELASTICSEARCH_PASSWORD")
	viper.BindEnv("mcp.name", "POLICYSCOPE_MCP_NAME")
	viper.BindEnv("mcp.version", "POLICYSCOPE_MCP_VERSION")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special case: addresses as comma-separated string from env
	if addrs := os.Getenv("POLICYSCOPE_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
}
