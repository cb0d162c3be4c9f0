package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/policyscope/policyscope/internal/store"
)

var reportErrorsOnly bool

var reportCmd = &cobra.Command{
	Use:   "report [platform]",
	Short: "Summarize a previous run from its local output",
	Long: `Read a platform's summary table from the output directory and print
a per-document report.

Examples:
  # Full report for one platform
  policyscope report twitter

  # Only the rows that failed
  policyscope report twitter --errors-only`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportErrorsOnly, "errors-only", false, "Show only rows with a recorded error")
}

func runReport(cmd *cobra.Command, args []string) error {
	platform := args[0]
	cfg := GetConfig()

	records, err := store.ReadSummary(cfg.Output.Dir, platform)
	if err != nil {
		return fmt.Errorf("reading summary for %s: %w", platform, err)
	}

	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	scraped := 0
	failed := 0
	for _, r := range records {
		if r.Err != "" {
			failed++
		} else {
			scraped++
		}
	}

	fmt.Printf("Platform: %s\n", platform)
	fmt.Printf("Rows: %d, Scraped: %d, Failed: %d\n\n", len(records), scraped, failed)

	for _, r := range records {
		if reportErrorsOnly && r.Err == "" {
			continue
		}

		fmt.Printf("%s  %-10s %s\n", r.TargetDate.Format("2006-01-02"), r.Type, r.PolicyName)
		if r.Err != "" {
			fmt.Printf("  Error: %s\n", r.Err)
			continue
		}
		count := 0
		if r.WordCount != nil {
			count = *r.WordCount
		}
		fmt.Printf("  Snapshot: %s\n", r.SnapshotTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Words: %d\n", count)
	}

	return nil
}
