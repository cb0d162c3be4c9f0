// Package store persists batch results to the local filesystem. It is
// the injected persistence collaborator: the batch runner produces
// value types and never touches the disk layout itself.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/policyscope/policyscope/pkg/models"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
)

var summaryHeader = []string{
	"type", "policy_name", "target_url", "target_date",
	"snapshot_timestamp", "snapshot_url", "word_count", "error",
}

// SummaryCSV renders the summary table as CSV text. Errored rows keep
// their error message and an empty word_count; they are recorded,
// never dropped.
func SummaryCSV(records []models.TermRecord) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(summaryHeader); err != nil {
		return "", err
	}
	for _, r := range records {
		wordCount := ""
		if r.WordCount != nil {
			wordCount = strconv.Itoa(*r.WordCount)
		}
		snapshotTime := ""
		if !r.SnapshotTime.IsZero() {
			snapshotTime = r.SnapshotTime.Format(datetimeLayout)
		}
		row := []string{
			r.Type, r.PolicyName, r.TargetURL, r.TargetDate.Format(dateLayout),
			snapshotTime, r.SnapshotURL, wordCount, r.Err,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteSummary writes one row per TermRecord to
// <dir>/<platform>/summary.csv.
func WriteSummary(dir, platform string, records []models.TermRecord) error {
	platformDir := filepath.Join(dir, platform)
	if err := os.MkdirAll(platformDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	content, err := SummaryCSV(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(platformDir, "summary.csv"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing summary file: %w", err)
	}
	return nil
}

// WriteWords writes one document's ordered (paragraph, word) pairs to
// <dir>/<platform>/words/<date>_<policy>.csv.
func WriteWords(dir, platform string, doc models.DocumentWords) error {
	wordsDir := filepath.Join(dir, platform, "words")
	if err := os.MkdirAll(wordsDir, 0o755); err != nil {
		return fmt.Errorf("creating words dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.csv", doc.TargetDate.Format(dateLayout), slug(doc.PolicyName))
	f, err := os.Create(filepath.Join(wordsDir, name))
	if err != nil {
		return fmt.Errorf("creating words file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"paragraph", "word"}); err != nil {
		return err
	}
	for _, tok := range doc.Tokens {
		if err := w.Write([]string{strconv.Itoa(tok.Paragraph), tok.Word}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadSummary loads the summary table back for the report command.
func ReadSummary(dir, platform string) ([]models.TermRecord, error) {
	f, err := os.Open(filepath.Join(dir, platform, "summary.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []models.TermRecord
	for _, row := range rows[1:] { // skip header
		if len(row) != len(summaryHeader) {
			return nil, fmt.Errorf("summary row has %d fields, want %d", len(row), len(summaryHeader))
		}
		r := models.TermRecord{
			Type:        row[0],
			PolicyName:  row[1],
			TargetURL:   row[2],
			SnapshotURL: row[5],
			Err:         row[7],
		}
		if r.TargetDate, err = time.Parse(dateLayout, row[3]); err != nil {
			return nil, fmt.Errorf("parsing target_date %q: %w", row[3], err)
		}
		if row[4] != "" {
			if r.SnapshotTime, err = time.Parse(datetimeLayout, row[4]); err != nil {
				return nil, fmt.Errorf("parsing snapshot_timestamp %q: %w", row[4], err)
			}
		}
		if row[6] != "" {
			n, err := strconv.Atoi(row[6])
			if err != nil {
				return nil, fmt.Errorf("parsing word_count %q: %w", row[6], err)
			}
			r.WordCount = &n
		}
		records = append(records, r)
	}
	return records, nil
}

// slug turns a policy name into a filesystem-safe file name segment.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
