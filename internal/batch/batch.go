// Package batch orchestrates the two-round scrape of a platform's
// terms documents: every month in the configured range for the primary
// document, then one round over the agreements discovered inside the
// primaries. Failures are recorded per row and never abort the run.
package batch

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/policyscope/policyscope/internal/archive"
	"github.com/policyscope/policyscope/internal/config"
	"github.com/policyscope/policyscope/internal/links"
	"github.com/policyscope/policyscope/internal/processor"
	"github.com/policyscope/policyscope/internal/tokenize"
	"github.com/policyscope/policyscope/pkg/models"
)

// SnapshotLocator finds the archived snapshot closest to a date.
type SnapshotLocator interface {
	Locate(ctx context.Context, url string, date time.Time) (models.Snapshot, error)
}

// DocumentExtractor fetches a snapshot and extracts its content.
type DocumentExtractor interface {
	Extract(ctx context.Context, snapshotURL string, selectors []string) (models.Document, error)
}

// Config holds batch runner configuration.
type Config struct {
	Workers int // simultaneous in-flight scrapes
}

// Result holds one platform run's output: the complete summary table
// plus the durable word corpora and archived page copies.
type Result struct {
	Platform  string
	Records   []models.TermRecord
	Documents []models.DocumentWords
	Pages     []models.PolicyDocument
	Scraped   int // rows with a word count
	Failed    int // rows with a recorded error
	Duration  time.Duration
}

// Runner drives the scrape pipeline for one platform at a time.
type Runner struct {
	config    Config
	locator   SnapshotLocator
	extractor DocumentExtractor
	processor *processor.Processor
}

// New creates a new Runner with the given collaborators.
func New(cfg Config, locator SnapshotLocator, extractor DocumentExtractor) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	return &Runner{
		config:    cfg,
		locator:   locator,
		extractor: extractor,
		processor: processor.New(),
	}
}

// task is one (document, target date) unit of work.
type task struct {
	typ        string
	policyName string
	targetURL  string
	targetDate time.Time
}

// outcome is everything one task produced. The record is always
// present; the rest only on success.
type outcome struct {
	record models.TermRecord
	words  *models.DocumentWords
	page   *models.PolicyDocument
	links  []models.ResolvedLink
}

// Run executes both rounds for a platform and returns the merged
// result table. Per-item failures are annotations on their rows; an
// error return means the run itself could not start or was cancelled.
func (r *Runner) Run(ctx context.Context, platform config.Platform) (*Result, error) {
	start := time.Now()

	from, to, err := platform.DateRange()
	if err != nil {
		return nil, err
	}

	displayName := platform.DisplayName
	if displayName == "" {
		displayName = "Terms of Service"
	}

	var primary []task
	for _, date := range MonthlyDates(from, to) {
		primary = append(primary, task{
			typ:        models.TypePrimary,
			policyName: displayName,
			targetURL:  platform.URL,
			targetDate: date,
		})
	}

	slog.Info("starting batch", "platform", platform.Name, "months", len(primary), "secondary", platform.Secondary)

	outcomes := r.runRound(ctx, platform, primary)

	// Round 2's input set exists only after round 1 fully completes:
	// it is derived from the links the primaries surfaced.
	if platform.Secondary {
		secondary := secondaryTasks(outcomes)
		slog.Info("secondary round", "platform", platform.Name, "documents", len(secondary))
		outcomes = append(outcomes, r.runRound(ctx, platform, secondary)...)
	}

	result := &Result{Platform: platform.Name}
	for _, o := range outcomes {
		result.Records = append(result.Records, o.record)
		if o.record.Err != "" {
			result.Failed++
			continue
		}
		result.Scraped++
		if o.words != nil {
			result.Documents = append(result.Documents, *o.words)
		}
		if o.page != nil {
			result.Pages = append(result.Pages, *o.page)
		}
	}
	sortRecords(result.Records)
	result.Duration = time.Since(start)

	slog.Info("batch complete", "platform", platform.Name,
		"rows", len(result.Records), "scraped", result.Scraped, "failed", result.Failed,
		"duration", result.Duration)

	if ctx.Err() != nil {
		// Rows completed before cancellation stay valid.
		return result, ctx.Err()
	}
	return result, nil
}

// runRound processes tasks with a bounded worker pool. Each worker
// owns its accumulator; they are merged after the join, so no state
// is shared mid-round.
func (r *Runner) runRound(ctx context.Context, platform config.Platform, tasks []task) []outcome {
	jobs := make(chan task)
	acc := make([][]outcome, r.config.Workers)

	var wg sync.WaitGroup
	for i := range acc {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for t := range jobs {
				acc[i] = append(acc[i], r.scrapeOne(ctx, platform, t))
			}
		}(i)
	}

	for _, t := range tasks {
		if ctx.Err() != nil {
			break // stop dispatching, let in-flight work finish
		}
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	var merged []outcome
	for _, a := range acc {
		merged = append(merged, a...)
	}
	return merged
}

// scrapeOne runs the locate → extract → tokenize pipeline for one
// task. Every failure becomes the row's error annotation; nothing
// escapes to abort the batch.
func (r *Runner) scrapeOne(ctx context.Context, platform config.Platform, t task) outcome {
	rec := models.TermRecord{
		Type:       t.typ,
		PolicyName: t.policyName,
		TargetURL:  t.targetURL,
		TargetDate: t.targetDate,
	}

	snap, err := r.locator.Locate(ctx, t.targetURL, t.targetDate)
	if err != nil {
		slog.Debug("snapshot lookup failed", "url", t.targetURL, "date", t.targetDate.Format("2006-01-02"), "error", err)
		rec.Err = err.Error()
		return outcome{record: rec}
	}
	rec.SnapshotTime = snap.Timestamp
	rec.SnapshotURL = snap.URL

	doc, err := r.extractor.Extract(ctx, snap.URL, platform.Selectors)
	if err != nil {
		slog.Debug("extraction failed", "snapshot", snap.URL, "error", err)
		rec.Err = err.Error()
		return outcome{record: rec}
	}

	tokens := tokenize.Tokenize(doc.Paragraphs)
	n := len(tokens)
	rec.WordCount = &n

	out := outcome{
		record: rec,
		words: &models.DocumentWords{
			PolicyName:   t.policyName,
			TargetDate:   t.targetDate,
			SnapshotTime: snap.Timestamp,
			Tokens:       tokens,
		},
		links: links.Filter(doc.Links, snap.URL),
	}

	md, err := r.processor.Convert(doc.ContentHTML)
	if err != nil {
		// The archived copy is best effort, the counts already stand.
		slog.Warn("markdown conversion failed", "snapshot", snap.URL, "error", err)
	}
	out.page = &models.PolicyDocument{
		ID:           models.GenerateDocumentID(snap.URL),
		Platform:     platform.Name,
		PolicyName:   t.policyName,
		URL:          t.targetURL,
		SnapshotURL:  snap.URL,
		SnapshotTime: snap.Timestamp,
		Content:      md,
		WordCount:    n,
		ScrapedAt:    time.Now(),
	}
	return out
}

// secondaryTasks unions the links discovered across successful
// round-1 scrapes, keyed by (target date, original URL). The archive
// rewrites in-page links to its own replay infrastructure; that prefix
// is stripped so round 2 queries the archive fresh for the original
// resource at the same target date. Depth stops here: secondary
// documents' links are extracted but never followed.
func secondaryTasks(outcomes []outcome) []task {
	type key struct {
		date time.Time
		url  string
	}
	seen := make(map[key]bool)
	var tasks []task
	for _, o := range outcomes {
		for _, l := range o.links {
			k := key{date: o.record.TargetDate, url: archive.OriginalURL(l.URL)}
			if seen[k] {
				continue
			}
			seen[k] = true
			tasks = append(tasks, task{
				typ:        models.TypeSecondary,
				policyName: l.Label,
				targetURL:  k.url,
				targetDate: k.date,
			})
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].targetDate.Equal(tasks[j].targetDate) {
			return tasks[i].targetDate.Before(tasks[j].targetDate)
		}
		return tasks[i].targetURL < tasks[j].targetURL
	})
	return tasks
}

// MonthlyDates returns the first of every month from from to to,
// bounds inclusive.
func MonthlyDates(from, to time.Time) []time.Time {
	var dates []time.Time
	d := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !d.After(end) {
		dates = append(dates, d)
		d = d.AddDate(0, 1, 0)
	}
	return dates
}

// sortRecords orders the merged table deterministically: primary rows
// first, then by date, policy name and URL. Re-running against an
// unchanged archive reproduces the same table.
func sortRecords(records []models.TermRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Type != b.Type {
			return a.Type == models.TypePrimary
		}
		if !a.TargetDate.Equal(b.TargetDate) {
			return a.TargetDate.Before(b.TargetDate)
		}
		if a.PolicyName != b.PolicyName {
			return a.PolicyName < b.PolicyName
		}
		return a.TargetURL < b.TargetURL
	})
}
