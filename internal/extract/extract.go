package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html/charset"

	"github.com/policyscope/policyscope/pkg/models"
)

// ErrMissingURL is returned when extraction is attempted without a
// snapshot URL. This happens when snapshot location failed upstream;
// the batch still records the row, it must never crash on it.
var ErrMissingURL = errors.New("no snapshot URL to extract")

// SelectorMissError reports that no selector in the fallback list
// matched anything in the fetched document. Usually markup drift:
// the selector list needs maintenance for that platform.
type SelectorMissError struct {
	Selectors []string
}

func (e *SelectorMissError) Error() string {
	return fmt.Sprintf("no content matched selectors %v", e.Selectors)
}

// Config holds extractor configuration.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Extractor fetches archived snapshots and pulls out their content.
type Extractor struct {
	config Config
}

// New creates a new Extractor with the given configuration.
func New(config Config) *Extractor {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "policyscope/1.0"
	}
	return &Extractor{config: config}
}

var newlineRuns = regexp.MustCompile(`\n+`)

// Extract fetches snapshotURL and locates its main content block by
// trying selectors in priority order. The first selector with at least
// one match is adopted as the content source; later selectors are
// never tried and elements from different selectors are never mixed.
// An adopted block with no text is a valid empty document, not an
// error.
func (e *Extractor) Extract(ctx context.Context, snapshotURL string, selectors []string) (models.Document, error) {
	if snapshotURL == "" {
		return models.Document{}, ErrMissingURL
	}

	body, contentType, err := e.fetch(ctx, snapshotURL)
	if err != nil {
		return models.Document{}, fmt.Errorf("fetching snapshot: %w", err)
	}

	// Old snapshots predate UTF-8 ubiquity, decode by declared charset.
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		reader = bytes.NewReader(body)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return models.Document{}, fmt.Errorf("parsing snapshot HTML: %w", err)
	}

	var adopted *goquery.Selection
	for _, sel := range selectors {
		s := doc.Find(sel)
		if s.Length() > 0 {
			slog.Debug("selector adopted", "url", snapshotURL, "selector", sel, "matches", s.Length())
			adopted = s
			break
		}
	}
	if adopted == nil {
		return models.Document{}, &SelectorMissError{Selectors: selectors}
	}

	out := models.Document{
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		Paragraphs:  paragraphs(adopted),
		Links:       anchors(adopted),
		ContentHTML: outerHTML(adopted),
	}
	return out, nil
}

// fetch retrieves the snapshot body. Redirects are followed; transport
// failures and non-2xx statuses surface as errors for this item only.
func (e *Extractor) fetch(ctx context.Context, snapshotURL string) ([]byte, string, error) {
	c := colly.NewCollector(colly.UserAgent(e.config.UserAgent))
	c.SetRequestTimeout(e.config.Timeout)

	var body []byte
	var contentType string
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			fetchErr = ctx.Err()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		contentType = r.Headers.Get("Content-Type")
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(snapshotURL); err != nil {
		return nil, "", err
	}
	c.Wait()

	if fetchErr != nil {
		return nil, "", fetchErr
	}
	if body == nil {
		return nil, "", fmt.Errorf("empty response from %s", snapshotURL)
	}
	return body, contentType, nil
}

// paragraphs joins the adopted elements' visible text and splits it on
// runs of newlines into ordered, trimmed paragraph strings.
func paragraphs(sel *goquery.Selection) []string {
	var blocks []string
	sel.Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s.Text())
	})
	joined := strings.Join(blocks, "\n")

	var out []string
	for _, p := range newlineRuns.Split(joined, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// anchors collects href + visible-label pairs from the adopted block.
func anchors(sel *goquery.Selection) []models.RawLink {
	var links []models.RawLink
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, models.RawLink{
			Href:  href,
			Label: strings.TrimSpace(a.Text()),
		})
	})
	return links
}

func outerHTML(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if h, err := goquery.OuterHtml(s); err == nil {
			parts = append(parts, h)
		}
	})
	return strings.Join(parts, "\n")
}
