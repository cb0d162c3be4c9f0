package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/policyscope/policyscope/pkg/models"
)

// ErrNotArchived is returned when the archive holds no snapshot for a
// URL (availability flag absent or false).
var ErrNotArchived = errors.New("no snapshot archived")

// StatusError reports a non-2xx response from the availability API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("availability API returned HTTP %d", e.Code)
}

// compactTimestamp is the archive's snapshot timestamp format.
const compactTimestamp = "20060102150405"

// Config holds archive client configuration.
type Config struct {
	BaseURL   string // availability endpoint, e.g. "https://archive.org/wayback/available"
	UserAgent string
	Timeout   time.Duration
}

// Client queries the Wayback Machine availability API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a new archive client with the given configuration.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://archive.org/wayback/available"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "policyscope/1.0"
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// availabilityResponse mirrors the availability API's JSON shape.
type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			Timestamp string `json:"timestamp"`
			URL       string `json:"url"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

// Locate returns the archived snapshot closest to date for the given
// URL. A zero date asks for the most recent snapshot. Exactly one
// request is made per call; there are no retries, callers record the
// failure and move on.
func (c *Client) Locate(ctx context.Context, target string, date time.Time) (models.Snapshot, error) {
	params := url.Values{"url": {target}}
	if !date.IsZero() {
		params.Set("timestamp", date.Format("20060102"))
	}
	reqURL := c.config.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("availability request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Snapshot{}, &StatusError{Code: resp.StatusCode}
	}

	var ar availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return models.Snapshot{}, fmt.Errorf("parsing availability response: %w", err)
	}

	closest := ar.ArchivedSnapshots.Closest
	if !closest.Available {
		return models.Snapshot{}, fmt.Errorf("%w: %s", ErrNotArchived, target)
	}

	ts, err := time.Parse(compactTimestamp, closest.Timestamp)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("parsing snapshot timestamp %q: %w", closest.Timestamp, err)
	}

	slog.Debug("located snapshot", "url", target, "date", date.Format("2006-01-02"), "snapshot", closest.URL)

	return models.Snapshot{Timestamp: ts, URL: closest.URL}, nil
}

// OriginalURL recovers the pre-archive URL from a replay URL by
// stripping the replay host and the embedded timestamp segment. Replay
// URLs look like
// http://web.archive.org/web/20190103121500/https://site.com/terms,
// possibly with a modifier suffix on the timestamp (e.g. "id_").
// Non-replay URLs are returned unchanged.
func OriginalURL(replayURL string) string {
	idx := strings.Index(replayURL, "/web/")
	if idx < 0 {
		return replayURL
	}
	rest := replayURL[idx+len("/web/"):]
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return replayURL
	}
	return rest[slash+1:]
}

// SiteRoot returns scheme+host of rawURL with path, query and fragment
// emptied. Replay paths are not directory-structured the way live
// sites are, so schemeless links resolve against the root, never the
// snapshot's directory.
func SiteRoot(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
