package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Snapshot is an archived copy of a page located through the Wayback
// availability API.
type Snapshot struct {
	Timestamp time.Time
	URL       string
}

// RawLink is an anchor as it appears in the adopted content block.
type RawLink struct {
	Href  string
	Label string
}

// ResolvedLink is a RawLink after normalization: absolute URL with
// fragment and query stripped, deduplicated, with a usable label.
type ResolvedLink struct {
	URL   string
	Label string
}

// Document is the transient output of extracting one snapshot.
type Document struct {
	Title       string
	ContentHTML string
	Paragraphs  []string
	Links       []RawLink
}

// WordToken is one word of a document, tagged with its 1-based
// paragraph index.
type WordToken struct {
	Paragraph int
	Word      string
}

// Record types distinguish the two scrape rounds.
const (
	TypePrimary   = "primary"
	TypeSecondary = "secondary"
)

// TermRecord is one summary row: a (document, target date) pair from
// either round. WordCount is nil exactly when Err is non-empty.
type TermRecord struct {
	Type         string
	PolicyName   string
	TargetURL    string
	TargetDate   time.Time
	SnapshotTime time.Time
	SnapshotURL  string
	WordCount    *int
	Err          string
}

// DocumentWords is the durable word corpus for one scraped document.
type DocumentWords struct {
	PolicyName   string
	TargetDate   time.Time
	SnapshotTime time.Time
	Tokens       []WordToken
}

// PolicyDocument is the archived rendition of a scraped policy page,
// written to object storage and indexed for search.
type PolicyDocument struct {
	ID           string    `json:"id"`
	Platform     string    `json:"platform"`
	PolicyName   string    `json:"policy_name"`
	URL          string    `json:"url"`
	SnapshotURL  string    `json:"snapshot_url"`
	SnapshotTime time.Time `json:"snapshot_time"`
	Content      string    `json:"content"` // markdown
	WordCount    int       `json:"word_count"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// GenerateDocumentID creates a deterministic ID from a snapshot URL.
// The ID is a SHA-256 hash (first 16 chars) of the URL.
func GenerateDocumentID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
