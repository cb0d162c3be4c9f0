package links

import (
	"net/url"
	"path"
	"strings"

	"github.com/policyscope/policyscope/internal/archive"
	"github.com/policyscope/policyscope/pkg/models"
)

// keepWords is the relevance vocabulary: a link survives only if its
// label contains at least one of these, case-insensitively.
var keepWords = []string{
	"terms", "policy", "policies", "notice", "procedure", "guideline", "tips", "here",
}

// dropWords excludes duplicate-format and non-policy links.
// "printable" and "plain text" guard against alternate renditions of a
// document already captured through its canonical link.
var dropWords = []string{"printable", "plain text", "contact", "support"}

// Filter keeps the legally relevant links from a scraped document,
// resolves them to absolute URLs, and deduplicates. snapshotURL is the
// replay URL of the document the links came from; schemeless hrefs
// resolve against the original site's root (scheme+host only), since
// replay paths are not directory-structured the way live sites are.
func Filter(raw []models.RawLink, snapshotURL string) []models.ResolvedLink {
	siteRoot := archive.SiteRoot(archive.OriginalURL(snapshotURL))
	self := stripFragmentQuery(snapshotURL)
	selfOriginal := stripFragmentQuery(archive.OriginalURL(snapshotURL))

	seen := make(map[string]bool)
	var out []models.ResolvedLink
	for _, link := range raw {
		label := strings.TrimSpace(link.Label)
		if !relevant(label) {
			continue
		}

		resolved := resolve(link.Href, siteRoot)
		if resolved == "" {
			continue
		}
		if resolved == self || resolved == selfOriginal {
			continue
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true

		out = append(out, models.ResolvedLink{
			URL:   resolved,
			Label: cleanLabel(label, resolved),
		})
	}
	return out
}

func relevant(label string) bool {
	lower := strings.ToLower(label)
	for _, w := range dropWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	for _, w := range keepWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// resolve makes href absolute and strips fragment and query so that
// table-of-contents anchors into one document collapse to one entry.
func resolve(href, siteRoot string) string {
	href = stripFragmentQuery(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.Scheme != "" {
		return href
	}
	if siteRoot == "" {
		return ""
	}
	return siteRoot + "/" + strings.TrimLeft(u.Path, "./")
}

func stripFragmentQuery(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

// cleanLabel recovers a usable name when the anchor text is
// uninformative ("click here"): the target's filename, extension
// stripped, names the policy better than the label does.
func cleanLabel(label, resolvedURL string) string {
	if !containsWord(strings.ToLower(label), "here") {
		return label
	}
	name := path.Base(resolvedURL)
	return strings.TrimSuffix(name, path.Ext(name))
}

func containsWord(s, word string) bool {
	for _, f := range strings.Fields(s) {
		if strings.Trim(f, ".,;:!") == word {
			return true
		}
	}
	return false
}
