package processor

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Processor converts adopted content HTML into Markdown for the
// archived page copy stored alongside word counts.
type Processor struct{}

// New creates a new HTML to Markdown processor.
func New() *Processor {
	return &Processor{}
}

// Convert transforms HTML content into Markdown.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	markdown, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	// Clean up excessive whitespace
	markdown = strings.TrimSpace(markdown)
	return markdown, nil
}
