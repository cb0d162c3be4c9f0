package processor

import (
	"strings"
	"testing"
)

func TestProcessor_ConvertHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string // Expected substrings in output
	}{
		{
			name: "converts headings",
			html: `<div><h1>Terms of Service</h1><h2>1. Acceptance</h2></div>`,
			contains: []string{
				"# Terms of Service",
				"## 1. Acceptance",
			},
		},
		{
			name: "converts paragraphs",
			html: `<div><p>By using the service you agree.</p><p>Second paragraph.</p></div>`,
			contains: []string{
				"By using the service you agree.",
				"Second paragraph.",
			},
		},
		{
			name: "converts links",
			html: `<div><p>See our <a href="https://site.com/privacy">Privacy Policy</a>.</p></div>`,
			contains: []string{
				"[Privacy Policy](https://site.com/privacy)",
			},
		},
		{
			name: "converts lists",
			html: `<div><ul><li>No scraping</li><li>No reselling</li></ul></div>`,
			contains: []string{
				"No scraping",
				"No reselling",
			},
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Convert(tt.html)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, result)
				}
			}
		})
	}
}

func TestProcessor_ConvertEmptyInput(t *testing.T) {
	p := New()

	result, err := p.Convert("")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result != "" {
		t.Errorf("Convert(\"\") = %q, want empty string", result)
	}
}
