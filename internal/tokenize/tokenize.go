package tokenize

import (
	"regexp"
	"strings"

	"github.com/policyscope/policyscope/pkg/models"
)

// wordPattern matches a word: a run of letters or digits, optionally
// carrying an internal apostrophe ("don't" is one word).
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)?`)

// Tokenize splits paragraphs into a flat ordered sequence of word
// tokens. Paragraph indices are 1-based in input order. Words are
// lowercased so downstream counting treats "Terms" and "terms" as one
// word. An empty paragraph sequence yields an empty token sequence,
// which is a present-but-empty result, not a failure.
func Tokenize(paragraphs []string) []models.WordToken {
	var tokens []models.WordToken
	for i, p := range paragraphs {
		for _, w := range wordPattern.FindAllString(p, -1) {
			tokens = append(tokens, models.WordToken{
				Paragraph: i + 1,
				Word:      strings.ToLower(w),
			})
		}
	}
	return tokens
}

// Count returns the number of word tokens across paragraphs.
func Count(paragraphs []string) int {
	n := 0
	for _, p := range paragraphs {
		n += len(wordPattern.FindAllString(p, -1))
	}
	return n
}
