package tokenize

import (
	"reflect"
	"testing"

	"github.com/policyscope/policyscope/pkg/models"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []string
		want       []models.WordToken
	}{
		{
			name:       "single paragraph",
			paragraphs: []string{"Terms of Service"},
			want: []models.WordToken{
				{Paragraph: 1, Word: "terms"},
				{Paragraph: 1, Word: "of"},
				{Paragraph: 1, Word: "service"},
			},
		},
		{
			name:       "paragraph indices are 1-based and ordered",
			paragraphs: []string{"First one.", "Second"},
			want: []models.WordToken{
				{Paragraph: 1, Word: "first"},
				{Paragraph: 1, Word: "one"},
				{Paragraph: 2, Word: "second"},
			},
		},
		{
			name:       "punctuation is not a word",
			paragraphs: []string{"Hello, world — again!"},
			want: []models.WordToken{
				{Paragraph: 1, Word: "hello"},
				{Paragraph: 1, Word: "world"},
				{Paragraph: 1, Word: "again"},
			},
		},
		{
			name:       "apostrophes stay inside the word",
			paragraphs: []string{"Don't sue us"},
			want: []models.WordToken{
				{Paragraph: 1, Word: "don't"},
				{Paragraph: 1, Word: "sue"},
				{Paragraph: 1, Word: "us"},
			},
		},
		{
			name:       "empty input yields empty output",
			paragraphs: nil,
			want:       nil,
		},
		{
			name:       "whitespace-only paragraph yields no tokens",
			paragraphs: []string{"   "},
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.paragraphs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenize_EndToEndSentence(t *testing.T) {
	got := Tokenize([]string{"Terms. See also our Cookie Policy here."})
	if len(got) != 7 {
		t.Fatalf("token count = %d, want 7: %v", len(got), got)
	}
}

func TestCount_MatchesTokenize(t *testing.T) {
	paragraphs := []string{"Terms of Service", "Don't sue us, please."}
	if got, want := Count(paragraphs), len(Tokenize(paragraphs)); got != want {
		t.Errorf("Count() = %d, want %d", got, want)
	}
}
