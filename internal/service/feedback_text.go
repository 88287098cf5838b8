package service

import (
	"strings"

	"github.com/openclass/portal-service/internal/models"
)

// Keyword buckets for the feedback sectioner. Matching is
// case-insensitive and first-match-wins in the order below; sentences
// matching nothing land in Suggestions.
var (
	strengthKeywords = []string{
		"good", "great", "excellent", "well", "clear", "liked", "enjoy",
		"helpful", "strong", "best",
	}
	weaknessKeywords = []string{
		"bad", "poor", "confusing", "unclear", "hard to", "difficult",
		"weak", "missing", "too fast", "too slow", "problem",
	}
	resourceKeywords = []string{
		"link", "book", "article", "video", "chapter", "slide", "read",
		"material", "resource", "documentation",
	}
)

// SplitFeedback classifies each sentence of free-text feedback into
// strengths, weaknesses, resources or suggestions. The split is a
// display heuristic only; the raw text stays the source of truth.
func SplitFeedback(text string) *models.Sections {
	sections := &models.Sections{}
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		switch {
		case containsAny(lower, strengthKeywords):
			sections.Strengths = append(sections.Strengths, sentence)
		case containsAny(lower, weaknessKeywords):
			sections.Weaknesses = append(sections.Weaknesses, sentence)
		case containsAny(lower, resourceKeywords):
			sections.Resources = append(sections.Resources, sentence)
		default:
			sections.Suggestions = append(sections.Suggestions, sentence)
		}
	}
	return sections
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// splitSentences breaks text on terminal punctuation and newlines,
// dropping empty fragments.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}
	for _, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return sentences
}
