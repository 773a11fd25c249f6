// Package retrieval answers questions from the knowledge base when the
// database cannot.
package retrieval

import (
	"context"
	"fmt"
	"strings"
)

const (
	// NoAnswerFound stands in for an empty answer from the backing service.
	NoAnswerFound = "No answer found in the knowledge base."
	ExcerptLimit  = 200
)

type Citation struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

type Result struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations,omitempty"`
}

type Retriever interface {
	RetrieveAndAnswer(ctx context.Context, question string) (*Result, error)
}

// Normalize guarantees a non-empty answer and bounded excerpts.
func Normalize(r *Result) *Result {
	out := &Result{}
	if r != nil {
		out.Answer = strings.TrimSpace(r.Answer)
		for _, c := range r.Citations {
			out.Citations = append(out.Citations, Citation{Source: c.Source, Excerpt: Excerpt(c.Excerpt)})
		}
	}
	if out.Answer == "" {
		out.Answer = NoAnswerFound
	}
	return out
}

// Excerpt cuts text to ExcerptLimit runes followed by "...".
func Excerpt(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= ExcerptLimit {
		return text
	}
	return string(runes[:ExcerptLimit]) + "..."
}

// FormatCitations renders one "[i] source: excerpt" line per citation.
func FormatCitations(citations []Citation) string {
	lines := make([]string, len(citations))
	for i, c := range citations {
		lines[i] = fmt.Sprintf("[%d] %s: %s", i+1, c.Source, c.Excerpt)
	}
	return strings.Join(lines, "\n")
}

// WithCitations appends a trailing Sources section when there are citations.
func WithCitations(answer string, citations []Citation) string {
	if len(citations) == 0 {
		return answer
	}
	return answer + "\n\nSources:\n" + FormatCitations(citations)
}
