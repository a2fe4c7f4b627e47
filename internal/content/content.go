// Package content extracts source material (URLs, raw text, local files)
// into the normalized form consumed by the summarization pipeline.
package content

import (
	"errors"
	"strings"
)

var (
	// ErrUnreachableSource indicates the source could not be fetched or read.
	ErrUnreachableSource = errors.New("source unreachable")

	// ErrUnsupportedFormat indicates the source format is not handled.
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

// Section is one structural division of the source document.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// SourceContent is the normalized output of extraction. It is immutable
// once produced; the pipeline owns it for the duration of one run.
type SourceContent struct {
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Sections  []Section `json:"sections,omitempty"`
	Source    string    `json:"source"`
	WordCount int       `json:"word_count"`
}

// NewSourceContent builds a SourceContent, deriving the word count and
// capping the text at maxLen characters (0 = no cap).
func NewSourceContent(title, text, source string, sections []Section, maxLen int) *SourceContent {
	text = cleanText(text)
	if maxLen > 0 && len(text) > maxLen {
		text = text[:maxLen]
	}
	return &SourceContent{
		Title:     title,
		Text:      text,
		Sections:  sections,
		Source:    source,
		WordCount: len(strings.Fields(text)),
	}
}

// cleanText collapses runs of blank lines and trims surrounding whitespace.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
