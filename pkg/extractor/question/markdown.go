package question

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
)

var markdown = goldmark.New()

// renderHTML converts question text written in markdown to an HTML fragment.
// LaTeX delimiters pass through untouched.
func renderHTML(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var buf bytes.Buffer

	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return ""
	}

	return strings.TrimSpace(buf.String())
}
