package annotate

import (
	"fmt"
	"strings"
)

// The section contract the renderer depends on: exact headers, fixed order,
// plain text plus $...$ / $$...$$ math only.
const systemPrompt = `You are a teaching assistant that generates concise, well-structured annotations for lecture slides.
Use plain text plus LaTeX-style math delimiters ($...$ for inline, $$...$$ for display). No LaTeX packages, no environments.
Sections with exact headers and order, each 2-4 sentences:

Explanation: (Explain what the slide shows in simple, accessible language. Avoid jargon.)
Equation breakdown: (If there are formulas, rewrite them using LaTeX and explain every symbol and operation. Skip this section if no formulas appear.)
Intuition: (Explain the core idea — why it matters and how to think about it.)
Mental checkpoint: (Explain where we are in the lecture flow and how this connects to the broader topic.)
Connections: (Describe how this concept links to past or upcoming topics.)

Keep it compact and didactic.`

const userPromptFmt = `Course: %s

Slide title (if any): %s

Raw slide text:
%s

Write only the annotation content with the exact section headers above, using $...$ or $$...$$ for math.`

const (
	maxFieldLen     = 120
	emptyBodyMarker = "(no text detected)"
)

// BuildUserPrompt assembles the per-page prompt. The title is the first
// non-blank line of the extracted text, or a synthetic "Slide {n}" when the
// page had no text at all.
func BuildUserPrompt(courseName, body string, page int) string {
	title := fmt.Sprintf("Slide %d", page)
	for _, ln := range strings.Split(body, "\n") {
		if strings.TrimSpace(ln) != "" {
			title = ln
			break
		}
	}
	if body == "" {
		body = emptyBodyMarker
	}
	return fmt.Sprintf(userPromptFmt, truncate(courseName, maxFieldLen), truncate(title, maxFieldLen), body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
