package annotate

import "strings"

// Recognized section headers, in generator order. "Title:" is not produced
// by the model; it is the injection point when a caller prefixes its own
// title line.
var sectionHeaders = []string{
	"Title:",
	"Explanation:",
	"Equation breakdown:",
	"Intuition:",
	"Mental checkpoint:",
	"Connections:",
}

// Normalize prepares raw model output for the renderer: non-breaking spaces
// become ordinary spaces and recognized header lines are rewritten to the
// bold-emphasis form the renderer consumes.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return FormatHeaders(text)
}

// FormatHeaders rewrites each recognized section header to "**Label:**"
// followed by a line break. Headers only match at the start of a line; text
// without recognized headers passes through untouched. Already-rewritten
// headers no longer match, so a second pass is a no-op.
func FormatHeaders(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		matched := false
		for _, h := range sectionHeaders {
			if !strings.HasPrefix(line, h) {
				continue
			}
			label := strings.TrimSuffix(h, ":")
			rest := strings.TrimLeft(line[len(h):], " ")
			out = append(out, "**"+label+":**")
			if rest != "" {
				out = append(out, rest)
			} else {
				out = append(out, "")
			}
			matched = true
			break
		}
		if !matched {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
