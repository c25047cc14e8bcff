package retrieval

import (
	"strings"

	"mend/internal/source"
)

const truncationMarker = "# ... truncated ..."

// keyLinePrefixes mark control-flow and definition lines worth keeping when
// a long snippet is cut down.
var keyLinePrefixes = []string{
	"def ", "class ", "if ", "for ", "while ", "return", "raise", "try", "except", "with ",
}

// buildSnippet renders one element as a snippet. Elements of maxLines or
// fewer source lines are kept verbatim; longer ones are reduced to the
// signature, the docstring, the first body lines, a handful of key lines
// from the middle, and the tail, with every omission marked.
func buildSnippet(el *source.Element, f *source.File, maxLines int) Snippet {
	lines := f.Slice(el.StartLine, el.EndLine)
	s := Snippet{
		Type:      string(el.Kind),
		Name:      el.Name,
		File:      f.Path,
		Line:      el.StartLine,
		Docstring: el.Docstring,
		Size:      len(lines),
	}

	if len(lines) <= maxLines {
		s.Code = strings.Join(lines, "\n")
		return s
	}

	s.Truncated = true
	s.Code = strings.Join(truncateLines(lines), "\n")
	return s
}

// truncateLines keeps: the signature line, the docstring (cut after 20
// lines if still open), the first 10 body lines, up to 5 key lines from
// the middle, and the last 5 lines.
func truncateLines(lines []string) []string {
	out := []string{lines[0]}
	rest := lines[1:]

	doc, rest := splitDocstring(rest)
	out = append(out, doc...)

	firstN := 10
	if firstN > len(rest) {
		firstN = len(rest)
	}
	out = append(out, rest[:firstN]...)

	tailN := 5
	if tailN > len(rest)-firstN {
		tailN = len(rest) - firstN
	}
	middle := rest[firstN : len(rest)-tailN]

	if len(middle) > 0 {
		out = append(out, truncationMarker)
		key := keyLines(middle, 5)
		out = append(out, key...)
		if len(key) > 0 {
			out = append(out, truncationMarker)
		}
	}

	out = append(out, rest[len(rest)-tailN:]...)
	return out
}

// splitDocstring peels a leading triple-quoted docstring off body lines,
// cutting it after 20 lines if it has not closed by then.
func splitDocstring(body []string) (doc, rest []string) {
	if len(body) == 0 {
		return nil, body
	}
	first := strings.TrimSpace(body[0])
	quote := ""
	switch {
	case strings.HasPrefix(first, `"""`):
		quote = `"""`
	case strings.HasPrefix(first, "'''"):
		quote = "'''"
	default:
		return nil, body
	}

	// One-line docstring.
	if len(first) > len(quote)*2-1 && strings.HasSuffix(first, quote) {
		return body[:1], body[1:]
	}

	for i := 1; i < len(body); i++ {
		if strings.Contains(body[i], quote) {
			return body[:i+1], body[i+1:]
		}
		if i == 19 {
			return append(append([]string{}, body[:i+1]...), truncationMarker), body[i+1:]
		}
	}
	return body, nil
}

// keyLines picks up to limit lines starting with a control or definition
// keyword, preserving order.
func keyLines(lines []string, limit int) []string {
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, prefix := range keyLinePrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				out = append(out, line)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

// descriptor builds the ranking text for one element: its name, its first
// source line, and its docstring.
func descriptor(el *source.Element, f *source.File) string {
	firstLine := ""
	if lines := f.Slice(el.StartLine, el.StartLine); len(lines) == 1 {
		firstLine = strings.TrimSpace(lines[0])
	}
	return el.Name + " " + firstLine + " " + el.Docstring
}
