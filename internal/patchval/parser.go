package patchval

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// hunkHeaderRe matches headers like "@@ -1,5 +1,7 @@ def foo"; missing
// counts default to 1.
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// parseDiff scans arbitrary diff text into per-file hunks. The scanner is
// deliberately tolerant: a "+++ " line opens a file section, a well-formed
// "@@" header opens a hunk, and everything malformed is skipped with a
// warning so the remaining hunks still get checked.
func parseDiff(text string) (files []FileDiff, warnings []string) {
	var (
		current *FileDiff
		hunk    *Hunk
		after   bool // first +/- seen; context now accumulates after
	)

	closeHunk := func() {
		if hunk != nil && current != nil {
			current.Hunks = append(current.Hunks, *hunk)
		}
		hunk = nil
		after = false
	}
	closeFile := func() {
		closeHunk()
		if current != nil {
			files = append(files, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "--- "):
			// Old-file marker: the next file section is starting, so the
			// current hunk must not swallow it as a removal line.
			closeHunk()

		case strings.HasPrefix(line, "+++"):
			closeFile()
			current = &FileDiff{Path: parsePath(line)}

		case strings.HasPrefix(line, "@@"):
			if current == nil {
				warnings = append(warnings, fmt.Sprintf("hunk header before any +++ line: %s", line))
				continue
			}
			closeHunk()
			h, ok := parseHunkHeader(line)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("malformed hunk header skipped: %s", line))
				continue
			}
			hunk = h

		case hunk == nil:
			// Preamble or body of a skipped hunk.

		case strings.HasPrefix(line, "-"):
			after = true
			hunk.Removals = append(hunk.Removals, line[1:])

		case strings.HasPrefix(line, "+"):
			after = true
			hunk.Additions = append(hunk.Additions, line[1:])

		case strings.HasPrefix(line, " "), line == "":
			content := ""
			if line != "" {
				content = line[1:]
			}
			if after {
				hunk.ContextAfter = append(hunk.ContextAfter, content)
			} else {
				hunk.ContextBefore = append(hunk.ContextBefore, content)
			}

		default:
			// "\ No newline at end of file" and other noise.
		}
	}

	closeFile()
	return files, warnings
}

// parsePath strips the "+++ " marker and an optional a/ or b/ prefix.
func parsePath(line string) string {
	path := strings.TrimSpace(strings.TrimPrefix(line, "+++"))
	path = strings.TrimPrefix(path, "b/")
	path = strings.TrimPrefix(path, "a/")
	if i := strings.IndexByte(path, '\t'); i != -1 {
		path = path[:i]
	}
	return path
}

func parseHunkHeader(line string) (*Hunk, bool) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	h := &Hunk{OldCount: 1, NewCount: 1}
	h.OldStart, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		h.OldCount, _ = strconv.Atoi(m[2])
	}
	h.NewStart, _ = strconv.Atoi(m[3])
	if m[4] != "" {
		h.NewCount, _ = strconv.Atoi(m[4])
	}
	return h, true
}
