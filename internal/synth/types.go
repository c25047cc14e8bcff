// Package synth turns fix intents into unified-diff patches.
package synth

import "strings"

// Patch is a stateless value: the unified-diff text for one file plus
// derived stats for downstream accounting.
type Patch struct {
	ID         string `json:"id"`
	TargetFile string `json:"targetFile"`
	Diff       string `json:"diff"`

	LinesAdded   int `json:"linesAdded"`
	LinesDeleted int `json:"linesDeleted"`
	TotalChanges int `json:"totalChanges"`
}

// computeStats counts +/- body lines, excluding the +++/--- header lines.
func computeStats(diff string) (added, deleted int) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			deleted++
		}
	}
	return added, deleted
}
