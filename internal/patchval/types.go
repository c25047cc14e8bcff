// Package patchval checks a unified diff against current file content and
// suggests relocations for stale hunks. The heuristic checks are advisory;
// the external dry-run apply check decides validity.
package patchval

// FileDiff is one target-file section of a parsed diff.
type FileDiff struct {
	Path  string
	Hunks []Hunk
}

// Hunk is one contiguous change region. Body lines are classified into the
// four slices below; the first removal or addition flips context
// accumulation from before to after.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int

	ContextBefore []string
	Removals      []string
	Additions     []string
	ContextAfter  []string
}

// expectedOld is the file content the hunk claims exists at OldStart.
func (h *Hunk) expectedOld() []string {
	out := make([]string, 0, len(h.ContextBefore)+len(h.Removals)+len(h.ContextAfter))
	out = append(out, h.ContextBefore...)
	out = append(out, h.Removals...)
	out = append(out, h.ContextAfter...)
	return out
}

// anchor is the prefix used for fuzzy relocation: leading context plus the
// removed lines, without trailing context.
func (h *Hunk) anchor() []string {
	out := make([]string, 0, len(h.ContextBefore)+len(h.Removals))
	out = append(out, h.ContextBefore...)
	out = append(out, h.Removals...)
	return out
}

// HunkAnalysis is the per-hunk verdict.
type HunkAnalysis struct {
	OldStart int `json:"oldStart"`
	OldCount int `json:"oldCount"`

	ContextMatch   bool    `json:"contextMatch"`
	LineRangeValid bool    `json:"lineRangeValid"`
	Similarity     float64 `json:"similarity"`

	// SuggestedLocation is the 1-indexed start of the best relocation
	// candidate, 0 when none clears the threshold.
	SuggestedLocation int `json:"suggestedLocation,omitempty"`

	Issues []string `json:"issues,omitempty"`
}

// FileAnalysis groups hunk verdicts for one target file.
type FileAnalysis struct {
	Path  string         `json:"path"`
	Hunks []HunkAnalysis `json:"hunks"`
}

// DryRun records the external apply-check outcome verbatim.
type DryRun struct {
	Ran        bool   `json:"ran"`
	OK         bool   `json:"ok"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Result is the complete outcome of one validation call. It is built once
// and never mutated afterward; validation itself never fails.
type Result struct {
	Valid    bool           `json:"valid"`
	Errors   []string       `json:"errors"`
	Warnings []string       `json:"warnings"`
	Files    []FileAnalysis `json:"files"`
	DryRun   DryRun         `json:"dryRun"`
}
