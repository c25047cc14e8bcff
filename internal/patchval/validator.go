package patchval

import (
	"context"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"mend/internal/config"
	"mend/internal/errors"
	"mend/internal/logging"
)

// ContentProvider supplies current file content, line by line.
type ContentProvider interface {
	FileLines(ctx context.Context, path string) ([]string, error)
}

// ApplyChecker is the external dry-run oracle: would this diff apply
// cleanly against the live working tree.
type ApplyChecker interface {
	Check(ctx context.Context, diffText string) (ok bool, diagnostic string, err error)
}

// Validator checks diffs against current file content. The per-hunk
// similarity checks are advisory; when an ApplyChecker is wired, its
// verdict alone sets Result.Valid.
type Validator struct {
	cfg     config.ValidationConfig
	files   ContentProvider
	checker ApplyChecker
	log     *logging.Logger
}

// NewValidator wires a validator. checker may be nil, in which case
// validity falls back to the heuristic checks.
func NewValidator(cfg config.ValidationConfig, files ContentProvider, checker ApplyChecker, log *logging.Logger) *Validator {
	if log == nil {
		log = logging.Nop()
	}
	return &Validator{cfg: cfg, files: files, checker: checker, log: log}
}

// Validate runs parse -> per-file check -> dry-run and returns a fully
// populated result. It never returns an error: unreadable files, malformed
// hunks, and mismatched context all land in the result instead.
func (v *Validator) Validate(ctx context.Context, diffText string) *Result {
	res := &Result{
		Errors:   []string{},
		Warnings: []string{},
	}

	files, warnings := parseDiff(diffText)
	for _, w := range warnings {
		res.Warnings = append(res.Warnings, errors.Newf(errors.HunkParseFailure, "%s", w).Error())
	}

	for _, fd := range files {
		res.Files = append(res.Files, v.checkFile(ctx, fd, res))
	}

	v.dryRun(ctx, diffText, res)

	v.log.Debug("validation finished", logging.Fields{
		"valid":    res.Valid,
		"files":    len(res.Files),
		"errors":   len(res.Errors),
		"warnings": len(res.Warnings),
	})
	return res
}

func (v *Validator) checkFile(ctx context.Context, fd FileDiff, res *Result) FileAnalysis {
	fa := FileAnalysis{Path: fd.Path}

	lines, err := v.files.FileLines(ctx, fd.Path)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: cannot read current content: %v", fd.Path, err))
		for _, h := range fd.Hunks {
			fa.Hunks = append(fa.Hunks, HunkAnalysis{
				OldStart: h.OldStart,
				OldCount: h.OldCount,
				Issues:   []string{"file unreadable, hunk not checked"},
			})
		}
		return fa
	}

	for _, h := range fd.Hunks {
		fa.Hunks = append(fa.Hunks, v.checkHunk(fd.Path, h, lines, res))
	}
	return fa
}

func (v *Validator) checkHunk(path string, h Hunk, lines []string, res *Result) HunkAnalysis {
	ha := HunkAnalysis{OldStart: h.OldStart, OldCount: h.OldCount}

	if h.OldStart < 1 || h.OldStart-1+h.OldCount > len(lines) {
		issue := fmt.Sprintf("declared range %d,%d is outside the file (%d lines)", h.OldStart, h.OldCount, len(lines))
		ha.Issues = append(ha.Issues, issue)
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", path, issue))
		return ha
	}
	ha.LineRangeValid = true

	actual := lines[h.OldStart-1 : h.OldStart-1+h.OldCount]
	ha.Similarity = similarity(actual, h.expectedOld())
	if ha.Similarity > v.cfg.MatchThreshold {
		ha.ContextMatch = true
		return ha
	}

	issue := fmt.Sprintf("context at line %d does not match current content (similarity %.2f)", h.OldStart, ha.Similarity)
	if loc, ok := v.relocate(h, lines); ok {
		ha.SuggestedLocation = loc
		issue += fmt.Sprintf(", best match at line %d", loc)
	}
	ha.Issues = append(ha.Issues, issue)
	res.Warnings = append(res.Warnings, errors.Newf(errors.ContextMismatch, "%s: %s", path, issue).Error())
	return ha
}

// relocate slides the hunk's anchor (leading context plus removals) through
// a bounded window around the declared start and returns the 1-indexed
// start of the best match above the relocation threshold.
func (v *Validator) relocate(h Hunk, lines []string) (int, bool) {
	anchor := h.anchor()
	if len(anchor) == 0 {
		return 0, false
	}

	lo := h.OldStart - v.cfg.SearchWindow
	if lo < 1 {
		lo = 1
	}
	hi := h.OldStart + v.cfg.SearchWindow
	if max := len(lines) - len(anchor) + 1; hi > max {
		hi = max
	}

	best, bestAt := 0.0, 0
	for start := lo; start <= hi; start++ {
		r := similarity(lines[start-1:start-1+len(anchor)], anchor)
		if r > best {
			best, bestAt = r, start
		}
	}
	if best > v.cfg.RelocateThreshold {
		return bestAt, true
	}
	return 0, false
}

func (v *Validator) dryRun(ctx context.Context, diffText string, res *Result) {
	if v.checker == nil {
		// Advisory mode: no oracle, validity follows the heuristics.
		res.Valid = len(res.Errors) == 0
		return
	}

	res.DryRun.Ran = true
	ok, diagnostic, err := v.checker.Check(ctx, diffText)
	if err != nil {
		res.DryRun.Diagnostic = err.Error()
		res.Errors = append(res.Errors, fmt.Sprintf("dry-run apply check failed to run: %v", err))
		return
	}

	res.DryRun.OK = ok
	res.DryRun.Diagnostic = diagnostic
	res.Valid = ok
	if !ok {
		res.Errors = append(res.Errors, errors.Newf(errors.DryRunFailure, "patch does not apply cleanly: %s", diagnostic).Error())
	}
}

// similarity is the difflib sequence ratio over whole lines, 0.0 to 1.0.
func similarity(a, b []string) float64 {
	return difflib.NewMatcher(a, b).Ratio()
}
