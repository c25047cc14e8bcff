package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/go-diff/diff"

	"mend/internal/config"
	"mend/internal/errors"
	"mend/internal/intent"
	"mend/internal/logging"
	"mend/internal/source"
)

// Engine synthesizes unified-diff patches from fix intents. It is stateless
// across calls; all inputs arrive per call.
type Engine struct {
	cfg config.SynthesisConfig
	log *logging.Logger
}

// NewEngine returns an engine using the given synthesis settings.
func NewEngine(cfg config.SynthesisConfig, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{cfg: cfg, log: log}
}

// Synthesize resolves the intent against the file's element index and emits
// a single-hunk unified diff. The intent must already be validated. Every
// produced patch is re-parsed before being returned; a patch that does not
// survive its own parse is an internal failure, never handed downstream.
func (e *Engine) Synthesize(ctx context.Context, f *source.File, idx *source.Index, fi *intent.FixIntent) (*Patch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	strat, ok := strategyFor(fi.FixType)
	if !ok {
		return nil, errors.Newf(errors.InvalidIntent, "unknown fix_type %q", fi.FixType)
	}

	plan, err := strat.plan(idx, f, fi)
	if err != nil {
		return nil, err
	}

	newLines := indentLines(fi.NewCode, e.indentFor(f, plan, fi))
	if plan.pad {
		newLines = padBlock(newLines)
	}

	text := e.emit(f, plan, newLines)
	if err := selfCheck(text); err != nil {
		return nil, errors.New(errors.InternalError, "synthesized diff failed to parse", err)
	}

	added, deleted := computeStats(text)
	p := &Patch{
		ID:           uuid.New().String(),
		TargetFile:   f.Path,
		Diff:         text,
		LinesAdded:   added,
		LinesDeleted: deleted,
		TotalChanges: added + deleted,
	}

	e.log.Debug("patch synthesized", logging.Fields{
		"patch_id": p.ID,
		"file":     f.Path,
		"fix_type": string(fi.FixType),
		"added":    added,
		"deleted":  deleted,
	})
	return p, nil
}

// indentFor picks the indentation width for the new code: the explicit
// override when the intent carries one, the leading whitespace of the first
// replaced line when there is one, otherwise the configured default.
func (e *Engine) indentFor(f *source.File, plan *editPlan, fi *intent.FixIntent) int {
	if fi.IndentationLevel != nil {
		return *fi.IndentationLevel
	}
	if len(plan.oldLines) > 0 {
		return leadingWhitespace(plan.oldLines[0])
	}
	return e.cfg.DefaultIndent
}

func leadingWhitespace(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			// Tabs count as a single column; mend's supported languages
			// conventionally indent with spaces.
			n++
		default:
			return n
		}
	}
	return n
}

// indentLines prefixes every non-blank line with indent spaces. Blank lines
// stay blank so the patch never adds trailing whitespace.
func indentLines(lines []string, indent int) []string {
	if indent <= 0 {
		return append([]string(nil), lines...)
	}
	prefix := strings.Repeat(" ", indent)
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		out[i] = prefix + line
	}
	return out
}

// padBlock wraps an inserted block in one blank line on each side.
func padBlock(lines []string) []string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, "")
	out = append(out, lines...)
	out = append(out, "")
	return out
}

// emit renders the single hunk with up to ContextLines of surrounding
// context, clipped at the file boundaries.
func (e *Engine) emit(f *source.File, plan *editPlan, newLines []string) string {
	n := e.cfg.ContextLines

	ctxBeforeStart := plan.startLine - n
	if ctxBeforeStart < 1 {
		ctxBeforeStart = 1
	}
	ctxBefore := f.Slice(ctxBeforeStart, plan.startLine-1)

	afterStart := plan.startLine + len(plan.oldLines)
	ctxAfter := f.Slice(afterStart, afterStart+n-1)

	oldCount := len(ctxBefore) + len(plan.oldLines) + len(ctxAfter)
	newCount := len(ctxBefore) + len(newLines) + len(ctxAfter)

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", f.Path)
	fmt.Fprintf(&b, "+++ b/%s\n", f.Path)
	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", ctxBeforeStart, oldCount, ctxBeforeStart, newCount)
	for _, line := range ctxBefore {
		b.WriteString(" " + line + "\n")
	}
	for _, line := range plan.oldLines {
		b.WriteString("-" + line + "\n")
	}
	for _, line := range newLines {
		b.WriteString("+" + line + "\n")
	}
	for _, line := range ctxAfter {
		b.WriteString(" " + line + "\n")
	}
	return b.String()
}

// selfCheck round-trips the emitted text through a strict diff parser.
func selfCheck(text string) error {
	fds, err := diff.ParseMultiFileDiff([]byte(text))
	if err != nil {
		return err
	}
	if len(fds) != 1 || len(fds[0].Hunks) != 1 {
		return fmt.Errorf("expected exactly one file and one hunk, got %d files", len(fds))
	}
	return nil
}
