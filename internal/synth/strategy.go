package synth

import (
	"mend/internal/errors"
	"mend/internal/intent"
	"mend/internal/source"
)

// editPlan is the strategy-independent description of one edit: where it
// starts, which lines it removes, and whether blank-line padding applies.
type editPlan struct {
	// startLine is the 1-indexed line where the edit begins: the insertion
	// point for additions, the first removed line otherwise.
	startLine int

	// oldLines are the removed lines, verbatim from the file. Empty for
	// additions.
	oldLines []string

	// pad adds one blank line before and after the inserted block.
	pad bool
}

// strategy resolves a fix intent to an edit plan. Each fix type implements
// the same locate -> old-lines contract; indentation, spacing, context, and
// emission are shared by the engine.
type strategy interface {
	plan(idx *source.Index, f *source.File, fi *intent.FixIntent) (*editPlan, error)
}

func strategyFor(fixType intent.FixType) (strategy, bool) {
	switch fixType {
	case intent.AddMethod:
		return addMethod{}, true
	case intent.ReplaceMethod:
		return replaceMethod{}, true
	case intent.ModifyLines:
		return modifyLines{}, true
	default:
		return nil, false
	}
}

// addMethod inserts a new block at a strategy-resolved insertion point.
type addMethod struct{}

func (addMethod) plan(idx *source.Index, f *source.File, fi *intent.FixIntent) (*editPlan, error) {
	line, ok := idx.FindInsertionPoint(*fi.InsertionStrategy, fi.TargetClass)
	if !ok {
		return nil, errors.Newf(errors.LocationNotFound,
			"cannot resolve insertion_strategy %q (anchor %q) in %s",
			fi.InsertionStrategy.Type, fi.InsertionStrategy.Anchor, fi.TargetFile)
	}
	if line > len(f.Lines)+1 {
		line = len(f.Lines) + 1
	}

	return &editPlan{startLine: line, pad: true}, nil
}

// replaceMethod removes a method's full span, signature included, and puts
// the new code in its place.
type replaceMethod struct{}

func (replaceMethod) plan(idx *source.Index, f *source.File, fi *intent.FixIntent) (*editPlan, error) {
	el, ok := idx.FindElement(fi.TargetMethod, source.KindFunction, fi.TargetClass)
	if !ok {
		return nil, errors.Newf(errors.LocationNotFound,
			"target_method %q not found in %s", fi.TargetMethod, fi.TargetFile).
			WithDetail("target_class", fi.TargetClass)
	}

	return &editPlan{
		startLine: el.StartLine,
		oldLines:  f.Slice(el.StartLine, el.EndLine),
	}, nil
}

// modifyLines removes the explicit [start_line, end_line) slice.
type modifyLines struct{}

func (modifyLines) plan(idx *source.Index, f *source.File, fi *intent.FixIntent) (*editPlan, error) {
	// Bounds were checked by intent validation; EndLine is exclusive.
	return &editPlan{
		startLine: fi.StartLine,
		oldLines:  f.Slice(fi.StartLine, fi.EndLine-1),
	}, nil
}
