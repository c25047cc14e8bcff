package retrieval

import (
	"context"

	"mend/internal/config"
	"mend/internal/logging"
	"mend/internal/source"
)

// FileReader supplies file content, optionally at a revision.
type FileReader interface {
	FileAtRevision(ctx context.Context, path, revision string) (string, error)
}

// Parser turns file text into syntax elements.
type Parser interface {
	Parse(ctx context.Context, f *source.File) ([]source.Element, error)
}

// Engine composes the four analyzers over a bug's changed files.
type Engine struct {
	files  FileReader
	parser Parser
	hist   *historian
	cfg    config.RetrievalConfig
	log    *logging.Logger
}

// NewEngine wires a retrieval engine. git may be nil, disabling the
// historical analyzer.
func NewEngine(files FileReader, parser Parser, git History, cfg config.RetrievalConfig, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	e := &Engine{files: files, parser: parser, cfg: cfg, log: log}
	if git != nil {
		e.hist = &historian{git: git, cfg: cfg, log: log}
	}
	return e
}

// parsedFile pairs a changed file with its elements for ranking.
type parsedFile struct {
	file     *source.File
	elements []source.Element
}

// Build retrieves the full context for one bug. Analyzer failures narrow
// the output but never abort it: the returned context is always usable,
// possibly partial. The only error returned is context cancellation.
func (e *Engine) Build(ctx context.Context, bug *BugReport) (*Context, error) {
	rc := NewContext(bug.ID)

	var parsed []parsedFile
	for _, path := range bug.ChangedFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := e.files.FileAtRevision(ctx, path, "")
		if err != nil {
			e.log.Warn("skipping unreadable file", logging.Fields{"file": path, "error": err.Error()})
			continue
		}
		f := source.NewFile(path, text)

		elements, err := e.parser.Parse(ctx, f)
		if err != nil {
			e.log.Warn("skipping unparsable file", logging.Fields{"file": path, "error": err.Error()})
			continue
		}

		addToGraph(rc, path, elements)
		addSignatures(rc, elements)
		parsed = append(parsed, parsedFile{file: f, elements: elements})
	}

	e.rankAndSnip(rc, bug, parsed)

	if e.hist != nil {
		rc.RecentChanges = e.hist.recentChanges(ctx, bug)
		rc.RelatedCommits = e.hist.relatedCommits(ctx, bug)
	}

	e.log.Info("context built", logging.Fields{
		"bug":       bug.ID,
		"classes":   len(rc.Classes),
		"functions": len(rc.Functions),
		"snippets":  len(rc.Snippets),
	})
	return rc, nil
}

// rankAndSnip ranks every element's descriptor against the bug query and
// keeps the top MaxSnippets as snippets. A degenerate corpus falls back to
// the first MaxSnippets elements with a uniform score of 1.0.
func (e *Engine) rankAndSnip(rc *Context, bug *BugReport, parsed []parsedFile) {
	type candidate struct {
		el *source.Element
		f  *source.File
	}
	var candidates []candidate
	var docs []string
	for i := range parsed {
		p := &parsed[i]
		for j := range p.elements {
			el := &p.elements[j]
			candidates = append(candidates, candidate{el: el, f: p.file})
			docs = append(docs, descriptor(el, p.file))
		}
	}
	if len(candidates) == 0 {
		return
	}

	order, scores, ok := rankByRelevance(bug.Query(), docs, e.cfg.VocabSize)
	if !ok {
		e.log.Debug("degenerate relevance corpus, using input order", logging.Fields{"bug": bug.ID})
		for i := 0; i < len(candidates) && i < e.cfg.MaxSnippets; i++ {
			rc.Snippets = append(rc.Snippets, buildSnippet(candidates[i].el, candidates[i].f, e.cfg.MaxSnippetLines))
			rc.RelevanceScores = append(rc.RelevanceScores, 1.0)
		}
		return
	}

	for i := 0; i < len(order) && i < e.cfg.MaxSnippets; i++ {
		c := candidates[order[i]]
		rc.Snippets = append(rc.Snippets, buildSnippet(c.el, c.f, e.cfg.MaxSnippetLines))
		rc.RelevanceScores = append(rc.RelevanceScores, scores[order[i]])
	}
}
