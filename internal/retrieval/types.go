// Package retrieval builds the bug-fixing context for a bug report: a
// structural graph of the changed files, relevance-ranked code snippets,
// method signatures, and commit history. Every analyzer degrades to partial
// results; a file that cannot be read or parsed is logged and skipped.
package retrieval

import "mend/internal/gitrepo"

// BugReport is the external metadata that drives retrieval.
type BugReport struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Commit       string   `json:"commit"`
	ChangedFiles []string `json:"changedFiles"`
}

// Query derives the relevance query from the report text.
func (b *BugReport) Query() string {
	if b.Body == "" {
		return b.Title
	}
	return b.Title + " " + b.Body
}

// MethodInfo is one method entry in the structural graph.
type MethodInfo struct {
	Name   string   `json:"name"`
	Params []string `json:"params"`
	Line   int      `json:"line"`
}

// ClassInfo is one class node in the structural graph.
type ClassInfo struct {
	Name     string       `json:"name"`
	Bases    []string     `json:"bases"`
	Methods  []MethodInfo `json:"methods"`
	Location string       `json:"location"`
}

// FunctionInfo is one top-level function node in the structural graph.
type FunctionInfo struct {
	Name     string   `json:"name"`
	Params   []string `json:"params"`
	Calls    []string `json:"calls"`
	Location string   `json:"location"`
}

// Snippet is one relevance-ranked piece of source.
type Snippet struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	File      string `json:"file"`
	Line      int    `json:"line"`
	Code      string `json:"code"`
	Docstring string `json:"docstring,omitempty"`
	Truncated bool   `json:"truncated"`
	Size      int    `json:"size"`
}

// MethodSignature is the per-method entry of the structural analyzer.
type MethodSignature struct {
	Name         string   `json:"name"`
	Params       []string `json:"params"`
	DefaultCount int      `json:"defaultCount"`
	ReturnType   string   `json:"returnType,omitempty"`
	Decorators   []string `json:"decorators,omitempty"`
	Async        bool     `json:"async"`
}

// FileCommits is the recent history of one changed file.
type FileCommits struct {
	File    string          `json:"file"`
	Commits []gitrepo.Commit `json:"commits"`
}

// RelatedCommit is a repository commit scored by bug-title keyword hits.
type RelatedCommit struct {
	Commit gitrepo.Commit `json:"commit"`
	Score  int            `json:"score"`
}

// Context is the complete retrieved context for one bug. It is a value
// object, built fresh per bug and optionally persisted to the keyed cache.
type Context struct {
	BugID string `json:"bugId"`

	Classes   map[string]ClassInfo    `json:"classes"`
	Functions map[string]FunctionInfo `json:"functions"`

	Snippets        []Snippet `json:"snippets"`
	RelevanceScores []float64 `json:"relevance_scores"`

	ClassHierarchy   map[string][]string          `json:"class_hierarchy"`
	MethodSignatures map[string][]MethodSignature `json:"method_signatures"`

	RecentChanges  []FileCommits   `json:"recent_changes"`
	RelatedCommits []RelatedCommit `json:"related_commits"`
}

// NewContext returns an empty context with maps initialized.
func NewContext(bugID string) *Context {
	return &Context{
		BugID:            bugID,
		Classes:          make(map[string]ClassInfo),
		Functions:        make(map[string]FunctionInfo),
		ClassHierarchy:   make(map[string][]string),
		MethodSignatures: make(map[string][]MethodSignature),
	}
}
