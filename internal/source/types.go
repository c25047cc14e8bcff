// Package source parses Python files and resolves named program elements
// (functions, methods, classes) to line spans for patch synthesis.
package source

import (
	"path/filepath"
	"strings"
)

// Language represents a supported source language.
type Language string

const (
	LangPython Language = "python"
)

// LanguageFromExtension maps a file extension to a Language.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".py":
		return LangPython, true
	default:
		return "", false
	}
}

// LanguageForPath maps a file path to a Language.
func LanguageForPath(path string) (Language, bool) {
	return LanguageFromExtension(filepath.Ext(path))
}

// Kind classifies a syntax element.
type Kind string

const (
	KindFunction      Kind = "function"
	KindAsyncFunction Kind = "async-function"
	KindClass         Kind = "class"
)

// Element is a named program element resolved from a parsed file.
// Lines are 1-indexed and inclusive; StartLine <= EndLine, and nested
// elements' spans are fully contained in their parent's span.
type Element struct {
	Kind         Kind     `json:"kind"`
	Name         string   `json:"name"`
	Params       []string `json:"params,omitempty"`
	DefaultCount int      `json:"defaultCount,omitempty"`
	ReturnType   string   `json:"returnType,omitempty"`
	Decorators   []string `json:"decorators,omitempty"`
	Docstring    string   `json:"docstring,omitempty"`
	Async        bool     `json:"async,omitempty"`
	StartLine    int      `json:"startLine"`
	EndLine      int      `json:"endLine"`

	// Parent is the enclosing class name, empty for top-level elements.
	// It is a name reference, not a pointer; elements are looked up afresh
	// per query.
	Parent string `json:"parent,omitempty"`

	// Bases holds base-class names for class elements.
	Bases []string `json:"bases,omitempty"`

	// Calls holds outgoing call names for function elements, order-preserving
	// de-duplicated. Attribute calls record the method name only.
	Calls []string `json:"calls,omitempty"`

	// TopLevel is true when the element's direct scope is the module.
	TopLevel bool `json:"topLevel"`
}

// IsFunction reports whether the element is a plain or async function.
func (e *Element) IsFunction() bool {
	return e.Kind == KindFunction || e.Kind == KindAsyncFunction
}

// File is one file's text split into lines. Immutable once read; callers
// re-read per invocation rather than caching parsed trees.
type File struct {
	Path  string
	Text  string
	Lines []string
}

// NewFile builds a File from raw text.
func NewFile(path, text string) *File {
	return &File{
		Path:  path,
		Text:  text,
		Lines: splitLines(text),
	}
}

// Slice returns lines [start, end] inclusive, 1-indexed, clipped to bounds.
func (f *File) Slice(start, end int) []string {
	if start < 1 {
		start = 1
	}
	if end > len(f.Lines) {
		end = len(f.Lines)
	}
	if start > end {
		return nil
	}
	return f.Lines[start-1 : end]
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	// A trailing newline yields one phantom empty element.
	if n := len(lines); n > 0 && lines[n-1] == "" && strings.HasSuffix(text, "\n") {
		lines = lines[:n-1]
	}
	return lines
}
