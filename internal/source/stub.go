//go:build !cgo

package source

import (
	"context"

	"mend/internal/errors"
)

// Parser wraps tree-sitter for syntax element extraction.
// This is a stub implementation for non-CGO builds.
type Parser struct{}

// NewParser creates a new parser. Parsing is unavailable without CGO.
func NewParser() *Parser {
	return &Parser{}
}

// IsAvailable reports whether parsing is available in this build.
func IsAvailable() bool {
	return false
}

// Parse always fails: tree-sitter requires CGO.
func (p *Parser) Parse(ctx context.Context, f *File) ([]Element, error) {
	return nil, errors.Newf(errors.ParseFailure, "source parsing requires CGO (tree-sitter)")
}
