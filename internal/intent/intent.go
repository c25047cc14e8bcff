// Package intent defines the externally produced fix intent and its
// validation rules. Intents are validated, never mutated.
package intent

import (
	"encoding/json"

	"mend/internal/errors"
	"mend/internal/source"
)

// FixType names the kind of change an intent describes. Closed variant:
// synthesis has exactly one strategy per type.
type FixType string

const (
	AddMethod     FixType = "add_method"
	ReplaceMethod FixType = "replace_method"
	ModifyLines   FixType = "modify_lines"
)

// FixIntent is a structured description of a single-file code change,
// produced by an external generator.
type FixIntent struct {
	TargetFile   string  `json:"target_file"`
	TargetClass  string  `json:"target_class,omitempty"`
	TargetMethod string  `json:"target_method,omitempty"`
	FixType      FixType `json:"fix_type"`

	// NewCode is the replacement/inserted text as ordered lines, without
	// indentation; synthesis applies the indentation rule.
	NewCode []string `json:"new_code"`

	InsertionStrategy *source.InsertionStrategy `json:"insertion_strategy,omitempty"`

	// StartLine is inclusive, EndLine exclusive; both 1-indexed. Only
	// meaningful for modify_lines.
	StartLine int `json:"start_line,omitempty"`
	EndLine   int `json:"end_line,omitempty"`

	// IndentationLevel overrides the derived indentation when set.
	IndentationLevel *int `json:"indentation_level,omitempty"`

	Confidence float64 `json:"confidence,omitempty"`
}

// Parse decodes an intent from JSON.
func Parse(data []byte) (*FixIntent, error) {
	var fi FixIntent
	if err := json.Unmarshal(data, &fi); err != nil {
		return nil, errors.New(errors.InvalidIntent, "intent is not valid JSON", err)
	}
	return &fi, nil
}

// Validate checks required fields for the intent's fix type. fileLines is
// the current length of the target file, used to bound modify_lines ranges.
// The returned error names the offending field; a failing intent never
// reaches synthesis.
func (fi *FixIntent) Validate(fileLines int) error {
	if fi.TargetFile == "" {
		return errors.Newf(errors.InvalidIntent, "missing required field %q", "target_file")
	}
	if len(fi.NewCode) == 0 {
		return errors.Newf(errors.InvalidIntent, "missing required field %q", "new_code")
	}

	switch fi.FixType {
	case AddMethod:
		if fi.InsertionStrategy == nil {
			return errors.Newf(errors.InvalidIntent, "missing required field %q", "insertion_strategy")
		}

	case ReplaceMethod:
		if fi.TargetMethod == "" {
			return errors.Newf(errors.InvalidIntent, "missing required field %q", "target_method")
		}

	case ModifyLines:
		if fi.StartLine < 1 {
			return errors.Newf(errors.InvalidIntent, "field %q must be a positive line number", "start_line")
		}
		if fi.StartLine >= fi.EndLine {
			return errors.Newf(errors.InvalidIntent, "field %q must be less than %q", "start_line", "end_line")
		}
		if fi.EndLine > fileLines {
			return errors.Newf(errors.InvalidIntent, "field %q is beyond the end of %s", "end_line", fi.TargetFile)
		}

	default:
		return errors.Newf(errors.InvalidIntent, "unknown fix_type %q", fi.FixType)
	}

	return nil
}
