package intent

import (
	"testing"

	"mend/internal/errors"
	"mend/internal/source"
)

func validAdd() *FixIntent {
	return &FixIntent{
		TargetFile:        "a.py",
		TargetClass:       "Foo",
		FixType:           AddMethod,
		NewCode:           []string{"def bar(self):", "return 1"},
		InsertionStrategy: &source.InsertionStrategy{Type: source.InsertEndOfClass},
	}
}

func TestValidate_AddMethod(t *testing.T) {
	if err := validAdd().Validate(10); err != nil {
		t.Errorf("expected valid intent, got %v", err)
	}

	fi := validAdd()
	fi.InsertionStrategy = nil
	if err := fi.Validate(10); !errors.Is(err, errors.InvalidIntent) {
		t.Errorf("expected INVALID_INTENT for missing insertion_strategy, got %v", err)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	fi := validAdd()
	fi.TargetFile = ""
	if err := fi.Validate(10); !errors.Is(err, errors.InvalidIntent) {
		t.Errorf("expected INVALID_INTENT for missing target_file, got %v", err)
	}

	fi = validAdd()
	fi.NewCode = nil
	if err := fi.Validate(10); !errors.Is(err, errors.InvalidIntent) {
		t.Errorf("expected INVALID_INTENT for missing new_code, got %v", err)
	}
}

func TestValidate_ReplaceMethodNeedsTarget(t *testing.T) {
	fi := &FixIntent{
		TargetFile: "a.py",
		FixType:    ReplaceMethod,
		NewCode:    []string{"pass"},
	}
	if err := fi.Validate(10); !errors.Is(err, errors.InvalidIntent) {
		t.Errorf("expected INVALID_INTENT for missing target_method, got %v", err)
	}

	fi.TargetMethod = "baz"
	if err := fi.Validate(10); err != nil {
		t.Errorf("expected valid intent, got %v", err)
	}
}

func TestValidate_ModifyLinesBounds(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		fileLines  int
		ok         bool
	}{
		{"valid range", 2, 5, 10, true},
		{"start equals end", 3, 3, 10, false},
		{"start after end", 5, 3, 10, false},
		{"end beyond file", 2, 11, 10, false},
		{"zero start", 0, 3, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fi := &FixIntent{
				TargetFile: "a.py",
				FixType:    ModifyLines,
				NewCode:    []string{"pass"},
				StartLine:  tt.start,
				EndLine:    tt.end,
			}
			err := fi.Validate(tt.fileLines)
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && !errors.Is(err, errors.InvalidIntent) {
				t.Errorf("expected INVALID_INTENT, got %v", err)
			}
		})
	}
}

func TestValidate_UnknownFixType(t *testing.T) {
	fi := &FixIntent{TargetFile: "a.py", FixType: "rewrite_everything", NewCode: []string{"x"}}
	if err := fi.Validate(10); !errors.Is(err, errors.InvalidIntent) {
		t.Errorf("expected INVALID_INTENT for unknown fix_type, got %v", err)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`{
		"target_file": "a.py",
		"target_class": "Foo",
		"fix_type": "add_method",
		"new_code": ["def bar(self):", "return 1"],
		"insertion_strategy": {"type": "end_of_class"},
		"confidence": 0.9
	}`)

	fi, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fi.FixType != AddMethod {
		t.Errorf("expected add_method, got %s", fi.FixType)
	}
	if fi.InsertionStrategy == nil || fi.InsertionStrategy.Type != source.InsertEndOfClass {
		t.Errorf("unexpected insertion strategy: %+v", fi.InsertionStrategy)
	}

	if _, err := Parse([]byte("{nope")); !errors.Is(err, errors.InvalidIntent) {
		t.Errorf("expected INVALID_INTENT for bad JSON, got %v", err)
	}
}
