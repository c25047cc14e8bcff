package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(LocationNotFound, "method not found", nil)
	if !strings.Contains(err.Error(), "LOCATION_NOT_FOUND") {
		t.Errorf("expected code in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "method not found") {
		t.Errorf("expected message text, got %q", err.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := New(InternalError, "wrapped", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestCodeOf(t *testing.T) {
	err := Newf(InvalidIntent, "missing field %q", "target_method")
	if CodeOf(err) != InvalidIntent {
		t.Errorf("expected INVALID_INTENT, got %s", CodeOf(err))
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if CodeOf(wrapped) != InvalidIntent {
		t.Errorf("expected code to survive wrapping, got %s", CodeOf(wrapped))
	}

	if CodeOf(stderrors.New("plain")) != InternalError {
		t.Error("expected INTERNAL_ERROR for non-mend errors")
	}
}

func TestIsCode(t *testing.T) {
	err := New(FileNotFound, "no such file", nil).WithDetail("path", "a.py")
	if !Is(err, FileNotFound) {
		t.Error("expected Is to match FILE_NOT_FOUND")
	}
	if Is(err, ParseFailure) {
		t.Error("did not expect Is to match PARSE_FAILURE")
	}
	if err.Details["path"] != "a.py" {
		t.Errorf("expected detail path=a.py, got %v", err.Details["path"])
	}
}
