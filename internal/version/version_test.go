package version

import (
	"strings"
	"testing"
)

func TestInfoWithoutCommit(t *testing.T) {
	if got := Info(); got != Version {
		t.Errorf("Info() = %q, want %q", got, Version)
	}
}

func TestInfoWithCommit(t *testing.T) {
	orig := Commit
	defer func() { Commit = orig }()

	Commit = "abc1234def5678"
	want := Version + " (abc1234)"
	if got := Info(); got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	for _, want := range []string{"mend version " + Version, "Commit: ", "Built: "} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() = %q, missing %q", full, want)
		}
	}
}
