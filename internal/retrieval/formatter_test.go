package retrieval

import (
	"strings"
	"testing"

	"mend/internal/gitrepo"
)

func TestFormatOmitsEmptySections(t *testing.T) {
	rc := NewContext("BUG-1")
	out := Format(rc)
	if out != "" {
		t.Errorf("empty context rendered %q, want nothing", out)
	}

	rc.Snippets = []Snippet{{Type: "function", Name: "f", File: "a.py", Line: 1, Code: "def f(): pass"}}
	rc.RelevanceScores = []float64{0.9}
	out = Format(rc)

	if !strings.Contains(out, "## Relevant Snippets") {
		t.Error("snippet section missing")
	}
	for _, header := range []string{"## Code Structure", "## Method Signatures", "## Recent Changes", "## Related Commits"} {
		if strings.Contains(out, header) {
			t.Errorf("empty section %q rendered", header)
		}
	}
}

func TestFormatFullContext(t *testing.T) {
	rc := NewContext("BUG-2")
	rc.Classes["Foo"] = ClassInfo{
		Name: "Foo", Bases: []string{"Base"},
		Methods:  []MethodInfo{{Name: "baz", Params: []string{"self"}, Line: 2}},
		Location: "a.py:1",
	}
	rc.Functions["helper"] = FunctionInfo{
		Name: "helper", Params: []string{"x"}, Calls: []string{"log"}, Location: "a.py:9",
	}
	rc.Snippets = []Snippet{{Type: "class", Name: "Foo", File: "a.py", Line: 1, Code: "class Foo(Base): ..."}}
	rc.RelevanceScores = []float64{0.42}
	rc.ClassHierarchy["Foo"] = []string{"Base"}
	rc.MethodSignatures["Foo"] = []MethodSignature{
		{Name: "baz", Params: []string{"self"}, ReturnType: "int", Async: true, Decorators: []string{"@cached"}},
	}
	rc.RecentChanges = []FileCommits{{
		File:    "a.py",
		Commits: []gitrepo.Commit{{Hash: "abcdef012345", Author: "dev", Timestamp: "2026-02-01T00:00:00Z", Message: "tidy Foo"}},
	}}
	rc.RelatedCommits = []RelatedCommit{{
		Commit: gitrepo.Commit{Hash: "fedcba987654", Message: "fix Foo crash"}, Score: 2,
	}}

	out := Format(rc)

	for _, want := range []string{
		"## Code Structure",
		"class Foo(Base)  # a.py:1",
		"baz(self)  # line 2",
		"def helper(x)  # a.py:9",
		"calls: log",
		"## Relevant Snippets",
		"### class Foo - a.py:1 (relevance 0.42)",
		"## Method Signatures",
		"@cached",
		"async def baz(self) -> int",
		"## Recent Changes",
		"abcdef01 tidy Foo (dev, 2026-02-01T00:00:00Z)",
		"## Related Commits",
		"fedcba98 fix Foo crash (score 2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted output missing %q:\n%s", want, out)
		}
	}
}
