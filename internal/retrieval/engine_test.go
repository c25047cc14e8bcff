package retrieval

import (
	"context"
	"fmt"
	"testing"

	"mend/internal/config"
	"mend/internal/source"
)

type fakeFiles map[string]string

func (f fakeFiles) FileAtRevision(_ context.Context, path, _ string) (string, error) {
	text, ok := f[path]
	if !ok {
		return "", fmt.Errorf("no such file: %s", path)
	}
	return text, nil
}

// fakeParser returns canned elements per path.
type fakeParser struct {
	elements map[string][]source.Element
	failOn   string
}

func (p *fakeParser) Parse(_ context.Context, f *source.File) ([]source.Element, error) {
	if f.Path == p.failOn {
		return nil, fmt.Errorf("syntax error in %s", f.Path)
	}
	return p.elements[f.Path], nil
}

func engineFixture() (fakeFiles, *fakeParser) {
	files := fakeFiles{
		"orders.py": "class OrderBook:\n" +
			"    def add_order(self, order):\n" +
			"        self.orders.append(order)\n" +
			"\n" +
			"def total_orders(book):\n" +
			"    return len(book.orders)\n",
		"audit.py": "def audit_order(order):\n" +
			"    check(order)\n",
	}
	parser := &fakeParser{elements: map[string][]source.Element{
		"orders.py": {
			{Kind: source.KindClass, Name: "OrderBook", StartLine: 1, EndLine: 3, TopLevel: true},
			{Kind: source.KindFunction, Name: "add_order", Params: []string{"self", "order"},
				Parent: "OrderBook", StartLine: 2, EndLine: 3, Docstring: ""},
			{Kind: source.KindFunction, Name: "total_orders", Params: []string{"book"},
				Calls: []string{"len"}, StartLine: 5, EndLine: 6, TopLevel: true},
		},
		"audit.py": {
			{Kind: source.KindFunction, Name: "audit_order", Params: []string{"order"},
				Calls: []string{"check"}, StartLine: 1, EndLine: 2, TopLevel: true},
		},
	}}
	return files, parser
}

func newTestEngine(files FileReader, parser Parser) *Engine {
	return NewEngine(files, parser, nil, config.DefaultConfig().Retrieval, nil)
}

func TestBuildGraphAndSignatures(t *testing.T) {
	files, parser := engineFixture()
	bug := &BugReport{ID: "BUG-7", Title: "add_order drops orders", ChangedFiles: []string{"orders.py", "audit.py"}}

	rc, err := newTestEngine(files, parser).Build(context.Background(), bug)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ob, ok := rc.Classes["OrderBook"]
	if !ok {
		t.Fatal("OrderBook missing from graph")
	}
	if ob.Location != "orders.py:1" || len(ob.Methods) != 1 || ob.Methods[0].Name != "add_order" {
		t.Errorf("OrderBook graph entry = %+v", ob)
	}

	if fn, ok := rc.Functions["total_orders"]; !ok || fn.Calls[0] != "len" {
		t.Errorf("total_orders = %+v", fn)
	}
	if _, ok := rc.Functions["add_order"]; ok {
		t.Error("method indexed as top-level function")
	}

	if sigs := rc.MethodSignatures["OrderBook"]; len(sigs) != 1 || sigs[0].Name != "add_order" {
		t.Errorf("signatures = %+v", sigs)
	}
}

func TestBuildRanksSnippets(t *testing.T) {
	files, parser := engineFixture()
	bug := &BugReport{
		ID:           "BUG-8",
		Title:        "audit_order misses check",
		Body:         "the audit order path never calls check",
		ChangedFiles: []string{"orders.py", "audit.py"},
	}

	rc, err := newTestEngine(files, parser).Build(context.Background(), bug)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(rc.Snippets) == 0 {
		t.Fatal("no snippets retrieved")
	}
	if len(rc.Snippets) != len(rc.RelevanceScores) {
		t.Fatalf("snippets and scores not parallel: %d vs %d", len(rc.Snippets), len(rc.RelevanceScores))
	}
	if rc.Snippets[0].Name != "audit_order" {
		t.Errorf("top snippet = %q, want audit_order", rc.Snippets[0].Name)
	}
	for i := 1; i < len(rc.RelevanceScores); i++ {
		if rc.RelevanceScores[i] > rc.RelevanceScores[i-1] {
			t.Errorf("scores not descending: %v", rc.RelevanceScores)
		}
	}
}

func TestBuildDegenerateQueryFallsBack(t *testing.T) {
	files, parser := engineFixture()
	bug := &BugReport{ID: "BUG-9", Title: "of the and", ChangedFiles: []string{"orders.py"}}

	rc, err := newTestEngine(files, parser).Build(context.Background(), bug)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(rc.Snippets) != 3 {
		t.Fatalf("fallback kept %d snippets, want all 3", len(rc.Snippets))
	}
	for _, score := range rc.RelevanceScores {
		if score != 1.0 {
			t.Errorf("fallback score = %v, want uniform 1.0", score)
		}
	}
	if rc.Snippets[0].Name != "OrderBook" {
		t.Errorf("fallback order changed: %q first", rc.Snippets[0].Name)
	}
}

func TestBuildSkipsBrokenFiles(t *testing.T) {
	files, parser := engineFixture()
	parser.failOn = "audit.py"
	bug := &BugReport{
		ID:           "BUG-10",
		Title:        "orders lost",
		ChangedFiles: []string{"missing.py", "audit.py", "orders.py"},
	}

	rc, err := newTestEngine(files, parser).Build(context.Background(), bug)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := rc.Classes["OrderBook"]; !ok {
		t.Error("readable file dropped alongside broken ones")
	}
	if _, ok := rc.Functions["audit_order"]; ok {
		t.Error("unparsable file contributed to the graph")
	}
}

func TestBuildCancelled(t *testing.T) {
	files, parser := engineFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(files, parser).Build(ctx, &BugReport{ChangedFiles: []string{"orders.py"}})
	if err == nil {
		t.Error("cancelled build returned no error")
	}
}
