package source

import "testing"

// fixture mirrors a file like:
//
//	 1 class Foo:
//	 2     def baz(self): ...
//	 3     def qux(self): ...
//	 5 class Bar(Foo):
//	 6     def baz(self): ...
//	 8 def helper(): ...
func fixtureIndex() *Index {
	return NewIndex([]Element{
		{Kind: KindClass, Name: "Foo", StartLine: 1, EndLine: 3, TopLevel: true},
		{Kind: KindFunction, Name: "baz", Parent: "Foo", StartLine: 2, EndLine: 2},
		{Kind: KindFunction, Name: "qux", Parent: "Foo", StartLine: 3, EndLine: 3},
		{Kind: KindClass, Name: "Bar", Bases: []string{"Foo"}, StartLine: 5, EndLine: 6, TopLevel: true},
		{Kind: KindAsyncFunction, Name: "baz", Parent: "Bar", Async: true, StartLine: 6, EndLine: 6},
		{Kind: KindFunction, Name: "helper", StartLine: 8, EndLine: 9, TopLevel: true},
	})
}

func TestFindElementStart_FirstMatchWins(t *testing.T) {
	idx := fixtureIndex()

	// Without a parent scope, the first baz in tree-walk order wins.
	line, ok := idx.FindElementStart("baz", KindFunction, "")
	if !ok || line != 2 {
		t.Errorf("expected baz at line 2, got %d (ok=%v)", line, ok)
	}

	// Parent scope disambiguates.
	line, ok = idx.FindElementStart("baz", KindFunction, "Bar")
	if !ok || line != 6 {
		t.Errorf("expected Bar.baz at line 6, got %d (ok=%v)", line, ok)
	}
}

func TestFindElement_KindFunctionMatchesAsync(t *testing.T) {
	idx := fixtureIndex()
	el, ok := idx.FindElement("baz", KindFunction, "Bar")
	if !ok {
		t.Fatal("expected to find Bar.baz")
	}
	if !el.Async {
		t.Error("expected async element")
	}
}

func TestFindElementEnd(t *testing.T) {
	idx := fixtureIndex()
	end, ok := idx.FindElementEnd("helper", KindFunction, "")
	if !ok || end != 9 {
		t.Errorf("expected helper end line 9, got %d (ok=%v)", end, ok)
	}
}

func TestFindElement_NotFound(t *testing.T) {
	idx := fixtureIndex()
	if _, ok := idx.FindElementStart("missing", KindFunction, ""); ok {
		t.Error("expected not-found for unknown name")
	}
	if _, ok := idx.FindElementStart("baz", KindClass, ""); ok {
		t.Error("expected not-found for wrong kind")
	}
	if _, ok := idx.FindElementStart("baz", KindFunction, "Nope"); ok {
		t.Error("expected not-found for unknown parent class")
	}
}

func TestFindInsertionPoint(t *testing.T) {
	idx := fixtureIndex()

	tests := []struct {
		name     string
		strategy InsertionStrategy
		class    string
		want     int
		found    bool
	}{
		{"after method", InsertionStrategy{Type: InsertAfterMethod, Anchor: "baz"}, "Foo", 3, true},
		{"before method", InsertionStrategy{Type: InsertBeforeMethod, Anchor: "qux"}, "Foo", 3, true},
		{"end of class", InsertionStrategy{Type: InsertEndOfClass}, "Foo", 4, true},
		{"beginning of class", InsertionStrategy{Type: InsertBeginningOfClass}, "Foo", 2, true},
		{"line number", InsertionStrategy{Type: InsertAtLine, Line: 42}, "", 42, true},
		{"unknown strategy", InsertionStrategy{Type: "somewhere"}, "Foo", 0, false},
		{"unresolved anchor", InsertionStrategy{Type: InsertAfterMethod, Anchor: "nope"}, "Foo", 0, false},
		{"missing class", InsertionStrategy{Type: InsertEndOfClass}, "Nope", 0, false},
		{"bad line number", InsertionStrategy{Type: InsertAtLine, Line: 0}, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idx.FindInsertionPoint(tt.strategy, tt.class)
			if ok != tt.found || got != tt.want {
				t.Errorf("got (%d, %v), want (%d, %v)", got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestFileSlice(t *testing.T) {
	f := NewFile("a.py", "one\ntwo\nthree\n")
	if len(f.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(f.Lines))
	}

	got := f.Slice(2, 3)
	if len(got) != 2 || got[0] != "two" || got[1] != "three" {
		t.Errorf("unexpected slice: %v", got)
	}

	// Clipped at bounds.
	if got := f.Slice(0, 99); len(got) != 3 {
		t.Errorf("expected full file, got %v", got)
	}
	if got := f.Slice(3, 2); got != nil {
		t.Errorf("expected nil for inverted range, got %v", got)
	}
}
