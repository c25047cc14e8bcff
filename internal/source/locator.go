package source

// InsertionStrategy names a place in a file relative to existing elements.
// Type is a closed variant; anything else resolves to not-found.
type InsertionStrategy struct {
	Type   string `json:"type"`
	Anchor string `json:"anchor,omitempty"`
	Line   int    `json:"line,omitempty"`
}

// Insertion strategy variants.
const (
	InsertAfterMethod      = "after_method"
	InsertBeforeMethod     = "before_method"
	InsertEndOfClass       = "end_of_class"
	InsertBeginningOfClass = "beginning_of_class"
	InsertAtLine           = "line_number"
)

// Index is a queryable index over one parsed file's elements. It is built
// once per parse; queries never re-walk the syntax tree. Elements keep
// tree-walk order, so "first match" is deterministic.
type Index struct {
	elements []Element
	byName   map[string][]int
}

// NewIndex builds an index from elements in tree-walk order.
func NewIndex(elements []Element) *Index {
	idx := &Index{
		elements: elements,
		byName:   make(map[string][]int, len(elements)),
	}
	for i, el := range elements {
		idx.byName[el.Name] = append(idx.byName[el.Name], i)
	}
	return idx
}

// Elements returns all indexed elements in tree-walk order.
func (idx *Index) Elements() []Element {
	return idx.elements
}

// find returns the first element matching name, kind, and optional parent
// class, in tree-walk order. A KindFunction query also matches
// async functions. Empty parentClass matches any scope.
func (idx *Index) find(name string, kind Kind, parentClass string) (*Element, bool) {
	for _, i := range idx.byName[name] {
		el := &idx.elements[i]
		if !kindMatches(el, kind) {
			continue
		}
		if parentClass != "" && el.Parent != parentClass {
			continue
		}
		return el, true
	}
	return nil, false
}

func kindMatches(el *Element, kind Kind) bool {
	if kind == KindFunction {
		return el.IsFunction()
	}
	return el.Kind == kind
}

// FindElement returns the first matching element in tree-walk order.
func (idx *Index) FindElement(name string, kind Kind, parentClass string) (*Element, bool) {
	return idx.find(name, kind, parentClass)
}

// FindElementStart resolves the 1-indexed start line of the first matching
// element. Absence is reported as not-found, never an error.
func (idx *Index) FindElementStart(name string, kind Kind, parentClass string) (int, bool) {
	el, ok := idx.find(name, kind, parentClass)
	if !ok {
		return 0, false
	}
	return el.StartLine, true
}

// FindElementEnd resolves the element's last line, inclusive. Callers use
// it as an exclusive upper bound when slicing.
func (idx *Index) FindElementEnd(name string, kind Kind, parentClass string) (int, bool) {
	el, ok := idx.find(name, kind, parentClass)
	if !ok {
		return 0, false
	}
	return el.EndLine, true
}

// FindInsertionPoint resolves a strategy to a 1-indexed line L meaning
// "insert before current line L". Unknown strategies and unresolved anchors
// report not-found; callers surface an error rather than guess.
func (idx *Index) FindInsertionPoint(strategy InsertionStrategy, targetClass string) (int, bool) {
	switch strategy.Type {
	case InsertAfterMethod:
		el, ok := idx.find(strategy.Anchor, KindFunction, targetClass)
		if !ok {
			return 0, false
		}
		return el.EndLine + 1, true

	case InsertBeforeMethod:
		el, ok := idx.find(strategy.Anchor, KindFunction, targetClass)
		if !ok {
			return 0, false
		}
		return el.StartLine, true

	case InsertEndOfClass:
		el, ok := idx.find(targetClass, KindClass, "")
		if !ok {
			return 0, false
		}
		return el.EndLine + 1, true

	case InsertBeginningOfClass:
		// The line immediately after the class header.
		el, ok := idx.find(targetClass, KindClass, "")
		if !ok {
			return 0, false
		}
		return el.StartLine + 1, true

	case InsertAtLine:
		if strategy.Line < 1 {
			return 0, false
		}
		return strategy.Line, true

	default:
		return 0, false
	}
}
