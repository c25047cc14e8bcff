package retrieval

import (
	"fmt"

	"mend/internal/source"
)

// addToGraph folds one parsed file into the context's structural graph:
// every class with its methods, and every top-level function with its
// outgoing calls. Call lists arrive already de-duplicated in first-seen
// order from the parser.
func addToGraph(rc *Context, path string, elements []source.Element) {
	for _, el := range elements {
		switch {
		case el.Kind == source.KindClass:
			rc.Classes[el.Name] = ClassInfo{
				Name:     el.Name,
				Bases:    el.Bases,
				Methods:  methodsOf(el.Name, elements),
				Location: fmt.Sprintf("%s:%d", path, el.StartLine),
			}

		case el.IsFunction() && el.TopLevel:
			rc.Functions[el.Name] = FunctionInfo{
				Name:     el.Name,
				Params:   el.Params,
				Calls:    el.Calls,
				Location: fmt.Sprintf("%s:%d", path, el.StartLine),
			}
		}
	}
}

func methodsOf(className string, elements []source.Element) []MethodInfo {
	var methods []MethodInfo
	for _, el := range elements {
		if el.IsFunction() && el.Parent == className {
			methods = append(methods, MethodInfo{
				Name:   el.Name,
				Params: el.Params,
				Line:   el.StartLine,
			})
		}
	}
	return methods
}
