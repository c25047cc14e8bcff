package retrieval

import "mend/internal/source"

// addSignatures folds one parsed file into the context's structural
// analysis: per class, the base names and every method's full signature.
func addSignatures(rc *Context, elements []source.Element) {
	for _, el := range elements {
		if el.Kind != source.KindClass {
			continue
		}
		rc.ClassHierarchy[el.Name] = el.Bases
		rc.MethodSignatures[el.Name] = methodSignatures(el.Name, elements)
	}
}

func methodSignatures(className string, elements []source.Element) []MethodSignature {
	var sigs []MethodSignature
	for _, el := range elements {
		if !el.IsFunction() || el.Parent != className {
			continue
		}
		sigs = append(sigs, MethodSignature{
			Name:         el.Name,
			Params:       el.Params,
			DefaultCount: el.DefaultCount,
			ReturnType:   el.ReturnType,
			Decorators:   el.Decorators,
			Async:        el.Async,
		})
	}
	return sigs
}
