//go:build cgo

package source

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"mend/internal/errors"
)

// Parser wraps tree-sitter for syntax element extraction.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new tree-sitter backed parser.
func NewParser() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// IsAvailable reports whether parsing is available in this build.
func IsAvailable() bool {
	return true
}

// Parse parses file text into the ordered element list. Elements appear in
// tree-walk order (depth first), so "first match" queries are deterministic.
func (p *Parser) Parse(ctx context.Context, f *File) ([]Element, error) {
	lang, ok := LanguageForPath(f.Path)
	if !ok || lang != LangPython {
		return nil, errors.Newf(errors.ParseFailure, "unsupported language for %q", f.Path)
	}

	p.parser.SetLanguage(python.GetLanguage())
	src := []byte(f.Text)
	tree, err := p.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.New(errors.ParseFailure, "parse failed for "+f.Path, err)
	}

	// Tree-sitter recovers from most syntax errors; only a missing tree is
	// unusable. Recovered trees still yield the elements they contain.
	root := tree.RootNode()
	if root == nil {
		return nil, errors.Newf(errors.ParseFailure, "no syntax tree for %q", f.Path)
	}

	var elements []Element
	walkDefinitions(root, src, "", true, &elements)
	return elements, nil
}

// walkDefinitions collects class and function definitions depth first.
// parentClass is the innermost enclosing class name; topLevel is true while
// the walk is still in module scope.
func walkDefinitions(node *sitter.Node, src []byte, parentClass string, topLevel bool, out *[]Element) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}

		switch child.Type() {
		case "decorated_definition":
			decs := decoratorTexts(child, src)
			if def := child.ChildByFieldName("definition"); def != nil {
				collectDefinition(def, src, parentClass, topLevel, decs, out)
			}
		case "function_definition", "class_definition":
			collectDefinition(child, src, parentClass, topLevel, nil, out)
		default:
			// Definitions can hide inside if/try blocks and similar
			// containers; keep scanning below non-definition nodes.
			walkDefinitions(child, src, parentClass, topLevel, out)
		}
	}
}

func collectDefinition(node *sitter.Node, src []byte, parentClass string, topLevel bool, decorators []string, out *[]Element) {
	switch node.Type() {
	case "class_definition":
		el := extractClass(node, src, decorators)
		el.Parent = parentClass
		el.TopLevel = topLevel
		*out = append(*out, el)
		if body := node.ChildByFieldName("body"); body != nil {
			walkDefinitions(body, src, el.Name, false, out)
		}
	case "function_definition":
		el := extractFunction(node, src, decorators)
		el.Parent = parentClass
		el.TopLevel = topLevel
		*out = append(*out, el)
		if body := node.ChildByFieldName("body"); body != nil {
			// Functions nested inside a function keep no class parent.
			walkDefinitions(body, src, "", false, out)
		}
	}
}

func extractFunction(node *sitter.Node, src []byte, decorators []string) Element {
	el := Element{
		Kind:       KindFunction,
		Decorators: decorators,
		StartLine:  int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
	}

	if isAsync(node, src) {
		el.Kind = KindAsyncFunction
		el.Async = true
	}

	if name := node.ChildByFieldName("name"); name != nil {
		el.Name = nodeText(name, src)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		el.ReturnType = nodeText(ret, src)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		el.Params, el.DefaultCount = extractParams(params, src)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		el.Docstring = extractDocstring(body, src)
		el.Calls = extractCalls(body, src)
	}

	return el
}

func extractClass(node *sitter.Node, src []byte, decorators []string) Element {
	el := Element{
		Kind:       KindClass,
		Decorators: decorators,
		StartLine:  int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
	}

	if name := node.ChildByFieldName("name"); name != nil {
		el.Name = nodeText(name, src)
	}
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			arg := supers.NamedChild(i)
			if arg != nil && arg.Type() != "keyword_argument" {
				el.Bases = append(el.Bases, nodeText(arg, src))
			}
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		el.Docstring = extractDocstring(body, src)
	}

	return el
}

// isAsync checks for the leading async keyword on a function definition.
func isAsync(node *sitter.Node, src []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "def" {
			return false
		}
		if nodeText(child, src) == "async" {
			return true
		}
	}
	return false
}

func decoratorTexts(decorated *sitter.Node, src []byte) []string {
	var decs []string
	for i := 0; i < int(decorated.NamedChildCount()); i++ {
		child := decorated.NamedChild(i)
		if child != nil && child.Type() == "decorator" {
			decs = append(decs, nodeText(child, src))
		}
	}
	return decs
}

func extractParams(params *sitter.Node, src []byte) ([]string, int) {
	var names []string
	defaults := 0

	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}

		switch p.Type() {
		case "identifier":
			names = append(names, nodeText(p, src))
		case "typed_parameter":
			if inner := p.NamedChild(0); inner != nil {
				names = append(names, nodeText(inner, src))
			}
		case "default_parameter", "typed_default_parameter":
			if name := p.ChildByFieldName("name"); name != nil {
				names = append(names, nodeText(name, src))
			}
			defaults++
		case "list_splat_pattern", "dictionary_splat_pattern":
			names = append(names, nodeText(p, src))
		case "keyword_separator", "positional_separator":
			// bare * and / markers carry no name
		}
	}

	return names, defaults
}

// extractDocstring returns the docstring when the body's first statement is
// a bare string expression, with quoting stripped.
func extractDocstring(body *sitter.Node, src []byte) string {
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Type() != "string" {
		return ""
	}
	return stripQuotes(nodeText(str, src))
}

// extractCalls records outgoing call names, order-preserving de-duplicated.
// Attribute calls record the method name only; the owner is discarded.
func extractCalls(body *sitter.Node, src []byte) []string {
	var calls []string
	seen := make(map[string]bool)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call" {
			if fn := n.ChildByFieldName("function"); fn != nil {
				name := ""
				switch fn.Type() {
				case "identifier":
					name = nodeText(fn, src)
				case "attribute":
					if attr := fn.ChildByFieldName("attribute"); attr != nil {
						name = nodeText(attr, src)
					}
				}
				if name != "" && !seen[name] {
					seen[name] = true
					calls = append(calls, name)
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(body)

	return calls
}

func nodeText(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

func stripQuotes(s string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}
