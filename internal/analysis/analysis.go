// Package analysis runs the single shared tree walk over a parsed file
// and materialises the indices every rule consumes: import references,
// loops, try statements, and the hot-path node sets.
package analysis

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lcr/internal/types"
)

// Loop is one loop statement with its syntactic kind.
type Loop struct {
	Kind types.LoopKind
	Node *tree_sitter.Node
}

// HotPath collects nodes found inside syntactic hot paths: loop bodies
// and the callbacks of array higher-order methods.
type HotPath struct {
	CallExpressions []*tree_sitter.Node
	NewExpressions  []*tree_sitter.Node
	RegExpLiterals  []*tree_sitter.Node
}

// Analysis is the immutable result of one tree walk. All slices are in
// source (preorder) order. Node pointers stay valid until the owning
// tree is closed, which happens after the file's rules finish.
type Analysis struct {
	Imports       []types.ImportReference
	Loops         []Loop
	TryStatements []*tree_sitter.Node
	HotPath       HotPath
}

// hotMethods are member-call property names whose first-argument
// callback executes once per element.
var hotMethods = map[string]bool{
	"map":         true,
	"forEach":     true,
	"reduce":      true,
	"reduceRight": true,
	"filter":      true,
	"some":        true,
	"every":       true,
	"find":        true,
	"findIndex":   true,
	"flatMap":     true,
}

// functionKinds are the node kinds that reset the hot flag: execution
// does not flow from a loop into a function declared inside it.
var functionKinds = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"generator_function":             true,
	"generator_function_declaration": true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// analyzer carries the walk state for one file.
type analyzer struct {
	source      []byte
	moduleStart uint32
	result      *Analysis
}

// Analyze walks the tree once and returns the shared indices.
// Spans in the result are module byte coordinates.
func Analyze(root *tree_sitter.Node, source []byte, moduleStart uint32) *Analysis {
	a := &analyzer{
		source:      source,
		moduleStart: moduleStart,
		result:      &Analysis{},
	}
	a.walk(root, false)
	return a.result
}

// walk visits node and its children in preorder. inHot tracks whether
// the current position sits inside a syntactic hot path.
func (a *analyzer) walk(node *tree_sitter.Node, inHot bool) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_statement":
		a.recordStaticImport(node)
		return // specifier recorded; nothing below matters to rules

	case "try_statement":
		a.result.TryStatements = append(a.result.TryStatements, node)
		a.walkChildren(node, inHot)

	case "call_expression":
		a.visitCall(node, inHot)

	case "new_expression":
		if inHot {
			a.result.HotPath.NewExpressions = append(a.result.HotPath.NewExpressions, node)
		}
		a.walkChildren(node, inHot)

	case "regex":
		if inHot {
			a.result.HotPath.RegExpLiterals = append(a.result.HotPath.RegExpLiterals, node)
		}

	case "for_statement":
		a.result.Loops = append(a.result.Loops, Loop{Kind: types.LoopFor, Node: node})
		// Initialisers run once; they keep the inherited flag.
		a.walkField(node, "initializer", inHot)
		a.walkField(node, "condition", true)
		a.walkField(node, "increment", true)
		a.walkField(node, "body", true)

	case "while_statement":
		a.result.Loops = append(a.result.Loops, Loop{Kind: types.LoopWhile, Node: node})
		a.walkField(node, "condition", true)
		a.walkField(node, "body", true)

	case "do_statement":
		a.result.Loops = append(a.result.Loops, Loop{Kind: types.LoopDoWhile, Node: node})
		a.walkField(node, "body", true)
		a.walkField(node, "condition", true)

	case "for_in_statement":
		kind := types.LoopForIn
		if op := node.ChildByFieldName("operator"); op != nil && a.text(op) == "of" {
			kind = types.LoopForOf
		}
		a.result.Loops = append(a.result.Loops, Loop{Kind: kind, Node: node})
		a.walkField(node, "left", inHot)
		a.walkField(node, "right", inHot)
		a.walkField(node, "body", true)

	default:
		if functionKinds[node.Kind()] {
			// Hot does not leak into function bodies; a hot callback's
			// body is walked explicitly by visitCall and never reaches
			// this branch.
			a.walkChildren(node, false)
			return
		}
		a.walkChildren(node, inHot)
	}
}

// visitCall handles the three jobs a call expression can carry: it may
// be a dynamic import or require, it may be a hot-path call itself, and
// it may be an array higher-order method whose callback becomes hot.
func (a *analyzer) visitCall(node *tree_sitter.Node, inHot bool) {
	if inHot {
		a.result.HotPath.CallExpressions = append(a.result.HotPath.CallExpressions, node)
	}

	callee := node.ChildByFieldName("function")
	args := node.ChildByFieldName("arguments")

	a.recordCallImport(callee, args)

	if callee != nil {
		a.walk(callee, inHot)
	}
	if args == nil {
		return
	}

	hotCallback := a.isHotMethodCall(callee)
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg == nil {
			continue
		}
		if i == 0 && hotCallback && functionKinds[arg.Kind()] {
			a.walkCallbackBody(arg)
			continue
		}
		a.walk(arg, inHot)
	}
}

// walkCallbackBody walks a hot callback's body with the hot flag set.
// Parameters and default values stay at the inherited (cold) state.
func (a *analyzer) walkCallbackBody(fn *tree_sitter.Node) {
	if body := fn.ChildByFieldName("body"); body != nil {
		a.walk(body, true)
	}
}

// isHotMethodCall reports whether callee is a member expression whose
// property names an array higher-order method.
func (a *analyzer) isHotMethodCall(callee *tree_sitter.Node) bool {
	if callee == nil || callee.Kind() != "member_expression" {
		return false
	}
	prop := callee.ChildByFieldName("property")
	return prop != nil && hotMethods[a.text(prop)]
}

// recordStaticImport records the specifier of an import declaration.
func (a *analyzer) recordStaticImport(node *tree_sitter.Node) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return
	}
	a.result.Imports = append(a.result.Imports, types.ImportReference{
		Kind:  types.ImportStatic,
		Value: a.stringValue(source),
		Span:  a.span(source),
	})
}

// recordCallImport records dynamic import() and require() specifiers.
func (a *analyzer) recordCallImport(callee, args *tree_sitter.Node) {
	if callee == nil || args == nil {
		return
	}

	var kind types.ImportKind
	switch {
	case callee.Kind() == "import":
		kind = types.ImportDynamic
	case callee.Kind() == "identifier" && a.text(callee) == "require":
		kind = types.ImportRequire
	case callee.Kind() == "member_expression":
		obj := callee.ChildByFieldName("object")
		if obj == nil || obj.Kind() != "identifier" || a.text(obj) != "require" {
			return
		}
		kind = types.ImportRequire
	default:
		return
	}

	first := args.NamedChild(0)
	if first == nil || first.Kind() != "string" {
		return
	}
	a.result.Imports = append(a.result.Imports, types.ImportReference{
		Kind:  kind,
		Value: a.stringValue(first),
		Span:  a.span(first),
	})
}

// walkChildren visits every named child with the given hot flag.
func (a *analyzer) walkChildren(node *tree_sitter.Node, inHot bool) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		a.walk(node.NamedChild(i), inHot)
	}
}

// walkField visits one field child if present.
func (a *analyzer) walkField(node *tree_sitter.Node, field string, inHot bool) {
	if child := node.ChildByFieldName(field); child != nil {
		a.walk(child, inHot)
	}
}

// text returns node's source text.
func (a *analyzer) text(node *tree_sitter.Node) string {
	return string(a.source[node.StartByte():node.EndByte()])
}

// stringValue returns the contents of a string literal without quotes.
func (a *analyzer) stringValue(node *tree_sitter.Node) string {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil && child.Kind() == "string_fragment" {
			return a.text(child)
		}
	}
	// Empty string literal: no fragment child.
	return ""
}

// span converts node byte offsets to module coordinates.
func (a *analyzer) span(node *tree_sitter.Node) types.Span {
	start := uint32(node.StartByte())
	end := uint32(node.EndByte())
	if start < a.moduleStart {
		start = a.moduleStart
	}
	if end < start {
		end = start
	}
	return types.Span{Start: start, End: end}
}
