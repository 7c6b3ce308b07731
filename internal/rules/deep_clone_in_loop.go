package rules

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/types"
)

// runDeepCloneInLoop flags full deep clones executed per iteration:
// structuredClone(...) and the JSON.parse(JSON.stringify(...)) idiom.
func runDeepCloneInLoop(ctx *Context, rep *report.ScopedReporter) error {
	for _, call := range ctx.Analysis.HotPath.CallExpressions {
		form, ok := deepCloneForm(ctx, call)
		if !ok {
			continue
		}
		rep.Record(report.RecordInput{
			Description: ctx.Messages.T("rule.no-deep-clone-in-loop.message", form),
			Code:        form,
			Span:        ctx.NodeSpan(call),
			Suggestions: []types.Suggestion{
				{Text: ctx.Messages.T("rule.no-deep-clone-in-loop.suggestion")},
			},
		})
	}
	return nil
}

// deepCloneForm classifies call as one of the deep-clone shapes and
// returns its canonical rendering.
func deepCloneForm(ctx *Context, call *tree_sitter.Node) (string, bool) {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return "", false
	}

	if isStructuredClone(ctx, callee) {
		return "structuredClone(...)", true
	}

	// JSON.parse whose first argument is JSON.stringify(...)
	if !isMemberCall(ctx, callee, "JSON", "parse") {
		return "", false
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return "", false
	}
	first := args.NamedChild(0)
	if first == nil || first.Kind() != "call_expression" {
		return "", false
	}
	inner := first.ChildByFieldName("function")
	if inner == nil || !isMemberCall(ctx, inner, "JSON", "stringify") {
		return "", false
	}
	return "JSON.parse(JSON.stringify(...))", true
}

// isStructuredClone matches structuredClone and
// globalThis.structuredClone callees.
func isStructuredClone(ctx *Context, callee *tree_sitter.Node) bool {
	if callee.Kind() == "identifier" {
		return ctx.NodeText(callee) == "structuredClone"
	}
	return isMemberCall(ctx, callee, "globalThis", "structuredClone")
}

// isMemberCall matches a member expression object.property by name.
func isMemberCall(ctx *Context, callee *tree_sitter.Node, object, property string) bool {
	if callee.Kind() != "member_expression" {
		return false
	}
	obj := callee.ChildByFieldName("object")
	prop := callee.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return false
	}
	return obj.Kind() == "identifier" && ctx.NodeText(obj) == object && ctx.NodeText(prop) == property
}
