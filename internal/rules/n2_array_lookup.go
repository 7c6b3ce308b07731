package rules

import (
	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/types"
)

// linearSearchMethods are array methods that scan the whole receiver.
// Inside a loop they turn the surrounding scan quadratic. No receiver
// type inference is attempted; the method name alone triggers.
var linearSearchMethods = map[string]bool{
	"find":        true,
	"findIndex":   true,
	"filter":      true,
	"some":        true,
	"every":       true,
	"includes":    true,
	"indexOf":     true,
	"lastIndexOf": true,
}

// runN2ArrayLookup flags linear array searches on hot paths.
func runN2ArrayLookup(ctx *Context, rep *report.ScopedReporter) error {
	for _, call := range ctx.Analysis.HotPath.CallExpressions {
		callee := call.ChildByFieldName("function")
		if callee == nil || callee.Kind() != "member_expression" {
			continue
		}
		prop := callee.ChildByFieldName("property")
		if prop == nil {
			continue
		}
		method := ctx.NodeText(prop)
		if !linearSearchMethods[method] {
			continue
		}

		rep.Record(report.RecordInput{
			Description: ctx.Messages.T("rule.no-n2-array-lookup.message", method),
			Code:        method,
			Span:        ctx.NodeSpan(call),
			Suggestions: []types.Suggestion{
				{Text: ctx.Messages.T("rule.no-n2-array-lookup.suggestion")},
			},
		})
	}
	return nil
}
