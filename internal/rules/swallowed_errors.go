package rules

import (
	"bufio"
	"bytes"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/types"
)

// runSwallowedErrors flags try statements whose catch and finally
// blocks both contain no executable statements.
func runSwallowedErrors(ctx *Context, rep *report.ScopedReporter) error {
	for _, try := range ctx.Analysis.TryStatements {
		var catchBlock, finallyBlock *tree_sitter.Node
		if handler := try.ChildByFieldName("handler"); handler != nil {
			catchBlock = handler.ChildByFieldName("body")
		}
		if finalizer := try.ChildByFieldName("finalizer"); finalizer != nil {
			finallyBlock = finalizer.ChildByFieldName("body")
		}

		// A try without catch or finally cannot swallow anything.
		if catchBlock == nil && finallyBlock == nil {
			continue
		}
		if hasExecutableStatements(catchBlock) || hasExecutableStatements(finallyBlock) {
			continue
		}

		target := catchBlock
		keyword := "catch"
		if target == nil {
			target = finallyBlock
			keyword = "finally"
		}
		if target == nil {
			target = try
			keyword = "try"
		}

		rep.Record(report.RecordInput{
			Description: ctx.Messages.T("rule.no-swallowed-errors.message"),
			Line:        keywordLine(ctx, target, keyword),
			Suggestions: []types.Suggestion{
				{Text: ctx.Messages.T("rule.no-swallowed-errors.suggestion")},
			},
		})
	}
	return nil
}

// hasExecutableStatements reports whether block holds at least one
// statement that is neither empty nor a block of only empty
// statements.
func hasExecutableStatements(block *tree_sitter.Node) bool {
	if block == nil {
		return false
	}
	for i := uint(0); i < block.NamedChildCount(); i++ {
		child := block.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "empty_statement", "comment":
			continue
		case "statement_block":
			if hasExecutableStatements(child) {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// keywordLine resolves the violation line: the span-derived line, then
// a forward search for a source line carrying the keyword. The larger
// line wins.
func keywordLine(ctx *Context, node *tree_sitter.Node, keyword string) int {
	spanLine := ctx.lineOfSpan(node)

	scanner := bufio.NewScanner(bytes.NewReader(ctx.Source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	found := 0
	for scanner.Scan() {
		line++
		if line < spanLine {
			continue
		}
		if strings.Contains(scanner.Text(), keyword) {
			found = line
			break
		}
	}
	if found > spanLine {
		return found
	}
	return spanLine
}
