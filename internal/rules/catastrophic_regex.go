package rules

import (
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/types"
)

// runCatastrophicRegex flags hot-path regular expressions whose groups
// nest unbounded quantifiers, the classic catastrophic-backtracking
// shape: (a+)+, (.*)+, (a{1,})*.
func runCatastrophicRegex(ctx *Context, rep *report.ScopedReporter) error {
	emit := func(pattern string, node *tree_sitter.Node) {
		rep.Record(report.RecordInput{
			Description: ctx.Messages.T("rule.no-catastrophic-regex.message", "/"+pattern+"/"),
			Code:        pattern,
			Span:        ctx.NodeSpan(node),
			Suggestions: []types.Suggestion{
				{Text: ctx.Messages.T("rule.no-catastrophic-regex.suggestion")},
			},
		})
	}

	type finding struct {
		pattern string
		node    *tree_sitter.Node
	}
	var findings []finding

	for _, literal := range ctx.Analysis.HotPath.RegExpLiterals {
		pattern := regexLiteralPattern(ctx, literal)
		if pattern != "" && hasNestedUnboundedQuantifier(pattern) {
			findings = append(findings, finding{pattern, literal})
		}
	}
	constructed := make([]*tree_sitter.Node, 0, len(ctx.Analysis.HotPath.CallExpressions)+len(ctx.Analysis.HotPath.NewExpressions))
	constructed = append(constructed, ctx.Analysis.HotPath.CallExpressions...)
	constructed = append(constructed, ctx.Analysis.HotPath.NewExpressions...)
	for _, node := range constructed {
		pattern, ok := regExpConstructorPattern(ctx, node)
		if ok && hasNestedUnboundedQuantifier(pattern) {
			findings = append(findings, finding{pattern, node})
		}
	}

	// The three hot-path lists are each in source order but interleave;
	// emit by position so file output reads top to bottom.
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].node.StartByte() < findings[j].node.StartByte()
	})
	for _, f := range findings {
		emit(f.pattern, f.node)
	}
	return nil
}

// regexLiteralPattern extracts the pattern text of a regex literal,
// without delimiters or flags.
func regexLiteralPattern(ctx *Context, literal *tree_sitter.Node) string {
	for i := uint(0); i < literal.NamedChildCount(); i++ {
		if child := literal.NamedChild(i); child != nil && child.Kind() == "regex_pattern" {
			return ctx.NodeText(child)
		}
	}
	return ""
}

// regExpConstructorPattern extracts a static pattern from
// RegExp("...") and new RegExp(`...`) forms. Template literals with
// substitutions are dynamic and skipped.
func regExpConstructorPattern(ctx *Context, node *tree_sitter.Node) (string, bool) {
	callee := node.ChildByFieldName("function")
	if callee == nil {
		callee = node.ChildByFieldName("constructor")
	}
	if callee == nil || callee.Kind() != "identifier" || ctx.NodeText(callee) != "RegExp" {
		return "", false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return "", false
	}
	first := args.NamedChild(0)
	if first == nil {
		return "", false
	}

	switch first.Kind() {
	case "string":
		for i := uint(0); i < first.NamedChildCount(); i++ {
			if child := first.NamedChild(i); child != nil && child.Kind() == "string_fragment" {
				return ctx.NodeText(child), true
			}
		}
		return "", false
	case "template_string":
		for i := uint(0); i < first.NamedChildCount(); i++ {
			if child := first.NamedChild(i); child != nil && child.Kind() == "template_substitution" {
				return "", false
			}
		}
		text := ctx.NodeText(first)
		if len(text) >= 2 {
			return text[1 : len(text)-1], true
		}
	}
	return "", false
}

// groupFrame tracks one open group during the pattern scan.
type groupFrame struct {
	hasUnbounded bool
}

// hasNestedUnboundedQuantifier scans pattern for a group that both
// contains an unbounded quantifier and is itself followed by one.
// Bounded repetitions like (a+){1,3} never match; ambiguous
// alternations are accepted as false negatives.
func hasNestedUnboundedQuantifier(pattern string) bool {
	var stack []groupFrame
	inClass := false

	markLeaf := func(unbounded bool) {
		if unbounded && len(stack) > 0 {
			stack[len(stack)-1].hasUnbounded = true
		}
	}

	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]

		if inClass {
			switch ch {
			case '\\':
				i++ // escaped character inside the class
			case ']':
				inClass = false
				unbounded, width := quantifierAt(pattern, i+1)
				i += width
				markLeaf(unbounded)
			}
			continue
		}

		switch ch {
		case '\\':
			i++ // consume the escaped character as a leaf
			unbounded, width := quantifierAt(pattern, i+1)
			i += width
			markLeaf(unbounded)
		case '[':
			inClass = true
		case '(':
			stack = append(stack, groupFrame{})
		case ')':
			if len(stack) == 0 {
				continue
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			unbounded, width := quantifierAt(pattern, i+1)
			i += width
			if frame.hasUnbounded && unbounded {
				return true
			}
			markLeaf(unbounded)
		default:
			unbounded, width := quantifierAt(pattern, i+1)
			i += width
			markLeaf(unbounded)
		}
	}
	return false
}

// quantifierAt reads a quantifier starting at pattern[pos]. It returns
// whether the quantifier is unbounded (*, +, or {m,} with an empty
// upper bound) and how many bytes it spans including an optional
// trailing greediness marker (? or +).
func quantifierAt(pattern string, pos int) (unbounded bool, width int) {
	if pos >= len(pattern) {
		return false, 0
	}

	switch pattern[pos] {
	case '*', '+':
		return true, 1 + greedinessMarker(pattern, pos+1)
	case '?':
		return false, 1 + greedinessMarker(pattern, pos+1)
	case '{':
		end := pos + 1
		for end < len(pattern) && pattern[end] != '}' {
			end++
		}
		if end >= len(pattern) {
			return false, 0 // unterminated brace is a literal
		}
		body := pattern[pos+1 : end]
		width = end - pos + 1
		width += greedinessMarker(pattern, pos+width)

		comma := -1
		for j := 0; j < len(body); j++ {
			if body[j] == ',' {
				comma = j
				break
			}
			if body[j] < '0' || body[j] > '9' {
				return false, 0 // not a quantifier, e.g. {foo}
			}
		}
		if comma < 0 {
			return false, width // {m} exact repetition
		}
		upper := body[comma+1:]
		for j := 0; j < len(upper); j++ {
			if upper[j] < '0' || upper[j] > '9' {
				return false, 0
			}
		}
		return upper == "", width
	}
	return false, 0
}

// greedinessMarker consumes a trailing lazy/possessive marker.
func greedinessMarker(pattern string, pos int) int {
	if pos < len(pattern) && (pattern[pos] == '?' || pattern[pos] == '+') {
		return 1
	}
	return 0
}
