package rules

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/types"
)

// maxRelativeDepth is the deepest "../" climb accepted before a
// relative import is worth an alias.
const maxRelativeDepth = 2

// runDeepRelativeImports flags relative imports that climb more than
// maxRelativeDepth directory levels.
func runDeepRelativeImports(ctx *Context, rep *report.ScopedReporter) error {
	for _, imp := range ctx.Imports() {
		if !ctx.IsRelativePath(imp.Value) {
			continue
		}
		depth := ctx.RelativeDepth(imp.Value)
		if depth <= maxRelativeDepth {
			continue
		}

		rep.Record(report.RecordInput{
			Description: ctx.Messages.T("rule.no-deep-relative-imports.message", depth),
			Code:        imp.Value,
			Line:        importLine(ctx, imp),
			Suggestions: []types.Suggestion{
				{Text: ctx.Messages.T("rule.no-deep-relative-imports.suggestion.alias")},
				{Text: ctx.Messages.T("rule.no-deep-relative-imports.suggestion.aggregate")},
			},
		})
	}
	return nil
}

// importLine locates an import's line: the span-derived line, checked
// against a text search for a line holding both the import keyword and
// the specifier. The larger of the two wins, which guards against a
// span that points into a leading comment.
func importLine(ctx *Context, imp types.ImportReference) int {
	spanLine := ctx.SourceIndex.LineOfByte(imp.Span.Start)
	searchLine := findImportLine(ctx.Source, imp.Value)
	if searchLine > spanLine {
		return searchLine
	}
	return spanLine
}

// findImportLine returns the first 1-based line containing both the
// token "import" and the specifier text, or 0.
func findImportLine(source []byte, specifier string) int {
	scanner := bufio.NewScanner(bytes.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.Contains(text, "import") && strings.Contains(text, specifier) {
			return line
		}
	}
	return 0
}
