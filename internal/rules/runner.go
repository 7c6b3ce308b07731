package rules

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lcr/internal/analysis"
	"github.com/standardbeagle/lcr/internal/i18n"
	"github.com/standardbeagle/lcr/internal/parser"
	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/sourceindex"
	"github.com/standardbeagle/lcr/internal/types"
)

// NewContext assembles the per-file rule context: source index first,
// then the shared analysis pass, then message binding.
func NewContext(parsed *parser.ParseResult, filePath string, reporter *report.Reporter, messages *i18n.Provider, session *Session) *Context {
	idx := sourceindex.Build(parsed.Source[parsed.ModuleStart:], parsed.ModuleStart)
	reporter.SetSourceIndex(idx)

	return &Context{
		Root:        parsed.Root(),
		FilePath:    filePath,
		Source:      parsed.Source,
		Language:    parsed.Language,
		Analysis:    analysis.Analyze(parsed.Root(), parsed.Source, parsed.ModuleStart),
		SourceIndex: idx,
		Reporter:    reporter,
		Messages:    messages,
		Session:     session,
	}
}

// RunRules executes rules in list order against ctx. A failing rule is
// converted to an error notification and never fails the file; the
// returned notifications are appended to the file's log.
func RunRules(ctx *Context, rules []Rule) []types.Notification {
	var notifications []types.Notification
	for _, rule := range rules {
		if err := runOne(ctx, rule); err != nil {
			notifications = append(notifications, types.Notification{
				Level:   types.NotifyError,
				Message: ctx.Messages.T("notify.ruleFailed", rule.Name, ctx.FilePath),
				Detail:  err.Error(),
			})
		}
	}
	return notifications
}

// runOne executes one rule, converting panics into errors.
func runOne(ctx *Context, rule Rule) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return rule.Run(ctx, ctx.Reporter.ForRule(rule.Scope()))
}

// lineOfSpan converts a node span to a 1-based line via the context's
// source index.
func (c *Context) lineOfSpan(node *tree_sitter.Node) int {
	return c.SourceIndex.LineOfByte(uint32(node.StartByte()))
}
