// Package rules holds the rule runtime and the built-in rule set. A
// rule is pure over its context; everything it reports flows through a
// reporter scoped with the rule's name, tag, and severity.
package rules

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lcr/internal/analysis"
	"github.com/standardbeagle/lcr/internal/i18n"
	"github.com/standardbeagle/lcr/internal/parser"
	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/resolver"
	"github.com/standardbeagle/lcr/internal/sourceindex"
	"github.com/standardbeagle/lcr/internal/types"
)

// Rule tags group rules in output.
const (
	TagBase        = "base"
	TagPerformance = "performance"
	TagUntagged    = "untagged"
)

// RunFunc executes one rule against a file context.
type RunFunc func(ctx *Context, rep *report.ScopedReporter) error

// Rule couples a detector with its reporting identity.
type Rule struct {
	Name     string
	Tag      string
	Severity types.Severity
	Run      RunFunc
}

// Scope returns the reporter scope for the rule.
func (r Rule) Scope() report.RuleScope {
	return report.RuleScope{Name: r.Name, Tag: r.Tag, Severity: r.Severity}
}

// Context is the non-owning view a rule works against. It is built
// once per file and discarded after the file's rules finish.
type Context struct {
	Root        *tree_sitter.Node
	FilePath    string
	Source      []byte
	Language    parser.Language
	Analysis    *analysis.Analysis
	SourceIndex *sourceindex.SourceIndex
	Reporter    *report.Reporter
	Messages    *i18n.Provider
	Session     *Session
}

// Imports returns the file's import references in source order.
func (c *Context) Imports() []types.ImportReference {
	return c.Analysis.Imports
}

// IsRelativePath reports whether specifier is relative.
func (c *Context) IsRelativePath(specifier string) bool {
	return len(specifier) > 0 && specifier[0] == '.'
}

// RelativeDepth counts literal "../" occurrences in specifier. The
// count is a plain substring count; "./a/../b" intentionally counts
// its inner climb.
func (c *Context) RelativeDepth(specifier string) int {
	count := 0
	for i := 0; i+3 <= len(specifier); i++ {
		if specifier[i:i+3] == "../" {
			count++
		}
	}
	return count
}

// NodeText returns a node's source text.
func (c *Context) NodeText(node *tree_sitter.Node) string {
	return string(c.Source[node.StartByte():node.EndByte()])
}

// NodeSpan returns a node's byte span.
func (c *Context) NodeSpan(node *tree_sitter.Node) *types.Span {
	return &types.Span{Start: uint32(node.StartByte()), End: uint32(node.EndByte())}
}

// Session carries the per-worker state that outlives a single file:
// the module resolver and the cycle rule's caches. It must not be
// shared across workers.
//
// The dedupe sets store 64-bit digests rather than the joined path
// strings; cycle keys concatenate many absolute paths and large scans
// would otherwise hold every chain in memory twice.
type Session struct {
	Resolver *resolver.Resolver

	reportedCycles     map[uint64]bool
	reportedUnresolved map[uint64]bool
	neighborCache      map[string][]string
}

// NewSession creates the shared state for one worker.
func NewSession(res *resolver.Resolver) *Session {
	return &Session{
		Resolver:           res,
		reportedCycles:     make(map[uint64]bool),
		reportedUnresolved: make(map[uint64]bool),
		neighborCache:      make(map[string][]string),
	}
}
