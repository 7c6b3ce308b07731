package rules

import (
	"os"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/lcr/internal/debug"
	"github.com/standardbeagle/lcr/internal/report"
	"github.com/standardbeagle/lcr/internal/types"
	"github.com/standardbeagle/lcr/pkg/pathutil"
)

// Traversal limits for the lazily-expanded import graph. They bound
// worst-case time on pathological repos and are load-bearing, not
// tunable at runtime.
const (
	maxGraphNodes = 2000
	maxGraphDepth = 80
)

// Cheap specifier scan for neighbour expansion. Parsing every
// transitive file with the full grammar would dominate scan time, so
// neighbours come from a regex pass over the raw source.
var neighborPatterns = []*regexp.Regexp{
	regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`import\s+[^'"()]*['"]([^'"]+)['"]`),
	regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`export\s+[^'"]*from\s+['"]([^'"]+)['"]`),
}

// runCircularDependencies resolves the file's imports and hunts for a
// path through the import graph that returns to the file. Each cycle
// is reported once per origin file, keyed by (origin, canonical key).
func runCircularDependencies(ctx *Context, rep *report.ScopedReporter) error {
	session := ctx.Session
	if session == nil || session.Resolver == nil {
		return nil
	}
	origin := pathutil.Normalize(ctx.FilePath)

	for _, imp := range ctx.Imports() {
		resolution := session.Resolver.Resolve(origin, imp.Value)

		if resolution.ShouldWarn {
			session.reportUnresolved(ctx, rep, origin, imp)
			continue
		}
		if resolution.Path == "" {
			continue
		}

		walker := &graphWalker{session: session, origin: origin}
		path, found := walker.seek(resolution.Path, 0)
		if !found {
			continue
		}

		cycle := append([]string{origin}, path...)
		// Dedupe is scoped to the origin file: two imports reaching the
		// same cycle report once, while each member of the cycle still
		// reports from its own side regardless of worker placement.
		key := xxhash.Sum64String(origin + "\x00" + canonicalCycleKey(cycle))
		if session.reportedCycles[key] {
			continue
		}
		session.reportedCycles[key] = true

		chain := displayChain(cycle, session.Resolver.ProjectRoot())
		rep.Record(report.RecordInput{
			Description: ctx.Messages.T("rule.no-circular-dependencies.message", chain),
			Code:        chain,
			Line:        importLine(ctx, imp),
			Suggestions: []types.Suggestion{
				{Text: ctx.Messages.T("rule.no-circular-dependencies.suggestion")},
			},
		})
	}
	return nil
}

// reportUnresolved emits the secondary unresolved-import violation
// once per (file, specifier).
func (s *Session) reportUnresolved(ctx *Context, rep *report.ScopedReporter, origin string, imp types.ImportReference) {
	key := xxhash.Sum64String(origin + "\x00" + imp.Value)
	if s.reportedUnresolved[key] {
		return
	}
	s.reportedUnresolved[key] = true

	rep.Record(report.RecordInput{
		Description: ctx.Messages.T("rule.no-circular-dependencies.unresolved", imp.Value),
		Code:        imp.Value,
		Line:        importLine(ctx, imp),
	})
}

// graphWalker performs one depth-limited DFS looking for a path back
// to origin. visiting holds the current stack; deadEnds holds nodes
// proved non-returning so sibling branches skip them.
type graphWalker struct {
	session  *Session
	origin   string
	visiting map[string]bool
	deadEnds map[string]bool
	visited  int
}

// seek returns the node path from start to origin (inclusive of both),
// or found=false.
func (w *graphWalker) seek(start string, depth int) ([]string, bool) {
	if w.visiting == nil {
		w.visiting = make(map[string]bool)
		w.deadEnds = make(map[string]bool)
	}
	return w.dfs(start, depth)
}

func (w *graphWalker) dfs(node string, depth int) ([]string, bool) {
	if node == w.origin {
		return []string{node}, true
	}
	if depth >= maxGraphDepth || w.visited >= maxGraphNodes {
		return nil, false
	}
	if w.visiting[node] || w.deadEnds[node] {
		return nil, false
	}
	w.visiting[node] = true
	w.visited++

	for _, neighbor := range w.session.neighbors(node) {
		if path, found := w.dfs(neighbor, depth+1); found {
			delete(w.visiting, node)
			return append([]string{node}, path...), true
		}
	}

	delete(w.visiting, node)
	w.deadEnds[node] = true
	return nil, false
}

// neighbors returns the resolved import targets of path, cached for
// the worker's lifetime.
func (s *Session) neighbors(path string) []string {
	if cached, ok := s.neighborCache[path]; ok {
		return cached
	}

	var result []string
	content, err := os.ReadFile(path)
	if err != nil {
		debug.LogResolver("neighbour scan unreadable: %s: %v", path, err)
		s.neighborCache[path] = nil
		return nil
	}

	seen := make(map[string]bool)
	for _, pattern := range neighborPatterns {
		for _, match := range pattern.FindAllSubmatch(content, -1) {
			specifier := string(match[1])
			if seen[specifier] {
				continue
			}
			seen[specifier] = true

			resolution := s.Resolver.Resolve(path, specifier)
			if resolution.Path != "" {
				result = append(result, resolution.Path)
			}
		}
	}

	s.neighborCache[path] = result
	return result
}

// canonicalCycleKey rotates the cycle (without its trailing origin
// repeat) to its lexicographically least form and joins with "->".
func canonicalCycleKey(cycle []string) string {
	nodes := cycle
	if len(nodes) > 1 && nodes[0] == nodes[len(nodes)-1] {
		nodes = nodes[:len(nodes)-1]
	}
	if len(nodes) == 0 {
		return ""
	}

	best := 0
	for i := 1; i < len(nodes); i++ {
		if rotationLess(nodes, i, best) {
			best = i
		}
	}

	rotated := make([]string, 0, len(nodes))
	rotated = append(rotated, nodes[best:]...)
	rotated = append(rotated, nodes[:best]...)
	return strings.Join(rotated, "->")
}

// rotationLess compares two rotations of nodes lexicographically.
func rotationLess(nodes []string, a, b int) bool {
	n := len(nodes)
	for i := 0; i < n; i++ {
		left, right := nodes[(a+i)%n], nodes[(b+i)%n]
		if left != right {
			return left < right
		}
	}
	return false
}

// displayChain renders the cycle with project-relative paths. The
// slice already carries the closing repeat of the origin.
func displayChain(cycle []string, projectRoot string) string {
	parts := make([]string, 0, len(cycle))
	for _, node := range cycle {
		parts = append(parts, pathutil.ToPosix(pathutil.ToRelative(node, projectRoot)))
	}
	return strings.Join(parts, " -> ")
}
