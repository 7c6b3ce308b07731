package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/lcr/internal/debug"
)

// maxWorkspacePackages caps glob expansion so a pattern like "**"
// over a huge monorepo cannot stall the scan.
const maxWorkspacePackages = 512

// defaultWorkspacePatterns apply when the root manifest declares no
// workspaces.
var defaultWorkspacePatterns = []string{"packages/*", "apps/*"}

// WorkspacePackage is one discovered workspace member.
type WorkspacePackage struct {
	Name    string
	Dir     string
	Exports json.RawMessage
	Module  string
	Main    string
	Types   string
}

// WorkspaceIndex maps package names to workspace members.
type WorkspaceIndex struct {
	packages map[string]*WorkspacePackage
}

// Lookup returns the package registered under name, or nil.
func (w *WorkspaceIndex) Lookup(name string) *WorkspacePackage {
	if w == nil {
		return nil
	}
	return w.packages[name]
}

// workspaceIndex lazily discovers workspace packages on first bare
// specifier lookup.
func (r *Resolver) workspaceIndex() *WorkspaceIndex {
	if r.workspace != nil {
		return r.workspace
	}
	r.workspace = discoverWorkspace(r.projectRoot)
	return r.workspace
}

// rootManifest mirrors the workspace-bearing part of package.json.
// The workspaces field is either an array or {packages: [...]}.
type rootManifest struct {
	Workspaces json.RawMessage `json:"workspaces"`
}

// packageManifest mirrors the fields resolution needs.
type packageManifest struct {
	Name    string          `json:"name"`
	Exports json.RawMessage `json:"exports"`
	Module  string          `json:"module"`
	Main    string          `json:"main"`
	Types   string          `json:"types"`
}

// discoverWorkspace reads the root manifest, expands its workspace
// globs, and indexes every member directory holding a package.json.
func discoverWorkspace(projectRoot string) *WorkspaceIndex {
	index := &WorkspaceIndex{packages: make(map[string]*WorkspacePackage)}

	patterns := defaultWorkspacePatterns
	if content, err := os.ReadFile(filepath.Join(projectRoot, "package.json")); err == nil {
		var manifest rootManifest
		if json.Unmarshal(content, &manifest) == nil && len(manifest.Workspaces) > 0 {
			if declared := parseWorkspacePatterns(manifest.Workspaces); declared != nil {
				patterns = declared
			}
		}
	}

	fsys := os.DirFS(projectRoot)
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, strings.TrimSuffix(pattern, "/"))
		if err != nil {
			debug.LogResolver("workspace pattern %q invalid: %v", pattern, err)
			continue
		}
		for _, match := range matches {
			if len(index.packages) >= maxWorkspacePackages {
				debug.LogResolver("workspace expansion capped at %d packages", maxWorkspacePackages)
				return index
			}
			dir := filepath.Join(projectRoot, filepath.FromSlash(match))
			registerWorkspacePackage(index, dir)
		}
	}
	return index
}

// parseWorkspacePatterns accepts both manifest shapes.
func parseWorkspacePatterns(raw json.RawMessage) []string {
	var plain []string
	if json.Unmarshal(raw, &plain) == nil {
		return plain
	}
	var wrapped struct {
		Packages []string `json:"packages"`
	}
	if json.Unmarshal(raw, &wrapped) == nil {
		return wrapped.Packages
	}
	return nil
}

// registerWorkspacePackage indexes dir when it holds a named manifest.
func registerWorkspacePackage(index *WorkspaceIndex, dir string) {
	content, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return
	}
	var manifest packageManifest
	if err := json.Unmarshal(content, &manifest); err != nil || manifest.Name == "" {
		return
	}
	if _, exists := index.packages[manifest.Name]; exists {
		return // first declaration wins
	}
	index.packages[manifest.Name] = &WorkspacePackage{
		Name:    manifest.Name,
		Dir:     dir,
		Exports: manifest.Exports,
		Module:  manifest.Module,
		Main:    manifest.Main,
		Types:   manifest.Types,
	}
}

// ResolveSubpath maps a package subpath ("." for the root) to a file
// inside the package directory.
func (p *WorkspacePackage) ResolveSubpath(subpath string) string {
	if len(p.Exports) > 0 {
		if target := resolveExportsEntry(p.Exports, subpath); target != "" {
			if resolved := resolvePathCandidate(filepath.Join(p.Dir, filepath.FromSlash(target))); resolved != "" {
				return resolved
			}
		}
	}

	if subpath == "." {
		for _, entry := range []string{p.Module, p.Main, p.Types} {
			if entry == "" {
				continue
			}
			if resolved := resolvePathCandidate(filepath.Join(p.Dir, filepath.FromSlash(entry))); resolved != "" {
				return resolved
			}
		}
		return resolvePathCandidate(filepath.Join(p.Dir, "index"))
	}

	// Directory-relative lookup inside the package.
	return resolvePathCandidate(filepath.Join(p.Dir, filepath.FromSlash(subpath)))
}

// exportConditionOrder is the preference order for conditional exports.
var exportConditionOrder = []string{"import", "require", "default", "types"}

// resolveExportsEntry walks an exports value for subpath. It returns
// the package-relative target string, or "".
func resolveExportsEntry(raw json.RawMessage, subpath string) string {
	// A bare string export serves only the root subpath.
	var direct string
	if json.Unmarshal(raw, &direct) == nil {
		if subpath == "." {
			return direct
		}
		return ""
	}

	var object map[string]json.RawMessage
	if json.Unmarshal(raw, &object) != nil {
		return ""
	}

	if isSubpathMap(object) {
		// Exact subpath first, then single-star patterns.
		if entry, ok := object[subpath]; ok {
			return resolveConditional(entry)
		}
		for pattern, entry := range object {
			captured, ok := matchSubpathPattern(pattern, subpath)
			if !ok {
				continue
			}
			if target := resolveConditional(entry); target != "" {
				return strings.Replace(target, "*", captured, 1)
			}
		}
		return ""
	}

	// Conditional object at the top level serves the root subpath.
	if subpath == "." {
		return resolveConditional(raw)
	}
	return ""
}

// isSubpathMap distinguishes {"./x": ...} maps from condition maps.
func isSubpathMap(object map[string]json.RawMessage) bool {
	for key := range object {
		return strings.HasPrefix(key, ".")
	}
	return false
}

// resolveConditional unwraps nested condition objects preferring
// import > require > default > types.
func resolveConditional(raw json.RawMessage) string {
	var direct string
	if json.Unmarshal(raw, &direct) == nil {
		return direct
	}
	var conditions map[string]json.RawMessage
	if json.Unmarshal(raw, &conditions) != nil {
		return ""
	}
	for _, condition := range exportConditionOrder {
		if entry, ok := conditions[condition]; ok {
			if target := resolveConditional(entry); target != "" {
				return target
			}
		}
	}
	return ""
}

// matchSubpathPattern matches "./lib/*" style patterns with exactly
// one star.
func matchSubpathPattern(pattern, subpath string) (string, bool) {
	star := strings.IndexByte(pattern, '*')
	if star < 0 || strings.Count(pattern, "*") != 1 {
		return "", false
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if len(subpath) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(subpath, prefix) || !strings.HasSuffix(subpath, suffix) {
		return "", false
	}
	return subpath[len(prefix) : len(subpath)-len(suffix)], true
}
