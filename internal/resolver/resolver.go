// Package resolver maps import specifiers to on-disk files the way the
// TypeScript toolchain would: relative paths with extension probing,
// tsconfig path aliases and rootDirs, baseUrl lookups, and workspace
// packages with exports maps.
//
// All caches are plain maps keyed by absolute normalised paths and are
// private to one worker, so no locking is needed.
package resolver

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/lcr/internal/debug"
	"github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/pkg/pathutil"
)

// extensionCandidates are probed in order when a specifier omits the
// extension.
var extensionCandidates = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// errNoCandidate is the terminal cause carried by a ResolveError when
// an alias or workspace rule matched but no probed candidate existed.
var errNoCandidate = stderrors.New("no candidate file matched")

// Resolution is the outcome of resolving one specifier. ShouldWarn is
// set when an alias or workspace rule matched but produced no file;
// Err then carries the typed ResolveError describing the miss.
type Resolution struct {
	Path       string
	ShouldWarn bool
	Err        error
}

// Resolver resolves specifiers for files under one project root.
type Resolver struct {
	projectRoot      string
	tsconfigOverride string

	tsconfigs map[string]*TSConfig  // directory -> nearest config (nil = none)
	workspace *WorkspaceIndex       // lazily built
	resolved  map[string]Resolution // fromFile + "\x00" + specifier
}

// New creates a resolver rooted at projectRoot. tsconfigOverride, when
// non-empty, pins every lookup to that config file.
func New(projectRoot, tsconfigOverride string) *Resolver {
	return &Resolver{
		projectRoot:      pathutil.Normalize(projectRoot),
		tsconfigOverride: tsconfigOverride,
		tsconfigs:        make(map[string]*TSConfig),
		resolved:         make(map[string]Resolution),
	}
}

// ProjectRoot returns the resolver's root directory.
func (r *Resolver) ProjectRoot() string {
	return r.projectRoot
}

// Resolve maps specifier, as written in fromFile, to an absolute file
// path. An empty path with ShouldWarn=false means the specifier is
// external (bare package) or simply absent.
func (r *Resolver) Resolve(fromFile, specifier string) Resolution {
	fromFile = pathutil.Normalize(fromFile)
	key := fromFile + "\x00" + specifier
	if cached, ok := r.resolved[key]; ok {
		return cached
	}

	resolution := r.resolveUncached(fromFile, specifier)
	r.resolved[key] = resolution
	return resolution
}

func (r *Resolver) resolveUncached(fromFile, specifier string) Resolution {
	specifier = stripQueryAndHash(specifier)
	if specifier == "" {
		return Resolution{}
	}

	if strings.HasPrefix(specifier, ".") {
		return Resolution{Path: r.resolveRelative(fromFile, specifier)}
	}
	return r.resolveBare(fromFile, specifier)
}

// stripQueryAndHash removes ?query and #hash suffixes bundlers allow.
func stripQueryAndHash(specifier string) string {
	if i := strings.IndexByte(specifier, '?'); i >= 0 {
		specifier = specifier[:i]
	}
	if i := strings.IndexByte(specifier, '#'); i >= 0 {
		specifier = specifier[:i]
	}
	return specifier
}

// resolveRelative handles ./ and ../ specifiers, including tsconfig
// rootDirs fallback.
func (r *Resolver) resolveRelative(fromFile, specifier string) string {
	base := filepath.Clean(filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(specifier)))

	if !r.withinProject(base) {
		return ""
	}
	if resolved := resolvePathCandidate(base); resolved != "" {
		return resolved
	}

	// rootDirs lets virtual directories overlay each other: recompute
	// the suffix under the rootDir that contains the miss and retry it
	// under the siblings.
	cfg := r.tsconfigFor(filepath.Dir(fromFile))
	if cfg == nil || len(cfg.RootDirs) == 0 {
		return ""
	}
	for _, owner := range cfg.RootDirs {
		suffix, err := filepath.Rel(owner, base)
		if err != nil || strings.HasPrefix(suffix, "..") {
			continue
		}
		for _, sibling := range cfg.RootDirs {
			if sibling == owner {
				continue
			}
			if resolved := resolvePathCandidate(filepath.Join(sibling, suffix)); resolved != "" && r.withinProject(resolved) {
				return resolved
			}
		}
	}
	return ""
}

// resolveBare handles alias, baseUrl, and workspace specifiers.
func (r *Resolver) resolveBare(fromFile, specifier string) Resolution {
	attempted := false
	cfg := r.tsconfigFor(filepath.Dir(fromFile))

	// tsconfig paths aliases
	if cfg != nil {
		for _, alias := range cfg.Paths {
			captured, ok := alias.Match(specifier)
			if !ok {
				continue
			}
			attempted = true
			for _, target := range alias.Targets {
				candidate := strings.Replace(target, "*", captured, 1)
				if resolved := resolvePathCandidate(filepath.FromSlash(candidate)); resolved != "" && r.withinProject(resolved) {
					return Resolution{Path: resolved}
				}
			}
		}
	}

	// baseUrl lookup for path-like specifiers
	if cfg != nil && cfg.BaseURL != "" && looksPathLike(specifier) && !r.isKnownPackage(fromFile, specifier) {
		if resolved := resolvePathCandidate(filepath.Join(cfg.BaseURL, filepath.FromSlash(specifier))); resolved != "" && r.withinProject(resolved) {
			return Resolution{Path: resolved}
		}
	}

	// workspace packages
	pkgName, subpath := splitPackageSpecifier(specifier)
	if pkg := r.workspaceIndex().Lookup(pkgName); pkg != nil {
		attempted = true
		if resolved := pkg.ResolveSubpath(subpath); resolved != "" {
			return Resolution{Path: resolved}
		}
	}

	if attempted {
		err := errors.NewResolveError(specifier, fromFile, errNoCandidate)
		debug.LogResolver("%v", err)
		return Resolution{ShouldWarn: true, Err: err}
	}
	return Resolution{}
}

// looksPathLike reports whether a bare specifier plausibly names a
// project path rather than an npm package.
func looksPathLike(specifier string) bool {
	return strings.ContainsRune(specifier, '/') || strings.HasPrefix(specifier, "@")
}

// isKnownPackage reports whether the specifier's first package segment
// names a workspace package or a directory in any ancestor
// node_modules.
func (r *Resolver) isKnownPackage(fromFile, specifier string) bool {
	pkgName, _ := splitPackageSpecifier(specifier)
	if pkgName == "" {
		return false
	}
	if r.workspaceIndex().Lookup(pkgName) != nil {
		return true
	}

	dir := filepath.Dir(fromFile)
	for {
		if info, err := os.Stat(filepath.Join(dir, "node_modules", filepath.FromSlash(pkgName))); err == nil && info.IsDir() {
			return true
		}
		if dir == r.projectRoot || dir == filepath.Dir(dir) {
			return false
		}
		dir = filepath.Dir(dir)
	}
}

// splitPackageSpecifier divides a bare specifier into package name and
// subpath. Scoped packages keep their first two segments.
func splitPackageSpecifier(specifier string) (string, string) {
	segments := strings.Split(specifier, "/")
	nameLen := 1
	if strings.HasPrefix(specifier, "@") {
		if len(segments) < 2 {
			return specifier, "."
		}
		nameLen = 2
	}
	name := strings.Join(segments[:nameLen], "/")
	if len(segments) == nameLen {
		return name, "."
	}
	return name, "./" + strings.Join(segments[nameLen:], "/")
}

// withinProject rejects paths that escape the project root.
func (r *Resolver) withinProject(path string) bool {
	rel, err := filepath.Rel(r.projectRoot, path)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..")
}

// resolvePathCandidate probes base as the toolchain would: exact file,
// appended extensions, then index files inside a directory.
// Declaration files are never valid targets.
func resolvePathCandidate(base string) string {
	if isFile(base) && !strings.HasSuffix(base, ".d.ts") {
		return base
	}
	for _, ext := range extensionCandidates {
		if candidate := base + ext; isFile(candidate) {
			return candidate
		}
	}
	if isDir(base) {
		for _, ext := range extensionCandidates {
			if candidate := filepath.Join(base, "index"+ext); isFile(candidate) {
				return candidate
			}
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
