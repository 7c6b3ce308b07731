package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/standardbeagle/lcr/internal/debug"
)

// PathAlias is one compiled tsconfig paths entry. Pattern holds the
// original pattern; Targets hold absolute target templates with at
// most one * each.
type PathAlias struct {
	Pattern string
	Targets []string
}

// Match tests specifier against the alias pattern. The returned string
// is the wildcard capture ("" for exact patterns).
func (a PathAlias) Match(specifier string) (string, bool) {
	star := strings.IndexByte(a.Pattern, '*')
	if star < 0 {
		if a.Pattern == specifier {
			return "", true
		}
		return "", false
	}
	prefix, suffix := a.Pattern[:star], a.Pattern[star+1:]
	if len(specifier) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], true
}

// TSConfig is the merged view of one tsconfig chain. BaseURL and
// RootDirs are absolute; alias targets are absolute templates.
type TSConfig struct {
	BaseURL  string
	Paths    []PathAlias
	RootDirs []string
}

// rawTSConfig mirrors the on-disk shape.
type rawTSConfig struct {
	Extends         extendsField `json:"extends"`
	CompilerOptions struct {
		BaseURL  string              `json:"baseUrl"`
		Paths    map[string][]string `json:"paths"`
		RootDirs []string            `json:"rootDirs"`
	} `json:"compilerOptions"`
}

// extendsField accepts both a single string and an array.
type extendsField []string

func (e *extendsField) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*e = []string{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*e = many
	return nil
}

// tsconfigFor returns the config governing dir, walking up to the
// project root. One lookup per directory; results (including misses)
// are cached.
func (r *Resolver) tsconfigFor(dir string) *TSConfig {
	dir = filepath.Clean(dir)
	if cached, ok := r.tsconfigs[dir]; ok {
		return cached
	}

	var cfg *TSConfig
	if r.tsconfigOverride != "" {
		cfg = r.loadTSConfig(r.tsconfigOverride, map[string]bool{})
	} else if path := filepath.Join(dir, "tsconfig.json"); isFile(path) {
		cfg = r.loadTSConfig(path, map[string]bool{})
	} else if r.withinProject(dir) && dir != r.projectRoot {
		cfg = r.tsconfigFor(filepath.Dir(dir))
	}

	r.tsconfigs[dir] = cfg
	return cfg
}

// loadTSConfig parses one config file and merges its extends chain.
// visited guards against extends cycles.
func (r *Resolver) loadTSConfig(path string, visited map[string]bool) *TSConfig {
	path = filepath.Clean(path)
	if visited[path] {
		return nil
	}
	visited[path] = true

	content, err := os.ReadFile(path)
	if err != nil {
		debug.LogResolver("tsconfig unreadable: %s: %v", path, err)
		return nil
	}

	// tsconfig is JSONC: comments and trailing commas are legal.
	standardized, err := hujson.Standardize(content)
	if err != nil {
		debug.LogResolver("tsconfig malformed: %s: %v", path, err)
		return nil
	}

	var raw rawTSConfig
	if err := json.Unmarshal(standardized, &raw); err != nil {
		debug.LogResolver("tsconfig shape invalid: %s: %v", path, err)
		return nil
	}

	configDir := filepath.Dir(path)
	merged := &TSConfig{}

	// Parents first; the defining config wins on conflicts.
	for _, parent := range raw.Extends {
		if parentPath := r.resolveExtends(configDir, parent); parentPath != "" {
			if parentCfg := r.loadTSConfig(parentPath, visited); parentCfg != nil {
				merged.merge(parentCfg)
			}
		}
	}

	own := &TSConfig{}
	if raw.CompilerOptions.BaseURL != "" {
		own.BaseURL = filepath.Clean(filepath.Join(configDir, filepath.FromSlash(raw.CompilerOptions.BaseURL)))
	}
	pathsBase := own.BaseURL
	if pathsBase == "" {
		pathsBase = configDir
	}
	for pattern, targets := range raw.CompilerOptions.Paths {
		alias := PathAlias{Pattern: pattern}
		for _, target := range targets {
			alias.Targets = append(alias.Targets, filepath.Join(pathsBase, filepath.FromSlash(target)))
		}
		own.Paths = append(own.Paths, alias)
	}
	for _, rootDir := range raw.CompilerOptions.RootDirs {
		own.RootDirs = append(own.RootDirs, filepath.Clean(filepath.Join(configDir, filepath.FromSlash(rootDir))))
	}
	merged.merge(own)

	sortAliases(merged.Paths)
	return merged
}

// merge overlays other on top of c.
func (c *TSConfig) merge(other *TSConfig) {
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	for _, alias := range other.Paths {
		replaced := false
		for i, existing := range c.Paths {
			if existing.Pattern == alias.Pattern {
				c.Paths[i] = alias
				replaced = true
				break
			}
		}
		if !replaced {
			c.Paths = append(c.Paths, alias)
		}
	}
	if len(other.RootDirs) > 0 {
		c.RootDirs = other.RootDirs
	}
}

// sortAliases orders patterns longest-prefix first so the most
// specific alias wins, matching tsc behaviour.
func sortAliases(aliases []PathAlias) {
	for i := 1; i < len(aliases); i++ {
		for j := i; j > 0 && aliasPrefixLen(aliases[j]) > aliasPrefixLen(aliases[j-1]); j-- {
			aliases[j], aliases[j-1] = aliases[j-1], aliases[j]
		}
	}
}

func aliasPrefixLen(a PathAlias) int {
	if star := strings.IndexByte(a.Pattern, '*'); star >= 0 {
		return star
	}
	return len(a.Pattern)
}

// resolveExtends resolves an extends reference: relative paths against
// the config directory, module-style references against node_modules.
func (r *Resolver) resolveExtends(configDir, ref string) string {
	if strings.HasPrefix(ref, ".") {
		return resolveConfigFile(filepath.Join(configDir, filepath.FromSlash(ref)))
	}

	dir := configDir
	for {
		base := filepath.Join(dir, "node_modules", filepath.FromSlash(ref))
		if found := resolveConfigFile(base); found != "" {
			return found
		}
		if dir == r.projectRoot || dir == filepath.Dir(dir) {
			return ""
		}
		dir = filepath.Dir(dir)
	}
}

// resolveConfigFile probes a config reference as tsc does: exact,
// .json appended, then tsconfig.json within a directory.
func resolveConfigFile(base string) string {
	if isFile(base) {
		return base
	}
	if candidate := base + ".json"; isFile(candidate) {
		return candidate
	}
	if candidate := filepath.Join(base, "tsconfig.json"); isFile(candidate) {
		return candidate
	}
	return ""
}
