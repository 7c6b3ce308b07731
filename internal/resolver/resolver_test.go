package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lcr/internal/errors"
)

// writeTree creates a file tree under a temp dir. Keys are
// slash-separated relative paths; values are file contents.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestResolveRelativeWithExtensions(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/a.ts":         "",
		"src/b.tsx":        "",
		"src/lib/index.ts": "",
		"src/exact.js":     "",
	})
	r := New(root, "")
	from := filepath.Join(root, "src", "main.ts")

	tests := []struct {
		name      string
		specifier string
		expected  string
	}{
		{name: "ts extension appended", specifier: "./a", expected: "src/a.ts"},
		{name: "tsx extension appended", specifier: "./b", expected: "src/b.tsx"},
		{name: "directory index", specifier: "./lib", expected: "src/lib/index.ts"},
		{name: "exact file", specifier: "./exact.js", expected: "src/exact.js"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(from, tt.specifier)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.expected)), res.Path)
			assert.False(t, res.ShouldWarn)
		})
	}
}

func TestResolveRejectsDeclarationAndEscapes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/types.d.ts": "",
	})
	r := New(filepath.Join(root, "src"), "")
	from := filepath.Join(root, "src", "main.ts")

	assert.Empty(t, r.Resolve(from, "./types.d.ts").Path)
	// ../../ escapes the project root
	assert.Empty(t, r.Resolve(from, "../../outside").Path)
}

func TestResolveQueryAndHashStripped(t *testing.T) {
	root := writeTree(t, map[string]string{"src/a.ts": ""})
	r := New(root, "")
	from := filepath.Join(root, "src", "main.ts")

	assert.Equal(t, filepath.Join(root, "src", "a.ts"), r.Resolve(from, "./a?raw").Path)
	assert.Equal(t, filepath.Join(root, "src", "a.ts"), r.Resolve(from, "./a#section").Path)
}

func TestResolveTSConfigPaths(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json": `{
			// alias into src, trailing comma tolerated
			"compilerOptions": {
				"baseUrl": ".",
				"paths": {
					"@app/*": ["src/*"],
					"config": ["src/config/index.ts"],
				},
			},
		}`,
		"src/util/helpers.ts": "",
		"src/config/index.ts": "",
	})
	r := New(root, "")
	from := filepath.Join(root, "src", "main.ts")

	res := r.Resolve(from, "@app/util/helpers")
	assert.Equal(t, filepath.Join(root, "src", "util", "helpers.ts"), res.Path)

	res = r.Resolve(from, "config")
	assert.Equal(t, filepath.Join(root, "src", "config", "index.ts"), res.Path)
}

func TestResolveAliasMissReportsWarn(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"paths": {"@app/*": ["src/*"]}}}`,
	})
	r := New(root, "")
	from := filepath.Join(root, "main.ts")

	res := r.Resolve(from, "@app/missing")
	assert.Empty(t, res.Path)
	assert.True(t, res.ShouldWarn)

	var resolveErr *errors.ResolveError
	require.ErrorAs(t, res.Err, &resolveErr)
	assert.Equal(t, "@app/missing", resolveErr.Specifier)
	assert.Equal(t, from, resolveErr.FromFile)

	// A plain bare package attempted no alias, so no warning
	res = r.Resolve(from, "lodash")
	assert.Empty(t, res.Path)
	assert.False(t, res.ShouldWarn)
	assert.NoError(t, res.Err)
}

func TestResolveTSConfigExtends(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.base.json": `{"compilerOptions": {"baseUrl": ".", "paths": {"@shared/*": ["shared/*"]}}}`,
		"tsconfig.json":      `{"extends": "./tsconfig.base.json"}`,
		"shared/thing.ts":    "",
	})
	r := New(root, "")
	from := filepath.Join(root, "main.ts")

	res := r.Resolve(from, "@shared/thing")
	assert.Equal(t, filepath.Join(root, "shared", "thing.ts"), res.Path)
}

func TestResolveBaseURL(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json":   `{"compilerOptions": {"baseUrl": "src"}}`,
		"src/deep/mod.ts": "",
	})
	r := New(root, "")
	from := filepath.Join(root, "src", "main.ts")

	res := r.Resolve(from, "deep/mod")
	assert.Equal(t, filepath.Join(root, "src", "deep", "mod.ts"), res.Path)
}

func TestResolveRootDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"tsconfig.json":       `{"compilerOptions": {"rootDirs": ["src", "generated"]}}`,
		"src/main.ts":         "",
		"generated/schema.ts": "",
	})
	r := New(root, "")
	from := filepath.Join(root, "src", "main.ts")

	// ./schema misses under src but exists under the sibling rootDir
	res := r.Resolve(from, "./schema")
	assert.Equal(t, filepath.Join(root, "generated", "schema.ts"), res.Path)
}

func TestResolveWorkspacePackage(t *testing.T) {
	root := writeTree(t, map[string]string{
		"package.json":                   `{"workspaces": ["packages/*"]}`,
		"packages/ui/package.json":       `{"name": "@acme/ui", "main": "lib/index.ts"}`,
		"packages/ui/lib/index.ts":       "",
		"packages/ui/lib/button.ts":      "",
		"packages/core/package.json":     `{"name": "core", "exports": {".": {"import": "./src/index.ts"}, "./util/*": "./src/util/*.ts"}}`,
		"packages/core/src/index.ts":     "",
		"packages/core/src/util/math.ts": "",
	})
	r := New(root, "")
	from := filepath.Join(root, "apps", "web", "main.ts")

	assert.Equal(t, filepath.Join(root, "packages", "ui", "lib", "index.ts"), r.Resolve(from, "@acme/ui").Path)
	assert.Equal(t, filepath.Join(root, "packages", "ui", "lib", "button.ts"), r.Resolve(from, "@acme/ui/lib/button").Path)
	assert.Equal(t, filepath.Join(root, "packages", "core", "src", "index.ts"), r.Resolve(from, "core").Path)
	assert.Equal(t, filepath.Join(root, "packages", "core", "src", "util", "math.ts"), r.Resolve(from, "core/util/math").Path)

	// Subpath that matches no export warns and carries the typed error
	res := r.Resolve(from, "core/not-there")
	assert.Empty(t, res.Path)
	assert.True(t, res.ShouldWarn)
	assert.Error(t, res.Err)
}

func TestResolveDefaultWorkspacePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		// No root package.json at all: defaults packages/* and apps/* apply
		"packages/tools/package.json": `{"name": "tools", "main": "index.ts"}`,
		"packages/tools/index.ts":     "",
	})
	r := New(root, "")
	from := filepath.Join(root, "main.ts")

	assert.Equal(t, filepath.Join(root, "packages", "tools", "index.ts"), r.Resolve(from, "tools").Path)
}

func TestResolveCachesResults(t *testing.T) {
	root := writeTree(t, map[string]string{"src/a.ts": ""})
	r := New(root, "")
	from := filepath.Join(root, "src", "main.ts")

	first := r.Resolve(from, "./a")
	require.NotEmpty(t, first.Path)

	// Removing the file must not change the cached answer
	require.NoError(t, os.Remove(filepath.Join(root, "src", "a.ts")))
	second := r.Resolve(from, "./a")
	assert.Equal(t, first, second)
}

func TestPathAliasMatch(t *testing.T) {
	wildcard := PathAlias{Pattern: "@app/*"}
	captured, ok := wildcard.Match("@app/lib/x")
	assert.True(t, ok)
	assert.Equal(t, "lib/x", captured)

	_, ok = wildcard.Match("@other/lib")
	assert.False(t, ok)

	exact := PathAlias{Pattern: "config"}
	captured, ok = exact.Match("config")
	assert.True(t, ok)
	assert.Empty(t, captured)
}
