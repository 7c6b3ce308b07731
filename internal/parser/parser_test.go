package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Language
		ok       bool
	}{
		{path: "a.js", expected: LanguageJavaScript, ok: true},
		{path: "a.jsx", expected: LanguageJavaScript, ok: true},
		{path: "a.ts", expected: LanguageTypeScript, ok: true},
		{path: "a.tsx", expected: LanguageTSX, ok: true},
		{path: "A.TS", expected: LanguageTypeScript, ok: true},
		{path: "a.go", ok: false},
		{path: "a", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			lang, ok := LanguageForPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, lang)
			}
		})
	}
}

func TestParseTypeScript(t *testing.T) {
	p := Acquire()
	defer Release(p)

	result, err := p.Parse("x.ts", []byte("interface A { n: number }\nconst a: A = { n: 1 }\n"))
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, LanguageTypeScript, result.Language)
	assert.Equal(t, "program", result.Root().Kind())
	assert.Zero(t, result.ModuleStart)
}

func TestParseTSXAndJSX(t *testing.T) {
	p := Acquire()
	defer Release(p)

	tsx, err := p.Parse("view.tsx", []byte("export const V = () => <div>hello</div>\n"))
	require.NoError(t, err)
	defer tsx.Close()
	assert.Equal(t, LanguageTSX, tsx.Language)

	jsx, err := p.Parse("view.jsx", []byte("export const V = () => <div>hello</div>\n"))
	require.NoError(t, err)
	defer jsx.Close()
	assert.Equal(t, LanguageJavaScript, jsx.Language)
}

func TestParseSyntaxErrorFails(t *testing.T) {
	p := Acquire()
	defer Release(p)

	_, err := p.Parse("bad.ts", []byte("const = = = {\n"))
	assert.Error(t, err)
}

func TestParseUnsupportedExtension(t *testing.T) {
	p := Acquire()
	defer Release(p)

	_, err := p.Parse("main.go", []byte("package main\n"))
	assert.Error(t, err)
}

func TestParseBOMOffset(t *testing.T) {
	p := Acquire()
	defer Release(p)

	source := append([]byte{0xEF, 0xBB, 0xBF}, []byte("const x = 1\n")...)
	result, err := p.Parse("bom.ts", source)
	require.NoError(t, err)
	defer result.Close()
	assert.Equal(t, uint32(3), result.ModuleStart)
}

func TestParseDoesNotMutateCaller(t *testing.T) {
	p := Acquire()
	defer Release(p)

	content := []byte("const x = 1\n")
	original := string(content)
	result, err := p.Parse("a.ts", content)
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, original, string(content))
	// The result owns its own copy
	assert.NotSame(t, &content[0], &result.Source[0])
}
