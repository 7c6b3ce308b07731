// Package parser wraps the tree-sitter JavaScript and TypeScript
// grammars behind the narrow surface the scan pipeline consumes: parse
// one file, get back a syntax tree with byte spans.
package parser

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lcr/internal/errors"
)

// Language selects the grammar for a file.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
)

// utf8BOM is stripped from offsets so module coordinates start at the
// first real code unit.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LanguageForPath maps a file extension to its grammar. The second
// return is false for extensions the scanner does not parse.
func LanguageForPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx":
		return LanguageJavaScript, true
	case ".ts":
		return LanguageTypeScript, true
	case ".tsx":
		return LanguageTSX, true
	default:
		return "", false
	}
}

// ParseResult carries one parsed file. The tree must be released with
// Close when the file's rules are done.
type ParseResult struct {
	Tree        *tree_sitter.Tree
	Source      []byte
	Language    Language
	ModuleStart uint32
}

// Close releases the underlying tree-sitter tree.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// Root returns the root syntax node.
func (r *ParseResult) Root() *tree_sitter.Node {
	return r.Tree.RootNode()
}

// FileParser parses JavaScript/TypeScript sources into syntax trees.
// The scan pipeline depends on this interface, not on tree-sitter.
type FileParser interface {
	Parse(path string, content []byte) (*ParseResult, error)
}

// TreeSitterParser holds one tree-sitter parser per grammar, created
// lazily on first use. A parser instance is not safe for concurrent
// use; obtain instances via Acquire/Release.
type TreeSitterParser struct {
	mu      sync.Mutex
	parsers map[Language]*tree_sitter.Parser
}

// NewTreeSitterParser creates an empty parser; grammars load on demand.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{
		parsers: make(map[Language]*tree_sitter.Parser),
	}
}

// parserPool reuses TreeSitterParser instances across files.
// Grammar setup costs a CGO round-trip per language, so worker
// goroutines check parsers out instead of creating their own.
var parserPool = sync.Pool{
	New: func() any { return NewTreeSitterParser() },
}

// Acquire returns a parser from the shared pool.
func Acquire() *TreeSitterParser {
	return parserPool.Get().(*TreeSitterParser)
}

// Release returns a parser to the shared pool.
func Release(p *TreeSitterParser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Parse parses content as the language implied by path's extension.
// A tree whose root contains syntax errors is reported as a parse
// failure; the scanner records these as error-severity file outcomes.
func (p *TreeSitterParser) Parse(path string, content []byte) (*ParseResult, error) {
	lang, ok := LanguageForPath(path)
	if !ok {
		return nil, errors.NewParseError(path, "unsupported file extension", nil)
	}

	tsParser, err := p.parserFor(lang)
	if err != nil {
		return nil, err
	}

	// Tree-sitter reads the buffer via CGO; copy so callers keep an
	// untouched view of the file content.
	buffer := make([]byte, len(content))
	copy(buffer, content)

	tree := tsParser.Parse(buffer, nil)
	if tree == nil {
		return nil, errors.NewParseError(path, "parser returned no tree", nil)
	}

	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, errors.NewParseError(path, "parser returned no root node", nil)
	}
	if root.HasError() {
		tree.Close()
		return nil, errors.NewParseError(path, "syntax error", nil)
	}

	var moduleStart uint32
	if bytes.HasPrefix(buffer, utf8BOM) {
		moduleStart = uint32(len(utf8BOM))
	}

	return &ParseResult{
		Tree:        tree,
		Source:      buffer,
		Language:    lang,
		ModuleStart: moduleStart,
	}, nil
}

// parserFor returns the cached parser for lang, creating it on first
// use.
func (p *TreeSitterParser) parserFor(lang Language) (*tree_sitter.Parser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if parser, ok := p.parsers[lang]; ok {
		return parser, nil
	}

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(grammarFor(lang)); err != nil {
		return nil, errors.NewParseError(string(lang), "failed to load grammar", err)
	}
	p.parsers[lang] = parser
	return parser, nil
}
