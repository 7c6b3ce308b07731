package scan

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/lcr/pkg/pathutil"
)

// IgnoreMatcher tests candidate paths against the configured ignore
// globs. Every candidate is tested twice: as its POSIX-normalised
// absolute path and as its POSIX path relative to the ignore base
// directory, so patterns written either way work.
type IgnoreMatcher struct {
	patterns []string
	baseDir  string
}

// NewIgnoreMatcher builds a matcher over ordered glob patterns.
// baseDir anchors relative matching, usually the ignore file's
// directory.
func NewIgnoreMatcher(patterns []string, baseDir string) *IgnoreMatcher {
	return &IgnoreMatcher{patterns: patterns, baseDir: pathutil.Normalize(baseDir)}
}

// Ignored reports whether path matches any ignore pattern. Matching is
// stable under path normalisation: the path is normalised before any
// pattern runs.
func (m *IgnoreMatcher) Ignored(path string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	abs := pathutil.ToPosix(pathutil.Normalize(path))
	rel := pathutil.ToPosix(pathutil.ToRelative(pathutil.Normalize(path), m.baseDir))

	for _, pattern := range m.patterns {
		if matched, err := doublestar.Match(pattern, abs); err == nil && matched {
			return true
		}
		if rel != abs {
			if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
				return true
			}
		}
	}
	return false
}
