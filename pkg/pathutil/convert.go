// Package pathutil provides conversions between the absolute paths the
// scanner uses internally and the POSIX/relative forms used for glob
// matching and display.
//
// Architecture pattern: the pipeline normalises every input to an
// absolute path once, at the boundary; matching and output convert
// back at their own boundaries. Nothing in between re-interprets
// separators.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root
// directory. Falls back to the original path when conversion fails,
// the path is already relative, or the file sits outside the root.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}

// ToPosix normalises a path to forward slashes for glob matching.
func ToPosix(path string) string {
	return filepath.ToSlash(path)
}

// Normalize returns the cleaned absolute form of path. Relative inputs
// resolve against the current working directory.
func Normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
