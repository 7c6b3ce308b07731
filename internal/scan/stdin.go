package scan

import (
	"bytes"
	"strings"
)

// SplitStdinPaths parses a path list fed over stdin. NUL-delimited
// input (find -print0, git ls-files -z) wins when any NUL byte is
// present; otherwise lines split on \r?\n. Entries keep interior
// spaces; empty entries are dropped.
func SplitStdinPaths(input []byte) []string {
	if len(input) == 0 {
		return nil
	}

	var entries []string
	if bytes.IndexByte(input, 0) >= 0 {
		entries = strings.Split(string(input), "\x00")
	} else {
		entries = strings.Split(string(input), "\n")
	}

	var paths []string
	for _, entry := range entries {
		entry = strings.TrimSuffix(entry, "\r")
		if entry == "" {
			continue
		}
		paths = append(paths, entry)
	}
	return paths
}
