// Package sourceindex maps parser byte spans to 1-based line numbers.
//
// Parser spans are byte offsets into the whole file. The module start
// is the offset past a leading UTF-8 BOM (0 without one); the index is
// built over the text after it and LineOfByte subtracts it before
// looking up the line. The index stores the byte offset of every line
// start once and answers lookups with a binary search.
package sourceindex

import "sort"

// SourceIndex is an immutable line-offset table for one file.
type SourceIndex struct {
	moduleStart uint32
	lineOffsets []uint32
}

// Build scans source once and records the offset of each line's first
// byte. lineOffsets[0] is always 0.
func Build(source []byte, moduleStart uint32) *SourceIndex {
	offsets := make([]uint32, 1, 64)
	offsets[0] = 0
	for i, b := range source {
		if b == '\n' {
			offsets = append(offsets, uint32(i+1))
		}
	}
	return &SourceIndex{
		moduleStart: moduleStart,
		lineOffsets: offsets,
	}
}

// ModuleStart returns the byte offset where module coordinates begin.
func (s *SourceIndex) ModuleStart() uint32 {
	return s.moduleStart
}

// LineCount returns the number of lines in the indexed source.
func (s *SourceIndex) LineCount() int {
	return len(s.lineOffsets)
}

// LineOfByte converts a module-coordinate byte offset to a 1-based line
// number. Offsets below moduleStart clamp to the first line; offsets
// past the end clamp to the last line. The result is monotonic
// non-decreasing in byteOffset.
func (s *SourceIndex) LineOfByte(byteOffset uint32) int {
	var rel uint32
	if byteOffset > s.moduleStart {
		rel = byteOffset - s.moduleStart
	}

	// Largest line offset <= rel. sort.Search finds the first offset
	// strictly greater, so the answer is one position before it.
	idx := sort.Search(len(s.lineOffsets), func(i int) bool {
		return s.lineOffsets[i] > rel
	})
	return idx
}
