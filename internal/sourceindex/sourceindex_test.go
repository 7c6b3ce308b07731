package sourceindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLineOffsets(t *testing.T) {
	idx := Build([]byte("a\nbb\n\nccc"), 0)
	assert.Equal(t, 4, idx.LineCount())

	assert.Equal(t, 1, idx.LineOfByte(0))
	assert.Equal(t, 1, idx.LineOfByte(1)) // the newline itself belongs to line 1
	assert.Equal(t, 2, idx.LineOfByte(2))
	assert.Equal(t, 2, idx.LineOfByte(3))
	assert.Equal(t, 3, idx.LineOfByte(5))
	assert.Equal(t, 4, idx.LineOfByte(6))
	assert.Equal(t, 4, idx.LineOfByte(8))
}

func TestLineOfByteModuleStart(t *testing.T) {
	idx := Build([]byte("line one\nline two\n"), 100)

	// Offsets at or below moduleStart clamp to line 1
	assert.Equal(t, 1, idx.LineOfByte(100))
	assert.Equal(t, 1, idx.LineOfByte(0))
	assert.Equal(t, 1, idx.LineOfByte(50))

	// Module coordinates are relative to moduleStart
	assert.Equal(t, 2, idx.LineOfByte(100+9))
}

func TestLineOfByteMultibyte(t *testing.T) {
	// "日本語" is 9 bytes; the newline sits at byte 9
	src := []byte("日本語\nsecond")
	idx := Build(src, 0)

	assert.Equal(t, 1, idx.LineOfByte(0))
	assert.Equal(t, 1, idx.LineOfByte(8))
	assert.Equal(t, 2, idx.LineOfByte(10))
}

func TestLineOfByteMonotonic(t *testing.T) {
	src := []byte("aa\nbb\ncc\ndd\n")
	idx := Build(src, 0)

	prev := 0
	for b := uint32(0); b < uint32(len(src)+4); b++ {
		line := idx.LineOfByte(b)
		assert.GreaterOrEqual(t, line, prev)
		assert.GreaterOrEqual(t, line, 1)
		assert.LessOrEqual(t, line, idx.LineCount())
		prev = line
	}
}

func TestEmptySource(t *testing.T) {
	idx := Build(nil, 0)
	assert.Equal(t, 1, idx.LineCount())
	assert.Equal(t, 1, idx.LineOfByte(0))
	assert.Equal(t, 1, idx.LineOfByte(42))
}
