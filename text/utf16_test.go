package text

import (
	"testing"

	"ghosttab/assert"
)

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, UTF16Len(""), "empty")
	assert.Equal(t, 5, UTF16Len("hello"), "ascii")
	assert.Equal(t, 5, UTF16Len("héllo"), "bmp accent")
	assert.Equal(t, 2, UTF16Len("😀"), "surrogate pair")
	assert.Equal(t, 4, UTF16Len("a😀b"), "mixed")
}

func TestUTF16ToByteOffset(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		units    int
		expected int
	}{
		{name: "zero", s: "hello", units: 0, expected: 0},
		{name: "negative clamps to zero", s: "hello", units: -2, expected: 0},
		{name: "ascii", s: "hello", units: 3, expected: 3},
		{name: "past end clamps", s: "hello", units: 10, expected: 5},
		{name: "two-byte rune", s: "héllo", units: 2, expected: 3},
		{name: "after surrogate pair", s: "😀x", units: 2, expected: 4},
		{name: "mid surrogate snaps forward", s: "😀x", units: 1, expected: 4},
		{name: "past surrogate pair", s: "😀x", units: 3, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UTF16ToByteOffset(tt.s, tt.units), "byte offset")
		})
	}
}

func TestByteToUTF16Offset(t *testing.T) {
	assert.Equal(t, 0, ByteToUTF16Offset("hello", 0), "zero")
	assert.Equal(t, 3, ByteToUTF16Offset("hello", 3), "ascii")
	assert.Equal(t, 5, ByteToUTF16Offset("hello", 99), "past end clamps")
	assert.Equal(t, 2, ByteToUTF16Offset("😀x", 4), "after surrogate pair")
	assert.Equal(t, 3, ByteToUTF16Offset("😀x", 5), "full string")
}

func TestColumnClamp(t *testing.T) {
	assert.Equal(t, 3, ColumnClamp("hello\n", 3), "within line")
	assert.Equal(t, 5, ColumnClamp("hello\n", 10), "clamps to content length")
	assert.Equal(t, 0, ColumnClamp("hello\n", -1), "negative clamps to zero")
	assert.Equal(t, 0, ColumnClamp("\n", 4), "blank line")
}
