package text

import (
	"testing"

	"ghosttab/assert"
)

func TestExtractDiffEntriesIdentical(t *testing.T) {
	lines := []string{"a\n", "b\n", "c\n"}
	entries := ExtractDiffEntries(lines, lines)
	assert.Len(t, entries, 0, "identical lines produce no entries")
}

func TestExtractDiffEntriesReplace(t *testing.T) {
	old := []string{"a\n", "b\n", "c\n"}
	new := []string{"a\n", "x\n", "c\n"}

	entries := ExtractDiffEntries(old, new)
	assert.Len(t, entries, 1, "entries")
	assert.Equal(t, "b", entries[0].Original, "original")
	assert.Equal(t, "x", entries[0].Updated, "updated")
}

func TestExtractDiffEntriesInsert(t *testing.T) {
	old := []string{"a\n", "c\n"}
	new := []string{"a\n", "b\n", "c\n"}

	entries := ExtractDiffEntries(old, new)
	assert.Len(t, entries, 1, "entries")
	assert.Equal(t, "", entries[0].Original, "original")
	assert.Equal(t, "b", entries[0].Updated, "updated")
}

func TestExtractDiffEntriesDelete(t *testing.T) {
	old := []string{"a\n", "b\n", "c\n"}
	new := []string{"a\n", "c\n"}

	entries := ExtractDiffEntries(old, new)
	assert.Len(t, entries, 1, "entries")
	assert.Equal(t, "b", entries[0].Original, "original")
	assert.Equal(t, "", entries[0].Updated, "updated")
}

func TestExtractDiffEntriesMultipleRegions(t *testing.T) {
	old := []string{"a\n", "b\n", "c\n", "d\n", "e\n"}
	new := []string{"a\n", "X\n", "c\n", "d\n", "Y\n"}

	entries := ExtractDiffEntries(old, new)
	assert.Len(t, entries, 2, "entries")
	assert.Equal(t, "b", entries[0].Original, "first original")
	assert.Equal(t, "X", entries[0].Updated, "first updated")
	assert.Equal(t, "e", entries[1].Original, "second original")
	assert.Equal(t, "Y", entries[1].Updated, "second updated")
}

func TestExtractDiffEntriesMultiLineBlock(t *testing.T) {
	old := []string{"a\n"}
	new := []string{"a\n", "b\n", "c\n"}

	entries := ExtractDiffEntries(old, new)
	assert.Len(t, entries, 1, "entries")
	assert.Equal(t, "", entries[0].Original, "original")
	assert.Equal(t, "b\nc", entries[0].Updated, "updated block")
}
