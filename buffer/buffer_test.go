package buffer

import (
	"testing"

	"ghosttab/assert"
	"ghosttab/types"
)

func TestNewCopiesLines(t *testing.T) {
	lines := []string{"a\n", "b\n"}
	b := New(lines, types.Pos{})

	lines[0] = "mutated\n"
	assert.Equal(t, "a\n", b.Lines[0], "buffer owns its line array")
}

func TestFromContent(t *testing.T) {
	b := FromContent("a\nb\nc", types.Pos{Line: 1, Character: 0})
	assert.DeepEqual(t, []string{"a\n", "b\n", "c"}, b.Lines, "lines")
	assert.Equal(t, "a\nb\nc", b.Content(), "content round-trip")
	assert.Equal(t, 3, b.LineCount(), "line count")
}

func TestFromSnapshotPrefersConsistentLines(t *testing.T) {
	snap := &types.EditorSnapshot{
		Content: "a\nb\n",
		Lines:   []string{"a\n", "b\n"},
	}
	b := FromSnapshot(snap)
	assert.DeepEqual(t, []string{"a\n", "b\n"}, b.Lines, "lines kept")
	assert.Equal(t, snap.Content, b.Content(), "content matches")
}

func TestFromSnapshotResplitsOnMismatch(t *testing.T) {
	// The flat content is authoritative when the line array disagrees.
	snap := &types.EditorSnapshot{
		Content: "a\nb\nc\n",
		Lines:   []string{"a\n", "b\n"},
	}
	b := FromSnapshot(snap)
	assert.Equal(t, 3, b.LineCount(), "re-split from content")
	assert.Equal(t, snap.Content, b.Content(), "content matches")
}

func TestLine(t *testing.T) {
	b := FromContent("a\nb\n", types.Pos{})
	assert.Equal(t, "a\n", b.Line(0), "first line")
	assert.Equal(t, "b\n", b.Line(1), "second line")
	assert.Equal(t, "", b.Line(2), "out of range")
	assert.Equal(t, "", b.Line(-1), "negative index")
}

func TestEqual(t *testing.T) {
	a := FromContent("a\nb\n", types.Pos{})
	b := FromContent("a\nb\n", types.Pos{Line: 1})
	c := FromContent("a\nb", types.Pos{})

	assert.True(t, a.Equal(b), "same content, cursor ignored")
	assert.False(t, a.Equal(c), "different line boundaries")
	assert.False(t, a.Equal(nil), "nil comparison")
}

func TestWithLines(t *testing.T) {
	b := FromContent("a\n", types.Pos{})
	b.Selections = []types.Selection{{Start: types.Pos{}, End: types.Pos{Character: 1}}}

	nb := b.WithLines([]string{"x\n", "y\n"}, types.Pos{Line: 1})
	assert.Equal(t, 2, nb.LineCount(), "new lines")
	assert.Equal(t, 1, nb.Cursor.Line, "new cursor")
	assert.Len(t, nb.Selections, 1, "selections carried over")
	assert.Equal(t, 1, b.LineCount(), "original untouched")
}
