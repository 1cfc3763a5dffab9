// Package buffer holds the line buffer model: the editor's text as an
// ordered sequence of lines plus cursor and selection state. It is pure
// data; every buffer the engine produces keeps the flat content and the
// line array consistent byte-for-byte.
package buffer

import (
	"ghosttab/text"
	"ghosttab/types"
)

// LineBuffer is a value snapshot of one editor document. Each line retains
// its own terminator except possibly the last.
type LineBuffer struct {
	Lines      []string
	Cursor     types.Pos
	Selections []types.Selection
}

// New builds a LineBuffer from a line array, copying the slice.
func New(lines []string, cursor types.Pos) *LineBuffer {
	copied := make([]string, len(lines))
	copy(copied, lines)
	return &LineBuffer{Lines: copied, Cursor: cursor}
}

// FromContent builds a LineBuffer by splitting content into lines.
func FromContent(content string, cursor types.Pos) *LineBuffer {
	return &LineBuffer{Lines: text.SplitLines(content), Cursor: cursor}
}

// FromSnapshot builds a LineBuffer from an editor snapshot. The snapshot's
// line array is used when it joins back to the content exactly; otherwise
// the content string is authoritative and is re-split.
func FromSnapshot(snap *types.EditorSnapshot) *LineBuffer {
	lines := snap.Lines
	if text.JoinLines(lines) != snap.Content {
		lines = text.SplitLines(snap.Content)
	}
	b := New(lines, snap.Cursor)
	if len(snap.Selections) > 0 {
		b.Selections = make([]types.Selection, len(snap.Selections))
		copy(b.Selections, snap.Selections)
	}
	return b
}

// Content returns the flat document string, always the exact join of Lines.
func (b *LineBuffer) Content() string {
	return text.JoinLines(b.Lines)
}

// LineCount returns the number of lines.
func (b *LineBuffer) LineCount() int {
	return len(b.Lines)
}

// Line returns the line at a 0-indexed position, or "" when out of range.
func (b *LineBuffer) Line(i int) string {
	if i < 0 || i >= len(b.Lines) {
		return ""
	}
	return b.Lines[i]
}

// Equal reports whether two buffers hold byte-identical content with the
// same line boundaries.
func (b *LineBuffer) Equal(other *LineBuffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if len(b.Lines) != len(other.Lines) {
		return false
	}
	for i := range b.Lines {
		if b.Lines[i] != other.Lines[i] {
			return false
		}
	}
	return true
}

// WithLines returns a copy of the buffer with a new line array and cursor.
func (b *LineBuffer) WithLines(lines []string, cursor types.Pos) *LineBuffer {
	nb := New(lines, cursor)
	if len(b.Selections) > 0 {
		nb.Selections = make([]types.Selection, len(b.Selections))
		copy(nb.Selections, b.Selections)
	}
	return nb
}
