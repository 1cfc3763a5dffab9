package engine

import (
	"strings"

	"ghosttab/text"
	"ghosttab/types"
)

// presentation is the computed effect of rendering one candidate against a
// line array: the single line-level modification, where the injected block
// lands, and which original lines it consumed.
type presentation struct {
	mod      text.Modification
	anchor   int
	injected []string
	replaced []string
	lines    []string // post-presentation line array
}

// byteOffset converts a document position to a byte offset into the joined
// content. A line index equal to the line count addresses the virtual empty
// line after a trailing terminator (end of buffer).
func byteOffset(lines []string, pos types.Pos) int {
	off := 0
	for i := 0; i < pos.Line && i < len(lines); i++ {
		off += len(lines[i])
	}
	if pos.Line >= len(lines) {
		return off
	}
	line := lines[pos.Line]
	content := text.TrimTerminator(line)
	col := text.ColumnClamp(line, pos.Character)
	return off + text.UTF16ToByteOffset(content, col)
}

// normalizeRange orders the range endpoints in document order.
func normalizeRange(r types.Range) types.Range {
	if r.End.Line < r.Start.Line ||
		(r.End.Line == r.Start.Line && r.End.Character < r.Start.Character) {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

// buildPresentation splices the candidate text into the original content at
// its target range and expresses the result as one Insert or Replace over
// whole lines. The splice is authoritative; the line-level modification is
// derived from it, which keeps the flat string and the line array in sync
// byte-for-byte.
func buildPresentation(lines []string, cand *types.CompletionCandidate) (*presentation, error) {
	r := normalizeRange(cand.Range)
	content := text.JoinLines(lines)
	startOff := byteOffset(lines, r.Start)
	endOff := byteOffset(lines, r.End)
	if endOff < startOff {
		endOff = startOff
	}

	newContent := content[:startOff] + cand.Text + content[endOff:]
	newLines := text.SplitLines(newContent)

	// Insertion at the very end of the buffer, after the final terminator:
	// everything past the original lines is the injected block.
	if startOff == len(content) && endOff == len(content) &&
		(content == "" || strings.HasSuffix(content, "\n")) {
		injected := newLines[len(lines):]
		return &presentation{
			mod:      text.Insert(len(lines), injected...),
			anchor:   len(lines),
			injected: injected,
			replaced: nil,
			lines:    newLines,
		}, nil
	}

	// Pure whole-line insertion before an existing line: the candidate
	// occupies complete lines of its own and no original line is touched.
	if r.IsEmpty() && r.Start.Character == 0 && strings.HasSuffix(cand.Text, "\n") &&
		r.Start.Line < len(lines) {
		injected := text.SplitLines(cand.Text)
		return &presentation{
			mod:      text.Insert(r.Start.Line, injected...),
			anchor:   r.Start.Line,
			injected: injected,
			replaced: nil,
			lines:    newLines,
		}, nil
	}

	// General case: the candidate merges with original line content, so the
	// affected whole-line span is replaced and the consumed original lines
	// are recorded for lossless rejection.
	firstLine := r.Start.Line
	if firstLine >= len(lines) {
		firstLine = len(lines) - 1
	}
	if firstLine < 0 {
		firstLine = 0
	}
	lastLineEx := r.End.Line + 1
	if lastLineEx > len(lines) {
		lastLineEx = len(lines)
	}
	if lastLineEx <= firstLine {
		lastLineEx = firstLine + 1
	}

	tail := len(lines) - lastLineEx
	injected := newLines[firstLine : len(newLines)-tail]
	replaced := make([]string, lastLineEx-firstLine)
	copy(replaced, lines[firstLine:lastLineEx])

	return &presentation{
		mod:      text.Replace(firstLine, lastLineEx, injected...),
		anchor:   firstLine,
		injected: injected,
		replaced: replaced,
		lines:    newLines,
	}, nil
}

// presentCursor applies the presentation cursor policy: positions at or
// before the anchor stay put, positions past the consumed span shift with
// the net line delta, and positions inside the consumed span stay where
// the user left them. Ghost text never traps typing.
func presentCursor(cursor types.Pos, p *presentation) types.Pos {
	replCount := len(p.replaced)
	delta := len(p.injected) - replCount
	switch {
	case cursor.Line < p.anchor:
		return cursor
	case cursor.Line >= p.anchor+replCount:
		cursor.Line += delta
		return cursor
	default:
		return cursor
	}
}

// rejectCursor applies the rejection relocation policy from the current
// cursor against the deleted block [anchor, anchor+injected).
func rejectCursor(cursor types.Pos, anchor, injectedCount, restoredCount, newLineCount int) types.Pos {
	switch {
	case cursor.Line < anchor:
		return cursor
	case cursor.Line >= anchor+injectedCount:
		cursor.Line -= injectedCount - restoredCount
		if cursor.Line < 0 {
			cursor.Line = 0
		}
		return cursor
	default:
		// Inside the ghost block: first surviving line, start of line.
		line := anchor
		if line > newLineCount-1 {
			line = newLineCount - 1
		}
		if line < 0 {
			line = 0
		}
		return types.Pos{Line: line, Character: 0}
	}
}
