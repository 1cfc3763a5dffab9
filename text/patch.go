package text

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPatch is returned when a modification list is overlapping,
// unsorted, or out of bounds. The input lines are never partially patched.
var ErrMalformedPatch = errors.New("malformed patch")

// ModKind discriminates the Modification variants.
type ModKind int

const (
	ModInsert ModKind = iota
	ModDelete
	ModReplace
)

// String returns a human-readable name for the kind
func (k ModKind) String() string {
	switch k {
	case ModInsert:
		return "insert"
	case ModDelete:
		return "delete"
	case ModReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// LineRange is a half-open range [Start, End) of 0-indexed line indices.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of lines covered by the range.
func (r LineRange) Len() int {
	return r.End - r.Start
}

// Modification is a primitive line-edit operation. Ranges always refer to
// the original, pre-modification line indices; Apply is responsible for
// offsetting later operations as earlier ones change the line count.
//
//   - ModInsert inserts Lines before index Range.Start (Range.End == Range.Start).
//   - ModDelete removes the lines in Range.
//   - ModReplace removes the lines in Range and inserts Lines in their place.
type Modification struct {
	Kind  ModKind   `json:"kind"`
	Range LineRange `json:"range"`
	Lines []string  `json:"lines,omitempty"`
}

// Insert builds a modification inserting lines before index at.
func Insert(at int, lines ...string) Modification {
	return Modification{Kind: ModInsert, Range: LineRange{Start: at, End: at}, Lines: lines}
}

// Delete builds a modification removing the lines in [start, end).
func Delete(start, end int) Modification {
	return Modification{Kind: ModDelete, Range: LineRange{Start: start, End: end}}
}

// Replace builds a modification replacing the lines in [start, end) with lines.
func Replace(start, end int, lines ...string) Modification {
	return Modification{Kind: ModReplace, Range: LineRange{Start: start, End: end}, Lines: lines}
}

// validate checks that the modification list is sorted, pairwise
// non-overlapping, and in bounds for a buffer of lineCount lines.
func validate(lineCount int, mods []Modification) error {
	prevEnd := 0
	for i, m := range mods {
		r := m.Range
		if r.Start < 0 || r.End < r.Start {
			return fmt.Errorf("%w: modification %d has invalid range [%d,%d)", ErrMalformedPatch, i, r.Start, r.End)
		}
		if m.Kind == ModInsert && r.End != r.Start {
			return fmt.Errorf("%w: modification %d is an insert with non-empty range [%d,%d)", ErrMalformedPatch, i, r.Start, r.End)
		}
		if r.End > lineCount || r.Start > lineCount {
			return fmt.Errorf("%w: modification %d range [%d,%d) exceeds %d lines", ErrMalformedPatch, i, r.Start, r.End, lineCount)
		}
		if i > 0 && r.Start < prevEnd {
			return fmt.Errorf("%w: modification %d range [%d,%d) overlaps previous end %d", ErrMalformedPatch, i, r.Start, r.End, prevEnd)
		}
		prevEnd = r.End
	}
	return nil
}

// Apply patches lines with an ordered modification list and returns the new
// line array. It walks the original lines once, copying unmodified spans and
// emitting each modification's effect in turn, so callers never pre-adjust
// indices for earlier operations. The input slice is not mutated.
func Apply(lines []string, mods []Modification) ([]string, error) {
	if err := validate(len(lines), mods); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(lines))
	pos := 0
	for _, m := range mods {
		out = append(out, lines[pos:m.Range.Start]...)
		switch m.Kind {
		case ModInsert:
			out = append(out, m.Lines...)
		case ModDelete:
			// skip deleted lines
		case ModReplace:
			out = append(out, m.Lines...)
		}
		pos = m.Range.End
	}
	out = append(out, lines[pos:]...)
	return out, nil
}

// LineDelta returns the net line count change of applying mods.
func LineDelta(mods []Modification) int {
	delta := 0
	for _, m := range mods {
		delta += len(m.Lines) - m.Range.Len()
	}
	return delta
}

// SplitLines splits content into lines, each retaining its trailing
// terminator. The last line has no terminator when content does not end
// with one. JoinLines(SplitLines(s)) == s for every s.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	var lines []string
	for {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			lines = append(lines, content)
			return lines
		}
		lines = append(lines, content[:idx+1])
		content = content[idx+1:]
		if content == "" {
			return lines
		}
	}
}

// JoinLines is the exact inverse of SplitLines: a plain concatenation.
func JoinLines(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
	}
	return b.String()
}

// TrimTerminator returns the line content without its trailing terminator.
func TrimTerminator(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Terminator returns the trailing terminator of line, or "".
func Terminator(line string) string {
	return line[len(TrimTerminator(line)):]
}
