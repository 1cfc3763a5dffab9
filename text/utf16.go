package text

// Cursor columns arrive as UTF-16 code unit offsets (editor protocol
// convention); splicing needs byte offsets into the Go string.

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r > 0xFFFF {
			n++ // surrogate pair
		}
	}
	return n
}

// UTF16ToByteOffset converts a UTF-16 code unit offset into a byte offset
// into s. Offsets past the end of s clamp to len(s); an offset landing in
// the middle of a surrogate pair snaps forward to the next rune boundary.
func UTF16ToByteOffset(s string, units int) int {
	if units <= 0 {
		return 0
	}
	n := 0
	for i, r := range s {
		if n >= units {
			return i
		}
		n++
		if r > 0xFFFF {
			n++
		}
	}
	return len(s)
}

// ByteToUTF16Offset converts a byte offset into s to UTF-16 code units.
// Offsets beyond s clamp to the full length.
func ByteToUTF16Offset(s string, bytes int) int {
	if bytes <= 0 {
		return 0
	}
	if bytes > len(s) {
		bytes = len(s)
	}
	return UTF16Len(s[:bytes])
}

// ColumnClamp clamps a UTF-16 column to the content of line (terminator
// excluded) and reports the clamped value.
func ColumnClamp(line string, col int) int {
	maxCol := UTF16Len(TrimTerminator(line))
	if col > maxCol {
		return maxCol
	}
	if col < 0 {
		return 0
	}
	return col
}
