package text

import (
	"strings"

	"ghosttab/types"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ExtractDiffEntries analyzes old and new lines and returns a DiffEntry for
// each contiguous region that changed. Unchanged context is never stored,
// so the recent-edit history handed to providers stays small even when an
// accept replaced a large window with only a few modified lines.
func ExtractDiffEntries(oldLines, newLines []string) []*types.DiffEntry {
	oldText := JoinLines(oldLines)
	newText := JoinLines(newLines)

	if oldText == newText {
		return nil
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(chars1, chars2, false)
	lineDiffs := dmp.DiffCharsToLines(diffs, lineArray)

	var entries []*types.DiffEntry

	for i := 0; i < len(lineDiffs); i++ {
		diff := lineDiffs[i]

		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			continue

		case diffmatchpatch.DiffDelete:
			deletedText := strings.TrimSuffix(diff.Text, "\n")
			insertedText := ""

			// A delete immediately followed by an insert is one modification
			if i+1 < len(lineDiffs) && lineDiffs[i+1].Type == diffmatchpatch.DiffInsert {
				insertedText = strings.TrimSuffix(lineDiffs[i+1].Text, "\n")
				i++
			}

			entries = append(entries, &types.DiffEntry{
				Original: deletedText,
				Updated:  insertedText,
			})

		case diffmatchpatch.DiffInsert:
			insertedText := strings.TrimSuffix(diff.Text, "\n")
			entries = append(entries, &types.DiffEntry{
				Original: "",
				Updated:  insertedText,
			})
		}
	}

	return entries
}
