package utils

// Token estimation constants
const (
	// AvgCharsPerToken is a conservative estimate for mixed content (code + JSON)
	AvgCharsPerToken = 2
)

// EstimateCharsFromTokens estimates the number of characters for a given token count
func EstimateCharsFromTokens(tokens int) int {
	return tokens * AvgCharsPerToken
}

// TrimContentAroundCursor trims lines to fit within maxTokens while keeping
// context both above and below the cursor. Returns the trimmed lines, the
// adjusted cursor row, the number of lines removed from the start, and
// whether trimming occurred.
func TrimContentAroundCursor(lines []string, cursorRow, maxTokens int) ([]string, int, int, bool) {
	if len(lines) == 0 {
		return lines, 0, 0, false
	}

	if cursorRow < 0 {
		cursorRow = 0
	}
	if cursorRow >= len(lines) {
		cursorRow = len(lines) - 1
	}

	if maxTokens <= 0 {
		return lines, cursorRow, 0, false
	}

	maxChars := EstimateCharsFromTokens(maxTokens)

	// Lines carry their own terminators, so len(line) is the full cost.
	totalChars := 0
	for _, line := range lines {
		totalChars += len(line)
	}
	if totalChars <= maxChars {
		return lines, cursorRow, 0, false
	}

	// Split the budget: half above the cursor, half below, spilling any
	// unused half to the other side.
	cursorLineChars := len(lines[cursorRow])
	halfBudget := (maxChars - cursorLineChars) / 2

	startLine := cursorRow
	charsBefore := 0
	for startLine > 0 {
		newChars := len(lines[startLine-1])
		if charsBefore+newChars > halfBudget {
			break
		}
		startLine--
		charsBefore += newChars
	}

	budgetAfter := halfBudget + (halfBudget - charsBefore)
	endLine := cursorRow
	charsAfter := 0
	for endLine < len(lines)-1 {
		newChars := len(lines[endLine+1])
		if charsAfter+newChars > budgetAfter {
			break
		}
		endLine++
		charsAfter += newChars
	}

	unusedAfter := budgetAfter - charsAfter
	for startLine > 0 && unusedAfter > 0 {
		newChars := len(lines[startLine-1])
		if charsBefore+newChars > halfBudget+unusedAfter {
			break
		}
		startLine--
		charsBefore += newChars
	}

	trimmed := make([]string, endLine-startLine+1)
	copy(trimmed, lines[startLine:endLine+1])

	return trimmed, cursorRow - startLine, startLine, true
}

// DiffEntry is the interface for token limiting, matching types.DiffEntry.
type DiffEntry interface {
	GetOriginal() string
	GetUpdated() string
}

// TrimDiffEntries trims diff entries to fit within maxTokens, keeping the
// most recent entries.
func TrimDiffEntries[T DiffEntry](diffs []T, maxTokens int) []T {
	if len(diffs) == 0 || maxTokens <= 0 {
		return diffs
	}

	maxChars := EstimateCharsFromTokens(maxTokens)

	totalChars := 0
	cutoffIndex := 0
	for i := len(diffs) - 1; i >= 0; i-- {
		entryChars := len(diffs[i].GetOriginal()) + len(diffs[i].GetUpdated())
		if totalChars+entryChars > maxChars && i < len(diffs)-1 {
			cutoffIndex = i + 1
			break
		}
		totalChars += entryChars
	}

	if cutoffIndex > 0 {
		return diffs[cutoffIndex:]
	}
	return diffs
}
