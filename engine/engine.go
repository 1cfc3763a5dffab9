// Package engine implements the suggestion injection engine: presenting AI
// completion candidates as inline ghost lines over an editor snapshot,
// then committing, discarding, or cycling them while preserving exact
// buffer fidelity and deterministic cursor placement.
package engine

import (
	"fmt"

	"ghosttab/buffer"
	"ghosttab/logger"
	"ghosttab/text"
	"ghosttab/types"
)

// Result is the outcome of one engine operation: the full new document
// content with its line array, the ordered modification list that turns
// the input snapshot into it, and the recomputed cursor. A nil Result
// means there was nothing to do.
type Result struct {
	Content       string
	Lines         []string
	Modifications []text.Modification
	Cursor        types.Pos
}

// Engine drives the presentation lifecycle for any number of documents.
// All entry points are synchronous and run to completion; the caller
// serializes calls per document.
type Engine struct {
	sessions *SessionStore
}

// New creates an engine over an explicit session store.
func New(sessions *SessionStore) *Engine {
	return &Engine{sessions: sessions}
}

// State returns a copy of the active presentation state for a document.
func (e *Engine) State(doc string) (PresentationState, bool) {
	st := e.sessions.Get(doc)
	if st == nil {
		return PresentationState{}, false
	}
	return *st, true
}

// Present renders the first candidate inline and records the presentation.
// An empty candidate list, or a candidate that would change nothing, is a
// benign no-op returning a nil result with no state created. An existing
// presentation for the document is replaced wholesale.
func (e *Engine) Present(doc string, snap *types.EditorSnapshot, candidates []*types.CompletionCandidate) (*Result, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	return e.presentAt(doc, snap, candidates, 0)
}

func (e *Engine) presentAt(doc string, snap *types.EditorSnapshot, candidates []*types.CompletionCandidate, index int) (*Result, error) {
	buf := buffer.FromSnapshot(snap)

	p, err := buildPresentation(buf.Lines, candidates[index])
	if err != nil {
		return nil, err
	}
	if len(p.injected) == 0 && len(p.replaced) == 0 {
		return nil, nil
	}

	newLines, err := text.Apply(buf.Lines, []text.Modification{p.mod})
	if err != nil {
		return nil, fmt.Errorf("present: %w", err)
	}

	content := text.JoinLines(newLines)
	if content == buf.Content() {
		return nil, nil
	}

	cursor := presentCursor(snap.Cursor, p)

	// Commit only after the full result is computed.
	e.sessions.Put(doc, &PresentationState{
		Candidates:        candidates,
		CurrentIndex:      index,
		AnchorLine:        p.anchor,
		InjectedLineCount: len(p.injected),
		ReplacedLines:     p.replaced,
	})

	logger.Debug("present %s: candidate %d/%d anchor=%d injected=%d replaced=%d",
		doc, index+1, len(candidates), p.anchor, len(p.injected), len(p.replaced))

	return &Result{
		Content:       content,
		Lines:         newLines,
		Modifications: []text.Modification{p.mod},
		Cursor:        cursor,
	}, nil
}

// Reject discards the active presentation, restoring the pre-presentation
// text byte-for-byte and relocating the cursor. All pending candidates for
// the document are dropped. Without an active presentation it is a benign
// no-op returning a nil result.
func (e *Engine) Reject(doc string, snap *types.EditorSnapshot) (*Result, error) {
	st := e.sessions.Get(doc)
	if st == nil {
		return nil, nil
	}

	buf := buffer.FromSnapshot(snap)
	mod := rejectModification(st, len(buf.Lines))

	newLines, err := text.Apply(buf.Lines, []text.Modification{mod})
	if err != nil {
		return nil, fmt.Errorf("reject: %w", err)
	}

	cursor := rejectCursor(snap.Cursor, st.AnchorLine, st.InjectedLineCount, len(st.ReplacedLines), len(newLines))

	e.sessions.Clear(doc)

	logger.Debug("reject %s: anchor=%d injected=%d", doc, st.AnchorLine, st.InjectedLineCount)

	return &Result{
		Content:       text.JoinLines(newLines),
		Lines:         newLines,
		Modifications: []text.Modification{mod},
		Cursor:        cursor,
	}, nil
}

// rejectModification builds the single modification that strips the
// injected block from the current buffer: a plain delete when the block
// consumed no original lines, otherwise a replace that re-emits them.
func rejectModification(st *PresentationState, lineCount int) text.Modification {
	end := st.AnchorLine + st.InjectedLineCount
	if end > lineCount {
		end = lineCount
	}
	start := st.AnchorLine
	if start > end {
		start = end
	}
	if len(st.ReplacedLines) == 0 {
		return text.Delete(start, end)
	}
	return text.Replace(start, end, st.ReplacedLines...)
}

// Accept commits the rendered candidate as real text. The buffer already
// shows the suggestion, so the modification list is empty; the cursor
// moves to the end of the inserted text and the presentation is cleared.
// Without an active presentation it is a benign no-op.
func (e *Engine) Accept(doc string, snap *types.EditorSnapshot) (*Result, error) {
	st := e.sessions.Get(doc)
	if st == nil {
		return nil, nil
	}

	buf := buffer.FromSnapshot(snap)

	cursor := snap.Cursor
	lastLine := st.AnchorLine + st.InjectedLineCount - 1
	if lastLine >= 0 {
		if lastLine > len(buf.Lines)-1 {
			lastLine = len(buf.Lines) - 1
		}
		cursor = types.Pos{
			Line:      lastLine,
			Character: text.UTF16Len(text.TrimTerminator(buf.Line(lastLine))),
		}
	}

	e.sessions.Clear(doc)

	logger.Debug("accept %s: candidate %d/%d", doc, st.CurrentIndex+1, len(st.Candidates))

	return &Result{
		Content:       buf.Content(),
		Lines:         buf.Lines,
		Modifications: nil,
		Cursor:        cursor,
	}, nil
}

// Cycle re-renders the presentation with the next (delta > 0) or previous
// (delta < 0) candidate, wrapping around. Internally it is a rejection of
// the current rendering followed by a presentation of the new candidate at
// the same anchor; the two steps are emitted as one replace so the caller
// applies a single patch. Without an active presentation it is a benign
// no-op.
func (e *Engine) Cycle(doc string, snap *types.EditorSnapshot, delta int) (*Result, error) {
	st := e.sessions.Get(doc)
	if st == nil {
		return nil, nil
	}
	count := len(st.Candidates)
	if count == 0 {
		e.sessions.Clear(doc)
		return nil, nil
	}
	newIndex := ((st.CurrentIndex+delta)%count + count) % count

	buf := buffer.FromSnapshot(snap)

	// Step 1: strip the current rendering.
	rejectMod := rejectModification(st, len(buf.Lines))
	restored, err := text.Apply(buf.Lines, []text.Modification{rejectMod})
	if err != nil {
		return nil, fmt.Errorf("cycle: %w", err)
	}
	cursor := rejectCursor(snap.Cursor, st.AnchorLine, st.InjectedLineCount, len(st.ReplacedLines), len(restored))

	// Step 2: present the new candidate against the restored buffer.
	p, err := buildPresentation(restored, st.Candidates[newIndex])
	if err != nil {
		return nil, err
	}
	presented, err := text.Apply(restored, []text.Modification{p.mod})
	if err != nil {
		return nil, fmt.Errorf("cycle: %w", err)
	}
	cursor = presentCursor(cursor, p)

	// Collapse both steps into a single replace over the current snapshot.
	// The touched span is computed in restored-buffer coordinates, where it
	// must cover both the old block's consumed extent and the new
	// candidate's; its end then maps back through the step-1 length change.
	// The two candidates need not consume the same lines.
	oldExtent := rejectMod.Range.Start + len(st.ReplacedLines)
	newExtent := p.anchor + len(p.replaced)
	spanStart := rejectMod.Range.Start
	if p.anchor < spanStart {
		spanStart = p.anchor
	}
	spanEnd := oldExtent
	if newExtent > spanEnd {
		spanEnd = newExtent
	}
	tail := len(restored) - spanEnd
	segment := presented[spanStart : len(presented)-tail]
	snapEnd := spanEnd + rejectMod.Range.Len() - len(st.ReplacedLines)
	mod := text.Replace(spanStart, snapEnd, segment...)

	e.sessions.Put(doc, &PresentationState{
		Candidates:        st.Candidates,
		CurrentIndex:      newIndex,
		AnchorLine:        p.anchor,
		InjectedLineCount: len(p.injected),
		ReplacedLines:     p.replaced,
	})

	logger.Debug("cycle %s: candidate %d/%d anchor=%d", doc, newIndex+1, count, p.anchor)

	return &Result{
		Content:       text.JoinLines(presented),
		Lines:         presented,
		Modifications: []text.Modification{mod},
		Cursor:        cursor,
	}, nil
}
