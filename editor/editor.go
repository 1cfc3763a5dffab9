// Package editor is the Neovim integration layer. It snapshots buffer
// state into the engine's editor-agnostic form and applies engine results
// back through batched RPC calls. It owns no data-integrity contract of
// its own; the engine's modification lists drive every buffer write.
package editor

import (
	"path/filepath"
	"strings"

	"ghosttab/engine"
	"ghosttab/logger"
	"ghosttab/text"
	"ghosttab/types"

	"github.com/neovim/go-client/nvim"
)

// Config holds editor-side settings.
type Config struct {
	NsID int // extmark namespace for ghost-text highlights
}

// Editor wraps one Neovim connection and tracks the current buffer.
type Editor struct {
	n      *nvim.Nvim
	id     nvim.Buffer
	config Config

	// Path is the workspace-relative path of the current buffer.
	Path    string
	Version int
}

// New creates an Editor over an established Neovim connection.
func New(n *nvim.Nvim, config Config) *Editor {
	return &Editor{n: n, config: config}
}

// SyncInResult reports whether SyncIn landed on a different buffer.
type SyncInResult struct {
	BufferChanged bool
	OldPath       string
	NewPath       string
}

// SyncIn reads the current buffer, cursor, and options in a single RPC
// round-trip and returns an editor snapshot in engine coordinates
// (0-indexed lines, UTF-16 columns, terminator-retaining line array).
func (ed *Editor) SyncIn(workspacePath string) (*types.EditorSnapshot, *SyncInResult, error) {
	batch := ed.n.NewBatch()

	var currentBuf nvim.Buffer
	var path string
	var rawLines [][]byte
	var cursor [2]int
	var tabstop, shiftwidth int
	var expandtab bool

	batch.CurrentBuffer(&currentBuf)
	batch.BufferName(nvim.Buffer(0), &path)
	batch.BufferLines(nvim.Buffer(0), 0, -1, false, &rawLines)
	batch.WindowCursor(nvim.Window(0), &cursor)
	batch.BufferOption(nvim.Buffer(0), "tabstop", &tabstop)
	batch.BufferOption(nvim.Buffer(0), "shiftwidth", &shiftwidth)
	batch.BufferOption(nvim.Buffer(0), "expandtab", &expandtab)

	if err := batch.Execute(); err != nil {
		return nil, nil, err
	}

	// Neovim lines carry no terminators; every line is conceptually
	// newline-terminated in the buffer.
	lines := make([]string, len(rawLines))
	for i, raw := range rawLines {
		lines[i] = string(raw) + "\n"
	}

	cursorLine := cursor[0] - 1 // nvim rows are 1-indexed
	var cursorChar int
	if cursorLine >= 0 && cursorLine < len(lines) {
		cursorChar = text.ByteToUTF16Offset(text.TrimTerminator(lines[cursorLine]), cursor[1])
	}

	oldPath := ed.Path
	relativePath := makeRelativeToWorkspace(path, workspacePath)
	ed.Path = relativePath

	result := &SyncInResult{OldPath: oldPath, NewPath: relativePath}
	if ed.id != currentBuf {
		ed.id = currentBuf
		ed.Version = 0
		result.BufferChanged = true
	}

	return &types.EditorSnapshot{
		Content:    text.JoinLines(lines),
		Lines:      lines,
		Cursor:     types.Pos{Line: cursorLine, Character: cursorChar},
		TabSize:    tabstop,
		IndentSize: shiftwidth,
		UseTabs:    !expandtab,
	}, result, nil
}

// ApplyResult writes an engine result into the buffer: each modification
// maps directly to one SetBufferLines call (both use 0-indexed half-open
// line ranges), followed by a cursor move. Executed as one batch.
func (ed *Editor) ApplyResult(res *engine.Result) error {
	if res == nil {
		return nil
	}

	batch := ed.n.NewBatch()
	batch.ClearBufferNamespace(ed.id, ed.config.NsID, 0, -1)

	for _, mod := range res.Modifications {
		replacement := make([][]byte, len(mod.Lines))
		for i, line := range mod.Lines {
			replacement[i] = []byte(text.TrimTerminator(line))
		}
		batch.SetBufferLines(ed.id, mod.Range.Start, mod.Range.End, false, replacement)
	}

	ed.applyCursor(batch, res)

	if err := batch.Execute(); err != nil {
		return err
	}
	ed.Version++
	return nil
}

func (ed *Editor) applyCursor(batch *nvim.Batch, res *engine.Result) {
	line := res.Cursor.Line
	if line > len(res.Lines)-1 {
		line = len(res.Lines) - 1
	}
	if line < 0 {
		return
	}
	content := text.TrimTerminator(res.Lines[line])
	col := text.UTF16ToByteOffset(content, res.Cursor.Character)
	batch.SetWindowCursor(nvim.Window(0), [2]int{line + 1, col})
}

// NotifyPresented tells the plugin side to render ghost-text highlights
// over the injected block.
func (ed *Editor) NotifyPresented(anchorLine, injectedCount, index, total int) {
	ed.execLua("require('ghosttab').on_suggestion(...)",
		anchorLine+1, injectedCount, index+1, total)
}

// NotifyCleared tells the plugin side to drop suggestion UI state.
func (ed *Editor) NotifyCleared() {
	ed.execLua("require('ghosttab').on_clear()")
}

func (ed *Editor) execLua(code string, args ...any) {
	batch := ed.n.NewBatch()
	if len(args) > 0 {
		batch.ExecLua(code, nil, args...)
	} else {
		batch.ExecLua(code, nil, nil)
	}
	if err := batch.Execute(); err != nil {
		logger.Error("error executing lua function: %v", err)
	}
}

// makeRelativeToWorkspace converts an absolute path to a workspace-relative one.
func makeRelativeToWorkspace(absolutePath, workspacePath string) string {
	absolutePath = filepath.Clean(absolutePath)
	workspacePath = filepath.Clean(workspacePath)

	if relativePath, found := strings.CutPrefix(absolutePath, workspacePath); found {
		return strings.TrimPrefix(relativePath, string(filepath.Separator))
	}
	return absolutePath
}
