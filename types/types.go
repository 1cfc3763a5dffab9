package types

import "context"

// Pos is a cursor position in an editor document.
// Line is a 0-indexed line index; Character is a UTF-16 code unit offset
// within that line (the convention used by the editor protocol).
type Pos struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a pair of positions in the original document. A zero-width
// range (Start == End) denotes a pure insertion point.
type Range struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// IsEmpty reports whether the range is zero-width.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Selection is one editor selection, start to end in document order.
type Selection struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// CompletionCandidate is one proposed suggestion: replacement text plus
// the range in the original, pre-presentation document it targets.
// Owned by the fetch collaborator; the engine only reads it.
type CompletionCandidate struct {
	Text  string `json:"text"`
	Range Range  `json:"range"`
}

// EditorSnapshot is the editor state handed to the engine on every call.
// Lines each retain their own line terminator except possibly the last,
// and joining Lines must reproduce Content exactly.
type EditorSnapshot struct {
	Content    string
	Lines      []string
	Cursor     Pos
	Selections []Selection
	TabSize    int
	IndentSize int
	UseTabs    bool
}

// ChatMessage is the shape shared with the streaming chat subsystem.
type ChatMessage struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DiffEntry is a single recorded edit with structured before/after content.
type DiffEntry struct {
	// Original is the content before the change (the text that was replaced or deleted)
	Original string
	// Updated is the content after the change (the new text)
	Updated string
}

// GetOriginal returns the original content (implements utils.DiffEntry)
func (d *DiffEntry) GetOriginal() string { return d.Original }

// GetUpdated returns the updated content (implements utils.DiffEntry)
func (d *DiffEntry) GetUpdated() string { return d.Updated }

// CompletionRequest carries the context a provider needs to produce candidates.
type CompletionRequest struct {
	WorkspacePath string
	WorkspaceID   string
	FilePath      string
	Lines         []string
	Version       int
	// DiffHistory is the recent-edit history for the current file
	DiffHistory []*DiffEntry
	Cursor      Pos
}

// Provider produces completion candidates for an editor snapshot.
// Cancellation is by context only; delivered candidates are never revoked.
type Provider interface {
	GetCompletions(ctx context.Context, req *CompletionRequest) ([]*CompletionCandidate, error)
}

// ProviderConfig holds configuration for completion providers.
type ProviderConfig struct {
	ProviderURL       string // URL of the completion backend
	APIKey            string // Bearer token for authenticated requests
	ProviderModel     string // Model name
	MaxContextTokens  int    // Budget for trimming file content around the cursor (0 = no limit)
	CompletionTimeout int    // Timeout for completion requests in milliseconds
	MaxCandidates     int    // Cap on candidates returned (0 = provider default)
}
