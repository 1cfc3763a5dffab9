package engine

import (
	"sync"

	"ghosttab/types"
)

// PresentationState records one active presentation for a document. It is
// created by Present, replaced wholesale by a later Present, and destroyed
// by Accept or Reject. At most one instance exists per open document.
type PresentationState struct {
	// Candidates in display/cycle order; CurrentIndex is the rendered one.
	Candidates   []*types.CompletionCandidate
	CurrentIndex int

	// AnchorLine is the line index in the post-presentation buffer where
	// injected content begins; InjectedLineCount is how many lines the
	// rendered candidate occupies.
	AnchorLine        int
	InjectedLineCount int

	// ReplacedLines holds the original lines the presentation consumed.
	// Empty for pure whole-line insertions, where rejection is a plain
	// delete; otherwise rejection re-emits these to restore the original
	// bytes exactly.
	ReplacedLines []string
}

// SessionStore maps document identifiers to their presentation state.
// It is an explicit dependency of the engine rather than a hidden
// singleton. Map access is guarded; calls for any single document are
// serialized by the caller.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*PresentationState
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*PresentationState)}
}

// Get returns the presentation state for a document, or nil.
func (s *SessionStore) Get(doc string) *PresentationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[doc]
}

// Put replaces the presentation state for a document.
func (s *SessionStore) Put(doc string, st *PresentationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[doc] = st
}

// Clear removes the presentation state for a document.
func (s *SessionStore) Clear(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, doc)
}

// Len returns the number of documents with active presentations.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
