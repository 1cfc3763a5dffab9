package engine

import (
	"testing"

	"ghosttab/assert"
)

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	assert.Equal(t, 0, store.Len(), "empty store")
	assert.Nil(t, store.Get("a.go"), "missing document")

	store.Put("a.go", &PresentationState{AnchorLine: 3})
	store.Put("b.go", &PresentationState{AnchorLine: 7})
	assert.Equal(t, 2, store.Len(), "two documents")
	assert.Equal(t, 3, store.Get("a.go").AnchorLine, "stored state")

	store.Put("a.go", &PresentationState{AnchorLine: 5})
	assert.Equal(t, 5, store.Get("a.go").AnchorLine, "replaced wholesale")
	assert.Equal(t, 2, store.Len(), "replace keeps count")

	store.Clear("a.go")
	assert.Nil(t, store.Get("a.go"), "cleared")
	assert.Equal(t, 1, store.Len(), "other document unaffected")

	store.Clear("missing.go")
	assert.Equal(t, 1, store.Len(), "clearing a missing document is harmless")
}
