package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ghosttab/assert"
	"ghosttab/types"

	"github.com/andybalholm/brotli"
)

func testConfig(url string) *types.ProviderConfig {
	return &types.ProviderConfig{
		ProviderURL:   url,
		APIKey:        "test-token",
		ProviderModel: "tab-1",
	}
}

func TestGetCompletions(t *testing.T) {
	var received CompletionAPIRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/completions", r.URL.Path, "path")
		assert.Equal(t, "br", r.Header.Get("Content-Encoding"), "brotli encoding")
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"), "auth header")

		err := json.NewDecoder(brotli.NewReader(r.Body)).Decode(&received)
		assert.NoError(t, err, "decoding compressed body")

		resp := CompletionAPIResponse{RequestID: "req-1"}
		var wc wireCandidate
		wc.Text = "world\n"
		wc.Range.Start = wirePos{Line: 1, Character: 0}
		wc.Range.End = wirePos{Line: 1, Character: 0}
		resp.Candidates = append(resp.Candidates, wc)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p, err := NewHTTPProvider(testConfig(server.URL))
	assert.NoError(t, err, "creating provider")

	candidates, err := p.GetCompletions(context.Background(), &types.CompletionRequest{
		WorkspacePath: "/work/repo",
		FilePath:      "main.go",
		Lines:         []string{"hello\n"},
		Cursor:        types.Pos{Line: 0, Character: 5},
		DiffHistory:   []*types.DiffEntry{{Original: "old", Updated: "new"}},
	})
	assert.NoError(t, err, "getting completions")

	assert.Equal(t, "/work/repo", received.RepoName, "repo name")
	assert.Equal(t, "main.go", received.FilePath, "file path")
	assert.Equal(t, "hello\n", received.FileContents, "file contents")
	assert.Equal(t, 0, received.CursorLine, "cursor line")
	assert.Equal(t, 5, received.CursorCharacter, "cursor character")
	assert.Equal(t, "tab-1", received.Model, "model")
	assert.Len(t, received.RecentChanges, 1, "recent changes forwarded")
	assert.Equal(t, "old", received.RecentChanges[0].Original, "change original")

	assert.Len(t, candidates, 1, "candidates")
	assert.Equal(t, "world\n", candidates[0].Text, "candidate text")
	assert.Equal(t, 1, candidates[0].Range.Start.Line, "candidate line")
}

func TestGetCompletionsMapsTrimmedRanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CompletionAPIRequest
		err := json.NewDecoder(brotli.NewReader(r.Body)).Decode(&req)
		assert.NoError(t, err, "decoding compressed body")

		// Echo a candidate at the trimmed cursor line; after mapping it
		// must land back on the document cursor line.
		resp := CompletionAPIResponse{RequestID: "req-2"}
		var wc wireCandidate
		wc.Text = "x\n"
		wc.Range.Start = wirePos{Line: req.CursorLine}
		wc.Range.End = wirePos{Line: req.CursorLine}
		resp.Candidates = append(resp.Candidates, wc)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.MaxContextTokens = 10
	p, err := NewHTTPProvider(config)
	assert.NoError(t, err, "creating provider")

	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "some line of code\n"
	}

	candidates, err := p.GetCompletions(context.Background(), &types.CompletionRequest{
		FilePath: "big.go",
		Lines:    lines,
		Cursor:   types.Pos{Line: 20},
	})
	assert.NoError(t, err, "getting completions")
	assert.Len(t, candidates, 1, "candidates")
	assert.Equal(t, 20, candidates[0].Range.Start.Line, "range mapped back to document coordinates")
}

func TestGetCompletionsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	p, err := NewHTTPProvider(testConfig(server.URL))
	assert.NoError(t, err, "creating provider")

	_, err = p.GetCompletions(context.Background(), &types.CompletionRequest{
		Lines: []string{"a\n"},
	})
	assert.Error(t, err, "non-200 surfaces as error")
	assert.Contains(t, err.Error(), "500", "status in message")
}

func TestGetCompletionsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	p, err := NewHTTPProvider(testConfig(server.URL))
	assert.NoError(t, err, "creating provider")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.GetCompletions(ctx, &types.CompletionRequest{Lines: []string{"a\n"}})
	assert.Error(t, err, "canceled context surfaces as error")
}

func TestNewHTTPProviderRequiresURL(t *testing.T) {
	_, err := NewHTTPProvider(&types.ProviderConfig{})
	assert.Error(t, err, "missing URL rejected")
}
