// Package provider implements the completion fetch collaborator: an HTTP
// client that turns an editor snapshot into ranked completion candidates.
// The engine never sees this package; it only reads delivered candidates.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ghosttab/logger"
	"ghosttab/types"
	"ghosttab/utils"

	"github.com/andybalholm/brotli"
)

// CompletionAPIRequest is the wire format sent to the completion backend.
type CompletionAPIRequest struct {
	RepoName        string   `json:"repo_name"`
	FilePath        string   `json:"file_path"`
	FileContents    string   `json:"file_contents"`
	CursorLine      int      `json:"cursor_line"`      // 0-indexed, relative to FileContents
	CursorCharacter int      `json:"cursor_character"` // UTF-16 code units
	RecentChanges   []change `json:"recent_changes,omitempty"`
	Model           string   `json:"model,omitempty"`
	MaxCandidates   int      `json:"max_candidates,omitempty"`
}

type change struct {
	Original string `json:"original"`
	Updated  string `json:"updated"`
}

// CompletionAPIResponse is the wire format returned by the backend.
type CompletionAPIResponse struct {
	RequestID  string          `json:"request_id"`
	Candidates []wireCandidate `json:"candidates"`
}

type wireCandidate struct {
	Text  string `json:"text"`
	Range struct {
		Start wirePos `json:"start"`
		End   wirePos `json:"end"`
	} `json:"range"`
}

type wirePos struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// HTTPProvider fetches completion candidates from an HTTP backend. Request
// bodies are JSON compressed with brotli (quality 1 for speed).
type HTTPProvider struct {
	HTTPClient *http.Client
	URL        string
	AuthToken  string
	Model      string

	maxContextTokens int
	maxCandidates    int
}

var _ types.Provider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a provider from configuration.
func NewHTTPProvider(config *types.ProviderConfig) (*HTTPProvider, error) {
	if config.ProviderURL == "" {
		return nil, fmt.Errorf("provider: URL is required")
	}

	timeout := time.Duration(0)
	if config.CompletionTimeout > 0 {
		timeout = time.Duration(config.CompletionTimeout) * time.Millisecond
	}

	return &HTTPProvider{
		HTTPClient:       &http.Client{Timeout: timeout},
		URL:              strings.TrimSuffix(config.ProviderURL, "/"),
		AuthToken:        config.APIKey,
		Model:            config.ProviderModel,
		maxContextTokens: config.MaxContextTokens,
		maxCandidates:    config.MaxCandidates,
	}, nil
}

// GetCompletions implements types.Provider. Cancellation is by context;
// once candidates are returned they are never revoked.
func (p *HTTPProvider) GetCompletions(ctx context.Context, req *types.CompletionRequest) ([]*types.CompletionCandidate, error) {
	defer logger.Trace("provider.GetCompletions")()

	apiReq, trimOffset := p.buildRequest(req)

	apiResp, err := p.doCompletion(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	candidates := make([]*types.CompletionCandidate, 0, len(apiResp.Candidates))
	for _, wc := range apiResp.Candidates {
		candidates = append(candidates, &types.CompletionCandidate{
			Text: wc.Text,
			Range: types.Range{
				Start: types.Pos{Line: wc.Range.Start.Line + trimOffset, Character: wc.Range.Start.Character},
				End:   types.Pos{Line: wc.Range.End.Line + trimOffset, Character: wc.Range.End.Character},
			},
		})
	}

	logger.Debug("provider: %d candidates for %s (request %s)",
		len(candidates), req.FilePath, apiResp.RequestID)

	return candidates, nil
}

// buildRequest trims the file around the cursor to the token budget and
// assembles the wire request. Returns the line offset removed from the
// start so candidate ranges can be mapped back to document coordinates.
func (p *HTTPProvider) buildRequest(req *types.CompletionRequest) (*CompletionAPIRequest, int) {
	lines, cursorRow, trimOffset, trimmed := utils.TrimContentAroundCursor(
		req.Lines, req.Cursor.Line, p.maxContextTokens)
	if trimmed {
		logger.Debug("provider: trimmed context to %d lines (offset %d)", len(lines), trimOffset)
	}

	var changes []change
	diffs := utils.TrimDiffEntries(req.DiffHistory, p.maxContextTokens/2)
	for _, d := range diffs {
		changes = append(changes, change{Original: d.Original, Updated: d.Updated})
	}

	return &CompletionAPIRequest{
		RepoName:        req.WorkspacePath,
		FilePath:        req.FilePath,
		FileContents:    strings.Join(lines, ""),
		CursorLine:      cursorRow,
		CursorCharacter: req.Cursor.Character,
		RecentChanges:   changes,
		Model:           p.Model,
		MaxCandidates:   p.maxCandidates,
	}, trimOffset
}

// doCompletion sends one compressed completion request.
func (p *HTTPProvider) doCompletion(ctx context.Context, req *CompletionAPIRequest) (*CompletionAPIResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var compressed bytes.Buffer
	bw := brotli.NewWriterLevel(&compressed, 1)
	if _, err := bw.Write(jsonData); err != nil {
		return nil, fmt.Errorf("failed to compress request: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.URL+"/completions", &compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Content-Encoding", "br")
	if p.AuthToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.AuthToken)
	}

	resp, err := p.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("completion request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp CompletionAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &apiResp, nil
}
