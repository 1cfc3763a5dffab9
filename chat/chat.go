// Package chat implements the streaming chat-completion client, a sibling
// of the suggestion engine that shares only the ChatMessage shape with it.
// Responses arrive as chunked SSE-style JSON deltas over HTTP.
package chat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ghosttab/logger"
	"ghosttab/types"
)

// Request is a chat completion request.
type Request struct {
	Model    string              `json:"model"`
	Messages []types.ChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

// StreamChunk is one SSE chunk of an in-progress assistant message.
type StreamChunk struct {
	ID      string `json:"id"`
	Choices []struct {
		Delta struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// DeltaFunc receives each incremental content delta as it arrives.
type DeltaFunc func(delta string)

// Client is an HTTP client for a chat-completion backend.
type Client struct {
	HTTPClient *http.Client
	URL        string
	Model      string
}

// NewClient creates a chat client for the given base URL.
func NewClient(url, model string) *Client {
	return &Client{
		HTTPClient: &http.Client{},
		URL:        strings.TrimSuffix(url, "/"),
		Model:      model,
	}
}

// Stream sends the conversation and accumulates the streamed assistant
// reply, invoking onDelta for every content fragment. The returned message
// carries the backend-assigned ID. Cancel via ctx.
func (c *Client) Stream(ctx context.Context, messages []types.ChatMessage, onDelta DeltaFunc) (*types.ChatMessage, error) {
	reqBody := &Request{Model: c.Model, Messages: messages, Stream: true}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(reqBody); err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.URL+"/v1/chat/completions", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return readStream(resp.Body, onDelta)
}

// readStream consumes SSE data lines until [DONE] or EOF, assembling the
// assistant message from the deltas.
func readStream(body io.Reader, onDelta DeltaFunc) (*types.ChatMessage, error) {
	msg := &types.ChatMessage{Role: "assistant"}
	var content strings.Builder

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if line == "data: [DONE]" {
			break
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var chunk StreamChunk
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			logger.Debug("chat stream: failed to parse chunk: %v", err)
			continue
		}

		if chunk.ID != "" {
			msg.ID = chunk.ID
		}
		if len(chunk.Choices) > 0 {
			delta := chunk.Choices[0].Delta
			if delta.Role != "" {
				msg.Role = delta.Role
			}
			if delta.Content != "" {
				content.WriteString(delta.Content)
				if onDelta != nil {
					onDelta(delta.Content)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("chat stream: %w", err)
	}

	msg.Content = content.String()
	return msg, nil
}
