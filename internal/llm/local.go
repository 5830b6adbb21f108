package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// LocalClient calls an Ollama-style chat API at {base_url}/api/chat.
type LocalClient struct {
	cfg   Config
	httpc *http.Client
}

// NewLocalClient builds a client for a locally hosted model server.
func NewLocalClient(cfg Config) *LocalClient {
	return &LocalClient{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}
}

type localChatReq struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  localOptions  `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type localOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type localChatResp struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	EvalCount int `json:"eval_count"`
}

// Generate sends one system and one user message and returns the completed
// text. Any transport failure surfaces as a single wrapped error; there are
// no retries.
func (c *LocalClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (Response, error) {
	reqBody := localChatReq{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
		Options: localOptions{
			NumPredict:  c.cfg.MaxTokens,
			Temperature: c.cfg.Temperature,
		},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("local chat request failed: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Response{}, fmt.Errorf("local chat request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("local chat request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Response{}, fmt.Errorf("local chat request failed: unexpected status %s: %s", resp.Status, string(body))
	}

	var out localChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("local chat request failed: %w", err)
	}

	return Response{
		Content:    out.Message.Content,
		Model:      c.cfg.Model,
		TokensUsed: out.EvalCount,
		Provider:   ProviderLocal,
	}, nil
}

// Close releases the idle HTTP connections held by the client.
func (c *LocalClient) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}
