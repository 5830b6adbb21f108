package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls an OpenAI-compatible chat completions API. The base URL
// may point at api.openai.com or at any server speaking the same protocol.
type OpenAIClient struct {
	cfg    Config
	httpc  *http.Client
	client *openai.Client
}

// NewOpenAIClient builds a client against {base_url}/v1/chat/completions
// with bearer-token auth. The API key may be empty for servers that do not
// check it.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	httpc := &http.Client{Timeout: cfg.Timeout}
	cli := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		// The SDK resolves endpoint paths relative to the base URL, so the
		// trailing /v1/ segment is required.
		option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/v1/"),
		option.WithHTTPClient(httpc),
		option.WithMaxRetries(0),
	)
	return &OpenAIClient{
		cfg:    cfg,
		httpc:  httpc,
		client: &cli,
	}
}

// Generate sends one system and one user message and returns the completed
// text. Any transport failure surfaces as a single wrapped error; there are
// no retries.
func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (Response, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    buildMessages(systemPrompt, userPrompt),
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
		Temperature: openai.Float(c.cfg.Temperature),
	})
	if err != nil {
		return Response{}, fmt.Errorf("openai chat request failed: %w", err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return Response{
		Content:    content,
		Model:      c.cfg.Model,
		TokensUsed: int(resp.Usage.TotalTokens),
		Provider:   ProviderOpenAI,
	}, nil
}

// Close releases the idle HTTP connections held by the client.
func (c *OpenAIClient) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
