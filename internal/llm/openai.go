package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewOpenAIClient(apiURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: newHTTPClient(timeout),
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Configured() bool { return c.apiKey != "" && c.apiURL != "" }

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%s: %w", c.Name(), ErrProviderUnavailable)
	}
	opts = opts.withDefaults()

	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}

	var resp chatResponse
	err := postJSON(ctx, c.client, c.Name(), c.apiURL,
		map[string]string{"Authorization": "Bearer " + c.apiKey},
		chatRequest{Model: model, Messages: messages, Temperature: *opts.Temperature, MaxTokens: opts.MaxTokens},
		&resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", providerErr(c.Name(), "empty response from API")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", providerErr(c.Name(), "empty response from API")
	}
	return content, nil
}
