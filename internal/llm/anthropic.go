package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const anthropicVersion = "2023-06-01"

type anthropicRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// AnthropicClient calls the Messages API.
type AnthropicClient struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewAnthropicClient(apiURL, apiKey, model string, timeout time.Duration) *AnthropicClient {
	return &AnthropicClient{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: newHTTPClient(timeout),
	}
}

func (c *AnthropicClient) Name() string { return "anthropic" }

func (c *AnthropicClient) Configured() bool { return c.apiKey != "" && c.apiURL != "" }

func (c *AnthropicClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%s: %w", c.Name(), ErrProviderUnavailable)
	}
	opts = opts.withDefaults()

	system, conversation := splitSystem(messages)

	var resp anthropicResponse
	err := postJSON(ctx, c.client, c.Name(), c.apiURL,
		map[string]string{
			"x-api-key":         c.apiKey,
			"anthropic-version": anthropicVersion,
		},
		anthropicRequest{
			Model:       c.model,
			System:      system,
			Messages:    conversation,
			Temperature: *opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		},
		&resp)
	if err != nil {
		return "", err
	}

	if len(resp.Content) == 0 || strings.TrimSpace(resp.Content[0].Text) == "" {
		return "", providerErr(c.Name(), "empty response from API")
	}
	return strings.TrimSpace(resp.Content[0].Text), nil
}
