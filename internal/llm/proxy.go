package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultProxyModel = "gpt-4o-mini"

// ProxyRequest is the body the secure proxy accepts. The server's own
// /api/ai/chat endpoint decodes the same shape.
type ProxyRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type ProxyResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ProxyClient calls a backend proxy that holds the real provider keys.
type ProxyClient struct {
	url    string
	token  string
	client *http.Client
}

func NewProxyClient(url, token string, timeout time.Duration) *ProxyClient {
	return &ProxyClient{url: url, token: token, client: newHTTPClient(timeout)}
}

func (c *ProxyClient) Name() string { return "proxy" }

func (c *ProxyClient) Configured() bool { return c.url != "" }

func (c *ProxyClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%s: %w", c.Name(), ErrProviderUnavailable)
	}
	opts = opts.withDefaults()
	if opts.Model == "" {
		opts.Model = defaultProxyModel
	}

	headers := map[string]string{}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}

	var resp ProxyResponse
	err := postJSON(ctx, c.client, c.Name(), c.url, headers,
		ProxyRequest{Messages: messages, Model: opts.Model, Temperature: opts.Temperature, MaxTokens: opts.MaxTokens},
		&resp)
	if err != nil {
		return "", err
	}

	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = resp.Message
		}
		if reason == "" {
			reason = "request failed"
		}
		return "", providerErr(c.Name(), "%s", reason)
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", providerErr(c.Name(), "empty response from proxy")
	}
	return resp.Response, nil
}
