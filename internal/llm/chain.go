package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
)

// Chain tries providers in order and returns the first reply. Providers
// without credentials are skipped.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Configured lists the names of providers that will be tried.
func (c *Chain) Configured() []string {
	var names []string
	for _, p := range c.providers {
		if p.Configured() {
			names = append(names, p.Name())
		}
	}
	return names
}

func (c *Chain) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	const op = "llm.complete"

	var errs []error
	tried := 0
	for _, p := range c.providers {
		if !p.Configured() {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		tried++
		reply, err := p.Complete(ctx, messages, opts)
		if err == nil {
			return reply, nil
		}
		slog.Warn("llm provider failed, trying next", "provider", p.Name(), "error", err)
		errs = append(errs, err)
	}

	if tried == 0 {
		return "", apperr.Provider(op, ErrNoProviderConfigured)
	}
	return "", apperr.Provider(op, fmt.Errorf("all llm providers failed: %w", errors.Join(errs...)))
}

// FromConfig builds the client-side chain: the secure proxy first, then the
// direct providers.
func FromConfig(ctx context.Context, cfg *config.Config) (*Chain, error) {
	direct, err := directProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}
	providers := append([]Provider{NewProxyClient(cfg.AIProxyURL, cfg.AIProxyKey, cfg.AITimeout)}, direct...)
	return NewChain(providers...), nil
}

// DirectFromConfig builds a chain of the direct providers only. The server's
// own proxy endpoint uses it so it never calls itself.
func DirectFromConfig(ctx context.Context, cfg *config.Config) (*Chain, error) {
	direct, err := directProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewChain(direct...), nil
}

func directProviders(ctx context.Context, cfg *config.Config) ([]Provider, error) {
	gemini, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, "", cfg.AITimeout)
	if err != nil {
		return nil, err
	}
	return []Provider{
		NewOpenAIClient(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout),
		NewAnthropicClient(cfg.AnthropicAPIURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AITimeout),
		gemini,
	}, nil
}
