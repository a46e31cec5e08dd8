// Package llm sends chat prompts to hosted language models and falls back
// across providers when one fails.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrProviderUnavailable  = errors.New("llm provider not configured")
	ErrRateLimited          = errors.New("llm provider rate limited")
	ErrProviderError        = errors.New("llm provider error")
	ErrNoProviderConfigured = errors.New("no llm provider configured")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single completion. Model is honored by the proxy and
// OpenAI-compatible providers; the others use their configured model.
// A nil Temperature means DefaultTemperature; use Temp to ask for 0.
type Options struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Temp returns a pointer for Options.Temperature.
func Temp(v float64) *float64 { return &v }

func (o Options) withDefaults() Options {
	if o.Temperature == nil {
		o.Temperature = Temp(DefaultTemperature)
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}

// Completer returns the assistant reply to messages.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Provider is a Completer that may be switched off by missing credentials.
type Provider interface {
	Completer
	Name() string
	Configured() bool
}

// providerErr wraps a failure so callers can test it against
// ErrProviderError and still see the cause.
func providerErr(name string, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", name, ErrProviderError, fmt.Sprintf(format, args...))
}

// splitSystem separates system messages from the conversation for APIs that
// take the system prompt as a top-level field.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
