// Package llm wraps the text-generation providers behind a single Client
// interface. Provider failures are reported as one of the sentinel errors in
// errors.go so callers can map them without knowing which provider ran.
package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Client generates a completion for a single prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider names a supported backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

const (
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel    = "gemini-1.5-flash"
	defaultMaxTokens      = 2000
	defaultTimeout        = 60 * time.Second
)

// Config selects and configures a provider.
type Config struct {
	Provider   Provider
	APIKey     string
	Model      string
	BaseURL    string // empty means the provider default
	MaxTokens  int
	Timeout    time.Duration
	MaxRetries int
}

// New builds the client for cfg.Provider.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case ProviderAnthropic, "":
		return NewAnthropicClient(cfg, logger)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func (c Config) withDefaults(model string) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}
