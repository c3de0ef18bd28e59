package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient calls Google's Gemini API through the genai SDK.
type GeminiClient struct {
	cfg    Config
	client *genai.Client
	logger *zap.Logger
}

func NewGeminiClient(ctx context.Context, cfg Config, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY is required", ErrAuth)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults(DefaultGeminiModel)

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{cfg: cfg, client: client, logger: logger}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.cfg.MaxTokens),
	}

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	start := time.Now()
	for attempt := 0; ; attempt++ {
		resp, err = c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), config)
		if err == nil || attempt >= c.cfg.MaxRetries || !errors.Is(classifyGeminiError(err), ErrQuota) {
			break
		}
		backoff := time.Duration(1<<attempt) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case <-time.After(backoff):
		}
	}

	c.logger.Debug("gemini response",
		zap.String("model", c.cfg.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Bool("ok", err == nil))

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		c.logger.Warn("gemini API error", zap.Error(err))
		return "", fmt.Errorf("%w: %v", classifyGeminiError(err), err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// classifyGeminiError maps a genai failure onto the package sentinels. It
// prefers the HTTP status and falls back to matching the message.
func classifyGeminiError(err error) error {
	var code int
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusTooManyRequests:
		return ErrQuota
	case http.StatusNotFound, http.StatusServiceUnavailable:
		return ErrModelUnavailable
	case http.StatusGatewayTimeout:
		return ErrTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"):
		return ErrAuth
	case strings.Contains(msg, "quota") || strings.Contains(msg, "limit"):
		return ErrQuota
	case strings.Contains(msg, "model") || strings.Contains(msg, "not found"):
		return ErrModelUnavailable
	default:
		return ErrUpstream
	}
}
