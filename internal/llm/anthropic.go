package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAnthropicClient(cfg Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is required", ErrAuth)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg = cfg.withDefaults(DefaultAnthropicModel)
	if cfg.BaseURL == "" {
		cfg.BaseURL = anthropicBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &AnthropicClient{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}, nil
}

// Generate sends prompt as a single user message and returns the first text block.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqBody := anthropicRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	newReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.cfg.APIKey)
		req.Header.Set("anthropic-version", anthropicVersion)
		return req, nil
	}

	start := time.Now()
	resp, err := doWithRetry(ctx, c.httpClient, newReq, c.cfg.MaxRetries)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: failed to call Anthropic API: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUpstream, err)
	}

	c.logger.Debug("anthropic response",
		zap.Int("status", resp.StatusCode),
		zap.String("model", c.cfg.Model),
		zap.Duration("latency", time.Since(start)))

	var apiResp anthropicResponse
	parseErr := json.Unmarshal(body, &apiResp)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if parseErr == nil && apiResp.Error != nil {
			msg = apiResp.Error.Type + " - " + apiResp.Error.Message
		}
		c.logger.Warn("anthropic API error", zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return "", fmt.Errorf("%w: status %d: %s", statusError(resp.StatusCode), resp.StatusCode, msg)
	}

	if parseErr != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrUpstream, parseErr)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("%w: %s - %s", ErrUpstream, apiResp.Error.Type, apiResp.Error.Message)
	}

	for _, block := range apiResp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}

func statusError(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusTooManyRequests:
		return ErrQuota
	case http.StatusNotFound, http.StatusServiceUnavailable, statusOverloaded:
		return ErrModelUnavailable
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrTimeout
	default:
		return ErrUpstream
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
