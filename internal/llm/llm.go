// Package llm wraps the Gemini text-generation boundary behind the
// TextGenerator contract consumed by the composers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"asogen/internal/config"
	"asogen/internal/core"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client is a Gemini-backed text generator. Safe for concurrent use.
type Client struct {
	gClient     *genai.Client
	modelName   string
	timeout     time.Duration
	temperature float32
}

// NewClient creates a Gemini client from configuration. A missing API key is
// a ConfigurationError: the engine cannot start without its provider.
func NewClient(ctx context.Context, cfg config.Gemini) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &core.ConfigurationError{
			Message: "gemini API key is required (set GEMINI_API_KEY or gemini.api_key)",
		}
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		gClient:     gClient,
		modelName:   model,
		timeout:     timeout,
		temperature: cfg.Temperature,
	}, nil
}

// GenerateText sends a single prompt and returns the model's text. The
// per-call timeout applies on top of whatever deadline ctx carries. All
// failure modes surface as *core.ProviderError so the retry policy can
// classify them.
func (c *Client) GenerateText(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	cfg := &genai.GenerateContentConfig{}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = maxTokens
	}
	if c.temperature > 0 {
		cfg.Temperature = genai.Ptr(c.temperature)
	}

	resp, err := c.gClient.Models.GenerateContent(callCtx, c.modelName, contents, cfg)
	if err != nil {
		return "", &core.ProviderError{
			Op:        "generate",
			Retryable: isRetryable(err),
			Err:       err,
		}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		// Malformed/empty responses are worth one more attempt.
		return "", &core.ProviderError{
			Op:        "generate",
			Retryable: true,
			Err:       errors.New("empty response from model"),
		}
	}
	return text, nil
}

// isRetryable classifies provider failures. Timeouts, rate limits and server
// errors are transient; anything else (bad request, auth) is not worth
// retrying.
func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 408, 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	// Transport-level failures without a status are treated as transient.
	return !errors.Is(err, context.Canceled)
}
