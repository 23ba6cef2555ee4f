// Package enrichment rewrites a major event's summary through an
// OpenAI-compatible chat completion endpoint.
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/suykerbuyk/proofline/internal/config"
)

const maxSummaryChars = 400

// Client is a summarizer backed by one chat completion model.
type Client struct {
	api        openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	retryBase  time.Duration
}

// New builds a client from cfg.
// Returns (nil, nil) if enrichment is disabled or the API key is not set.
func New(cfg config.EnrichmentConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, nil
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("enrichment model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		api:        openai.NewClient(opts...),
		model:      cfg.Model,
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		retryBase:  500 * time.Millisecond,
	}, nil
}

// Summarize returns a one-sentence summary for p. The whole call, retries
// included, is bounded by the configured timeout.
func (c *Client) Summarize(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(p),
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryBase

	start := time.Now()
	resp, err := backoff.Retry(ctx, func() (*openai.ChatCompletion, error) {
		resp, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			if !isRetryable(ctx, err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return resp, nil
	}, backoff.WithBackOff(eb), backoff.WithMaxTries(uint(c.maxRetries+1)))
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	slog.DebugContext(ctx, "enrichment completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	return parseSummary(resp.Choices[0].Message.Content)
}

func parseSummary(content string) (string, error) {
	var sj summaryJSON
	if err := json.Unmarshal([]byte(content), &sj); err != nil {
		return "", fmt.Errorf("unmarshal summary JSON: %w", err)
	}
	s := strings.Join(strings.Fields(sj.Summary), " ")
	if s == "" {
		return "", fmt.Errorf("empty summary")
	}
	if len(s) > maxSummaryChars {
		s = strings.ToValidUTF8(s[:maxSummaryChars], "") + "..."
	}
	return s, nil
}

// isRetryable accepts rate limits, server errors and network failures.
func isRetryable(ctx context.Context, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			slog.WarnContext(ctx, "enrichment rate limited, will retry", "status_code", apiErr.StatusCode)
			return true
		case apiErr.StatusCode >= 500:
			slog.WarnContext(ctx, "enrichment server error, will retry", "status_code", apiErr.StatusCode)
			return true
		default:
			return false
		}
	}

	slog.WarnContext(ctx, "enrichment network error, will retry", "error", err)
	return true
}
