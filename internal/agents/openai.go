package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// GeneratorConfig holds the connection parameters for the model endpoint.
type GeneratorConfig struct {
	// APIKey authenticates against the model endpoint.
	APIKey string
	// BaseURL overrides the endpoint for OpenAI-compatible gateways.
	BaseURL string
	// Model is the model identifier sent with every request.
	Model string
	// Retry configures the retry loop; zero selects DefaultRetryConfig.
	Retry RetryConfig
}

// Validate reports missing required connection parameters.
func (c GeneratorConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("agents: model API key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("agents: model identifier is required")
	}
	return nil
}

// OpenAIGenerator sends chat-completion requests to an OpenAI-compatible
// endpoint with retry on transient failures.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	retry  RetryConfig
	logger *slog.Logger
}

// NewOpenAIGenerator validates the configuration and builds a generator.
func NewOpenAIGenerator(cfg GeneratorConfig, logger *slog.Logger) (*OpenAIGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		retry:  cfg.Retry,
		logger: logger,
	}, nil
}

// Generate sends one prompt and returns the model's text reply.
func (g *OpenAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	backoff := g.retry.BackoffBase
	var lastErr error

	for attempt := 1; attempt <= g.retry.MaxAttempts; attempt++ {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    g.model,
			Messages: messages,
		})
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("agents: model returned no choices")
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = classify(err)
		if !IsTransient(lastErr) {
			return "", lastErr
		}

		g.logger.Warn("model request failed, retrying",
			"attempt", attempt,
			"max_attempts", g.retry.MaxAttempts,
			"error", err)

		if attempt == g.retry.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * g.retry.BackoffMultiplier)
		if backoff > g.retry.MaxBackoff {
			backoff = g.retry.MaxBackoff
		}
	}

	return "", fmt.Errorf("agents: model request failed after %d attempts: %w",
		g.retry.MaxAttempts, lastErr)
}

// classify tags rate limits and server-side failures as transient.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return NewTransientError(err)
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// network-level failures are worth one more try
	return NewTransientError(err)
}
