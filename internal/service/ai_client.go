package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"
)

// TextCompleter turns a prompt into a model response. The AI service depends
// on this interface so tests can swap the live client out.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const completionRetryMaxElapsed = 30 * time.Second

// AnthropicCompleter is the production TextCompleter backed by the Anthropic
// Messages API. Rate limits and server errors are retried with exponential
// backoff; everything else fails immediately.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicCompleter builds the live client.
func NewAnthropicCompleter(apiKey, model string) (*AnthropicCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	return &AnthropicCompleter{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: 1024,
	}, nil
}

// Complete sends a single-turn prompt and returns the text of the first
// content block.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var text string
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = completionRetryMaxElapsed

	err := backoff.Retry(func() error {
		message, err := c.client.Messages.New(ctx, params)
		if err != nil {
			if isRetryableCompletionError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(message.Content) == 0 {
			return backoff.Permanent(errors.New("empty model response"))
		}
		block := message.Content[0]
		if block.Type != "text" {
			return backoff.Permanent(fmt.Errorf("unexpected response block type %q", block.Type))
		}
		text = block.Text
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}
	return text, nil
}

func isRetryableCompletionError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
