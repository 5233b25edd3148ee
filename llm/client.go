// Package llm provides the language-model collaborator: a small Completer
// interface and an Anthropic-backed implementation with client-side rate
// limiting.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "claude-sonnet-4-5-20250929"

const defaultMaxTokens = 2048

// DefaultRequestsPerMinute is the client-side request cap production wiring
// passes to WithRequestsPerMinute, comfortably under the API tier limits.
const DefaultRequestsPerMinute = 30

// Completer is the single interface both the batch filter and the summarizer
// consume. Implementations return the model's raw text output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse indicates the model returned no text content.
var ErrEmptyResponse = errors.New("llm: empty response")

// Client calls the Anthropic Messages API.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	system    string
	limiter   *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithSystemPrompt sets the system prompt sent with every completion.
func WithSystemPrompt(system string) Option {
	return func(c *Client) { c.system = system }
}

// WithMaxTokens overrides the default output token cap.
func WithMaxTokens(n int64) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithRequestsPerMinute caps the request rate. LLM calls are billed per
// token, so a runaway loop is a cost problem before it is a quota problem.
func WithRequestsPerMinute(rpm float64) Option {
	return func(c *Client) {
		if rpm > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rpm/60), 1)
		}
	}
}

// NewClient creates an Anthropic-backed Completer.
func NewClient(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		api:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends one user prompt and returns the concatenated text blocks of
// the response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("llm: rate limit wait: %w", err)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.system}}
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm: complete: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
