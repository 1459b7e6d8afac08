// Package anthropicchat implements chat.Client on top of Anthropic's
// Claude Messages API. It follows the shape of goa-ai's
// features/model/anthropic adapter — a narrow MessagesClient subset
// interface satisfied by the real SDK client or a test double, an
// Options struct for model/token defaults, and New/NewFromAPIKey
// constructors — reduced to Aua's two-operation Client contract instead
// of goa-ai's full streaming/tool-calling surface.
package anthropicchat

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used by NewFromAPIKey callers that don't care which
// Claude model handles generative evaluation and casting.
const DefaultModel = "claude-sonnet-4-5"

// MessagesClient captures the subset of the Anthropic SDK used by the
// adapter, so tests can substitute a stub without a live API key.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Options configures the adapter's defaults.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client implements chat.Client against Anthropic Messages.
type Client struct {
	msg    MessagesClient
	model  string
	maxTok int
	temp   float64
}

// New builds a Client from an injected MessagesClient and Options.
func New(msg MessagesClient, opts Options) (*Client, error) {
	if msg == nil {
		return nil, errors.New("anthropic messages client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("model identifier is required")
	}
	maxTok := opts.MaxTokens
	if maxTok <= 0 {
		maxTok = 1024
	}
	return &Client{msg: msg, model: opts.Model, maxTok: maxTok, temp: opts.Temperature}, nil
}

// NewFromAPIKey constructs a Client using the default Anthropic HTTP
// client, reading apiKey the way anthropic.NewFromAPIKey does in the
// adapter this is grounded on.
func NewFromAPIKey(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&ac.Messages, Options{Model: model})
}

// Ask sends prompt as a single user message and returns the concatenated
// text content of the reply.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	params := sdk.MessageNewParams{
		MaxTokens: int64(c.maxTok),
		Model:     sdk.Model(c.model),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}
	if c.temp > 0 {
		params.Temperature = sdk.Float(c.temp)
	}
	msg, err := c.msg.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages.new: %w", err)
	}
	return extractText(msg), nil
}

// AskWithSchema appends a schema-constrained instruction to prompt and
// relies on the model to produce JSON matching jsonSchema in its text
// response; Anthropic's Messages API has no native JSON-schema response
// mode in the narrow surface this adapter wraps, so the constraint is
// conveyed in the prompt itself, matching spec.md's "no retry on parse
// failure" contract (the VM is responsible for parsing, not this client).
func (c *Client) AskWithSchema(ctx context.Context, prompt string, jsonSchema string) (string, error) {
	full := prompt + "\n\nRespond with JSON matching exactly this schema, and nothing else:\n" + jsonSchema
	return c.Ask(ctx, full)
}

func extractText(msg *sdk.Message) string {
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}
