// Package openaichat implements chat.Client on top of the OpenAI Chat
// Completions API. It mirrors goa-ai's features/model/openai adapter
// shape (a narrow ChatClient subset interface, Options struct,
// New/NewFromAPIKey constructors) targeting github.com/openai/openai-go,
// and uses its JSON-schema response-format support for AskWithSchema
// instead of goa-ai's prompt-only tool-call translation.
package openaichat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultModel is used by NewFromAPIKey callers that don't care which
// model handles generative evaluation and casting.
const DefaultModel = "gpt-4o"

// ChatClient captures the subset of the openai-go client used by the
// adapter, so tests can substitute a stub.
type ChatClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Options configures the adapter's defaults.
type Options struct {
	Model string
}

// Client implements chat.Client via OpenAI Chat Completions.
type Client struct {
	chat  ChatClient
	model string
}

// New builds a Client from an injected ChatClient and Options.
func New(chat ChatClient, opts Options) (*Client, error) {
	if chat == nil {
		return nil, errors.New("openai chat client is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, errors.New("model identifier is required")
	}
	return &Client{chat: chat, model: model}, nil
}

// NewFromAPIKey constructs a Client using the default openai-go HTTP
// client, reading apiKey the way NewFromAPIKey does in the adapter this
// is grounded on.
func NewFromAPIKey(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key is required")
	}
	oc := openai.NewClient(option.WithAPIKey(apiKey))
	return New(&oc.Chat.Completions, Options{Model: model})
}

// Ask sends prompt as a single user message and returns the first
// choice's message content.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	return firstChoiceText(resp), nil
}

// AskWithSchema constrains the completion to jsonSchema via OpenAI's
// structured-output response_format, matching spec.md's "response is
// guaranteed valid JSON" invariant; there is no retry on parse failure
// on the Aua side of this boundary.
func (c *Client) AskWithSchema(ctx context.Context, prompt string, jsonSchema string) (string, error) {
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "aua_cast",
					Schema: rawSchema(jsonSchema),
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return firstChoiceText(resp), nil
}

func firstChoiceText(resp *openai.ChatCompletion) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

// rawSchema decodes jsonSchema into the generic map the SDK's schema
// param expects; the cast algorithm always hands us a well-formed
// document produced by internal/types.JSONSchema, so a parse failure
// here indicates an internal bug rather than bad input.
func rawSchema(jsonSchema string) map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(jsonSchema), &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}
