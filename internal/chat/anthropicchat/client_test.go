package anthropicchat

import (
	"context"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type stubMessagesClient struct {
	msg *sdk.Message
	err error
}

func (s *stubMessagesClient) New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error) {
	return s.msg, s.err
}

func TestNewRequiresMessagesClient(t *testing.T) {
	if _, err := New(nil, Options{Model: DefaultModel}); err == nil {
		t.Fatalf("expected error for nil messages client")
	}
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New(&stubMessagesClient{}, Options{}); err == nil {
		t.Fatalf("expected error for empty model")
	}
}

func TestNewDefaultsMaxTokens(t *testing.T) {
	c, err := New(&stubMessagesClient{msg: &sdk.Message{}}, Options{Model: DefaultModel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.maxTok != 1024 {
		t.Fatalf("expected default max tokens 1024, got %d", c.maxTok)
	}
}

func TestNewFromAPIKeyRequiresKey(t *testing.T) {
	if _, err := NewFromAPIKey("", DefaultModel); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestAskReturnsEmptyTextForEmptyMessage(t *testing.T) {
	c, err := New(&stubMessagesClient{msg: &sdk.Message{}}, Options{Model: DefaultModel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := c.Ask(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text from an empty message, got %q", text)
	}
}

func TestAskWrapsUnderlyingError(t *testing.T) {
	c, err := New(&stubMessagesClient{err: errBoom{}}, Options{Model: DefaultModel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Ask(context.Background(), "hello"); err == nil {
		t.Fatalf("expected Ask to propagate the underlying error")
	}
}

func TestAskWithSchemaAppendsSchemaInstruction(t *testing.T) {
	c, err := New(&stubMessagesClient{msg: &sdk.Message{}}, Options{Model: DefaultModel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.AskWithSchema(context.Background(), "describe", `{"type":"object"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
