package openaichat

import (
	"context"
	"testing"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type stubChatClient struct {
	resp *openai.ChatCompletion
	err  error
}

func (s *stubChatClient) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	return s.resp, s.err
}

func TestNewRequiresChatClient(t *testing.T) {
	if _, err := New(nil, Options{Model: DefaultModel}); err == nil {
		t.Fatalf("expected error for nil chat client")
	}
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New(&stubChatClient{}, Options{Model: "   "}); err == nil {
		t.Fatalf("expected error for blank model")
	}
}

func TestNewFromAPIKeyRequiresKey(t *testing.T) {
	if _, err := NewFromAPIKey("  ", DefaultModel); err == nil {
		t.Fatalf("expected error for blank api key")
	}
}

func TestAskReturnsEmptyTextForNilResponse(t *testing.T) {
	c, err := New(&stubChatClient{resp: nil}, Options{Model: DefaultModel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := c.Ask(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text for nil response, got %q", text)
	}
}

func TestAskPropagatesUnderlyingError(t *testing.T) {
	c, err := New(&stubChatClient{err: errBoom{}}, Options{Model: DefaultModel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Ask(context.Background(), "hello"); err == nil {
		t.Fatalf("expected Ask to propagate the underlying error")
	}
}

func TestAskWithSchemaSendsStructuredRequest(t *testing.T) {
	c, err := New(&stubChatClient{resp: &openai.ChatCompletion{}}, Options{Model: DefaultModel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.AskWithSchema(context.Background(), "describe", `{"type":"object"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
