package aua

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jweissman/aua-sub000/internal/chat"
)

func TestEvalReturnsSuccessResult(t *testing.T) {
	engine := New(WithChatClient(&chat.Static{}))
	result, err := engine.Eval("1 + 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected Success=true")
	}
	if result.Value != "3" || result.TypeOf != "Int" {
		t.Fatalf("expected Value=3 TypeOf=Int, got %+v", result)
	}
}

func TestEvalReturnsFailureResultOnError(t *testing.T) {
	engine := New(WithChatClient(&chat.Static{}))
	result, err := engine.Eval("undefined_name")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if result.Success {
		t.Fatalf("expected Success=false")
	}
}

func TestEngineStatePersistsAcrossEvalCalls(t *testing.T) {
	engine := New(WithChatClient(&chat.Static{}))
	if _, err := engine.Eval("counter = 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := engine.Eval("counter = counter + 1\ncounter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value != "2" {
		t.Fatalf("expected counter to persist to 2, got %s", result.Value)
	}
}

func TestWithOutputRedirectsSay(t *testing.T) {
	out := &bytes.Buffer{}
	engine := New(WithChatClient(&chat.Static{}), WithOutput(out))
	if _, err := engine.Eval(`say "hello"`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "hello\n" {
		t.Fatalf("expected %q, got %q", "hello\n", out.String())
	}
}

func TestEvalContextRestoresBackgroundContextAfterward(t *testing.T) {
	engine := New(WithChatClient(&chat.Static{}))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := engine.EvalContext(ctx, "1 + 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.vm.Context != context.Background() {
		t.Fatalf("expected the VM context to be reset to context.Background()")
	}
	if _, err := engine.Eval("2 + 2"); err != nil {
		t.Fatalf("unexpected error after EvalContext: %v", err)
	}
}
