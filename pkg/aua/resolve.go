package aua

import (
	"fmt"
	"os"

	"github.com/jweissman/aua-sub000/internal/chat"
	"github.com/jweissman/aua-sub000/internal/chat/anthropicchat"
	"github.com/jweissman/aua-sub000/internal/chat/openaichat"
)

// ResolveChatClient picks a model adapter from environment variables,
// preferring Anthropic when both are configured: ANTHROPIC_API_KEY
// selects anthropicchat, OPENAI_API_KEY selects openaichat. With
// neither set it returns a client that errors on every call, so a
// program that never uses ask/chat/cast/generative strings still runs.
func ResolveChatClient() chat.Client {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		model := os.Getenv("AUA_MODEL")
		if model == "" {
			model = anthropicchat.DefaultModel
		}
		c, err := anthropicchat.NewFromAPIKey(key, model)
		if err != nil {
			return &chat.Static{Err: err}
		}
		return c
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		model := os.Getenv("AUA_MODEL")
		if model == "" {
			model = openaichat.DefaultModel
		}
		c, err := openaichat.NewFromAPIKey(key, model)
		if err != nil {
			return &chat.Static{Err: err}
		}
		return c
	}
	return &chat.Static{Err: fmt.Errorf("model_error: no model configured; set ANTHROPIC_API_KEY or OPENAI_API_KEY")}
}
