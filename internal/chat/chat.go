// Package chat defines the narrow model-client contract Aua's `ask`,
// `chat`, and cast-time generative evaluation rely on, grounded on the
// shape of goa-ai's model.Client interface but reduced to exactly the
// two operations spec.md §6 requires: a free-form prompt completion and
// a schema-constrained one.
package chat

import "context"

// Client is the interface the VM depends on for every LLM-backed
// operation. Concrete adapters (chat/anthropicchat, chat/openaichat) wrap
// a specific provider SDK behind this contract.
type Client interface {
	// Ask returns the model's free-form text completion for prompt.
	Ask(ctx context.Context, prompt string) (string, error)

	// AskWithSchema returns a JSON document matching jsonSchema that
	// answers prompt. Implementations are expected to use the
	// provider's structured-output / tool-call facility where
	// available; there is no retry on a parse failure, matching
	// spec.md's "no retry on parse failure" invariant.
	AskWithSchema(ctx context.Context, prompt string, jsonSchema string) (string, error)
}

// Static is a fixed-response Client used by tests and by `cmd/aua` when no
// API key is configured; it never calls out to a network.
type Static struct {
	Response       string
	SchemaResponse string
	Err            error
}

func (s *Static) Ask(ctx context.Context, prompt string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}

func (s *Static) AskWithSchema(ctx context.Context, prompt string, jsonSchema string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if s.SchemaResponse != "" {
		return s.SchemaResponse, nil
	}
	return s.Response, nil
}
