// Package aua is the public embedding facade for the Aua language: a
// small Engine wrapping a *vm.VM behind an options constructor, the
// same shape the teacher's pkg/dwscript facade gives Go programs that
// want to host the interpreter rather than shell out to the CLI.
package aua

import (
	"context"
	"io"
	"os"

	"github.com/jweissman/aua-sub000/internal/chat"
	"github.com/jweissman/aua-sub000/internal/vm"
)

// Result is the outcome of one Eval call: the program's terminal value
// (rendered via Inspect, since vm.Value is an internal type this
// package does not re-export) plus whether it ran to completion.
type Result struct {
	Success bool
	Value   string
	TypeOf  string
}

// Engine hosts one Aua VM instance, reusable across multiple Eval calls
// so type declarations and global bindings persist between them.
type Engine struct {
	vm *vm.VM
}

// Option configures an Engine at construction time.
type Option func(*engineConfig)

type engineConfig struct {
	output     io.Writer
	chat       chat.Client
	importRoot string
}

// WithOutput directs the engine's `say` builtin to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(c *engineConfig) { c.output = w }
}

// WithChatClient supplies the model client `ask`/`chat`/generative
// literals/casts dial out to. Without this option, New falls back to
// an environment-driven client resolved the way cmd/aua resolves one
// (see ResolveChatClient); tests typically pass a chat.Static double.
func WithChatClient(c chat.Client) Option {
	return func(cfg *engineConfig) { cfg.chat = c }
}

// WithImportRoot sets the base directory `import` and file builtins
// resolve relative paths against.
func WithImportRoot(dir string) Option {
	return func(c *engineConfig) { c.importRoot = dir }
}

// New constructs an Engine. If no chat client option is given, it
// resolves one from the environment per ResolveChatClient, falling
// back to a Static client that always errors — generative evaluation
// then fails loudly rather than silently, rather than pretending to
// work offline.
func New(opts ...Option) *Engine {
	cfg := &engineConfig{output: os.Stdout}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.chat == nil {
		cfg.chat = ResolveChatClient()
	}
	v := vm.New(cfg.output, cfg.chat)
	v.ImportRoot = cfg.importRoot
	return &Engine{vm: v}
}

// Eval lexes, parses, translates, and runs src against the engine's
// persistent global environment and type registry.
func (e *Engine) Eval(src string) (Result, error) {
	val, err := e.vm.Run(src)
	if err != nil {
		return Result{Success: false}, err
	}
	return Result{Success: true, Value: val.Inspect(), TypeOf: val.TypeName()}, nil
}

// EvalContext is Eval with an explicit context, used to bound or
// cancel the model calls a program's generative literals/casts make.
func (e *Engine) EvalContext(ctx context.Context, src string) (Result, error) {
	e.vm.Context = ctx
	defer func() { e.vm.Context = context.Background() }()
	return e.Eval(src)
}
