package vm

import (
	"fmt"

	"github.com/jweissman/aua-sub000/internal/ir"
)

// evalCall resolves a Call node's callee — either a bare identifier
// naming a builtin, or any expression evaluating to a *Function — and
// applies it to the evaluated arguments. Builtins take priority over a
// same-named local binding only when no local binding exists; a user
// definition that shadows a builtin name wins, matching the teacher's
// lookup-before-builtin-fallback order.
func (vm *VM) evalCall(n *ir.Call, env *Environment) (Value, error) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := vm.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if id, ok := n.Callee.(*ir.Id); ok {
		if !env.Has(id.Name) && vm.Builtins.Has(id.Name) {
			return vm.Builtins.Call(vm, id.Name, args)
		}
	}

	callee, err := vm.Eval(n.Callee, env)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*Function)
	if !ok {
		return nil, fmt.Errorf("type_error: %s is not callable", callee.TypeName())
	}
	return vm.applyFunction(fn, args)
}

// applyFunction runs fn's body in a fresh frame whose parent is the
// function's captured defining environment, per spec.md's closure
// invariant (not the caller's environment).
func (vm *VM) applyFunction(fn *Function, args []Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("arity_error: %s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}
	frame := NewEnclosedEnvironment(fn.Env)
	for i, p := range fn.Params {
		frame.Define(p.Name, args[i])
	}
	return vm.Eval(fn.Body, frame)
}
