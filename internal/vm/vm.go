// Package vm implements Aua's tree-walking virtual machine: it executes
// the IR produced by internal/translator over an Environment chain,
// dispatching operators, builtins, and universal casts exactly as
// spec.md §4.4 describes. The dispatch shape (a statement-tag switch
// feeding per-kind eval methods) is grounded on the teacher's
// tree-walking evaluator, generalized from DWScript's static semantics
// to Aua's dynamic ones.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jweissman/aua-sub000/internal/ir"
	"github.com/jweissman/aua-sub000/internal/lexer"
	"github.com/jweissman/aua-sub000/internal/parser"
	"github.com/jweissman/aua-sub000/internal/translator"
	"github.com/jweissman/aua-sub000/internal/types"

	"github.com/jweissman/aua-sub000/internal/chat"
)

// VM holds the mutable state one Aua program run needs: the global
// environment frame, the type registry, the builtin dispatch table, the
// model client, and the output sink `say` writes to.
type VM struct {
	Global     *Environment
	Types      *types.Registry
	Builtins   *Registry
	Chat       chat.Client
	Output     io.Writer
	ImportRoot string

	importing map[string]bool
	Context   context.Context
}

// New constructs a VM wired the way cmd/aua and pkg/aua assemble one:
// fresh Environment + type registry (pre-seeded with primitives) +
// builtin registry, given an output sink and a model client.
func New(output io.Writer, chatClient chat.Client) *VM {
	reg := NewRegistry()
	RegisterBuiltins(reg)
	return &VM{
		Global:    NewEnvironment(),
		Types:     types.NewRegistry(),
		Builtins:  reg,
		Chat:      chatClient,
		Output:    output,
		importing: map[string]bool{},
		Context:   context.Background(),
	}
}

func (vm *VM) ctx() context.Context {
	if vm.Context != nil {
		return vm.Context
	}
	return context.Background()
}

// Run lexes, parses, translates, and evaluates src against the VM's
// global environment, returning the program's terminal value.
func (vm *VM) Run(src string) (Value, error) {
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		e := p.Errors()[0]
		return nil, fmt.Errorf("parse_error: %s at line %d, column %d", e.Message, e.Pos.Line, e.Pos.Column)
	}
	node := translator.Translate(prog)
	return vm.Eval(node, vm.Global)
}

// Eval is the VM's main dispatch: a type switch over the closed ir.Stmt
// sum, one case per statement kind named in spec.md §3/§4.4.
func (vm *VM) Eval(node ir.Stmt, env *Environment) (Value, error) {
	switch n := node.(type) {
	case *ir.Lit:
		return vm.evalLit(n)
	case *ir.Id:
		if v, ok := env.Get(n.Name); ok {
			return v, nil
		}
		if k, ok := vm.Types.Lookup(n.Name); ok {
			return &Klass{Underlying: k, Name: k.Name()}, nil
		}
		return nil, fmt.Errorf("name_error: %q is not bound", n.Name)
	case *ir.Let:
		v, err := vm.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		if env.Has(n.Name) {
			if err := env.Set(n.Name, v); err != nil {
				return nil, err
			}
		} else {
			env.Define(n.Name, v)
		}
		return v, nil
	case *ir.Send:
		return vm.evalSend(n, env)
	case *ir.Negate:
		v, err := vm.Eval(n.Operand, env)
		if err != nil {
			return nil, err
		}
		return vm.evalNegate(v)
	case *ir.Not:
		v, err := vm.Eval(n.Operand, env)
		if err != nil {
			return nil, err
		}
		return Bool(!Truthy(v)), nil
	case *ir.Cat:
		return vm.evalCat(n, env)
	case *ir.Cons:
		return vm.evalCons(n, env)
	case *ir.Gen:
		return vm.evalGen(n, env)
	case *ir.Cast:
		v, err := vm.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		return vm.Cast(v, n.Type)
	case *ir.Call:
		return vm.evalCall(n, env)
	case *ir.If:
		return vm.evalIf(n, env)
	case *ir.While:
		return vm.evalWhile(n, env)
	case *ir.TypeDeclaration:
		return vm.evalTypeDeclaration(n, env)
	case *ir.FunctionDefinition:
		return vm.evalFunctionDefinition(n, env)
	case *ir.ObjectLiteral:
		return vm.evalObjectLiteral(n, env)
	case *ir.ArrayLiteral:
		return vm.evalArrayLiteral(n, env)
	case *ir.MemberAccess:
		return vm.evalMemberAccess(n, env)
	case *ir.MemberAssignment:
		return vm.evalMemberAssignment(n, env)
	default:
		return nil, fmt.Errorf("value_error: unhandled IR node %T", node)
	}
}

func (vm *VM) evalLit(n *ir.Lit) (Value, error) {
	switch n.Kind {
	case "int":
		return Int(n.Int), nil
	case "float":
		return Float(n.Float), nil
	case "bool":
		return Bool(n.Bool), nil
	case "str":
		return Str(n.Str), nil
	default:
		return Nihil{}, nil
	}
}

func (vm *VM) evalCons(n *ir.Cons, env *Environment) (Value, error) {
	var result Value = Nihil{}
	for _, part := range n.Parts {
		v, err := vm.Eval(part, env)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (vm *VM) evalCat(n *ir.Cat, env *Environment) (Value, error) {
	out := ""
	for _, part := range n.Parts {
		v, err := vm.Eval(part, env)
		if err != nil {
			return nil, err
		}
		out += stringify(v)
	}
	return Str(out), nil
}

// evalGen implements generative evaluation: concatenate the literal's
// parts into a prompt exactly like Cat, then hand it to the model
// client's free-form Ask instead of returning the text itself.
func (vm *VM) evalGen(n *ir.Gen, env *Environment) (Value, error) {
	prompt := ""
	for _, part := range n.Parts {
		v, err := vm.Eval(part, env)
		if err != nil {
			return nil, err
		}
		prompt += stringify(v)
	}
	text, err := vm.Chat.Ask(vm.ctx(), prompt)
	if err != nil {
		return nil, fmt.Errorf("model_error: %w", err)
	}
	return Str(text), nil
}

func (vm *VM) evalIf(n *ir.If, env *Environment) (Value, error) {
	cond, err := vm.Eval(n.Cond, env)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return vm.Eval(n.Then, NewEnclosedEnvironment(env))
	}
	if n.Else != nil {
		return vm.Eval(n.Else, NewEnclosedEnvironment(env))
	}
	return Nihil{}, nil
}

func (vm *VM) evalWhile(n *ir.While, env *Environment) (Value, error) {
	var result Value = Nihil{}
	for {
		cond, err := vm.Eval(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if !Truthy(cond) {
			break
		}
		if _, err := vm.Eval(n.Body, NewEnclosedEnvironment(env)); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (vm *VM) evalTypeDeclaration(n *ir.TypeDeclaration, env *Environment) (Value, error) {
	if len(n.Union) > 0 {
		k, err := vm.Types.DeclareUnion(n.Name, n.Union)
		if err != nil {
			return nil, fmt.Errorf("type_error: %w", err)
		}
		return &Klass{Underlying: k, Name: k.Name()}, nil
	}
	k := vm.Types.DeclareRecord(n.Name, n.Fields)
	return &Klass{Underlying: k, Name: k.Name()}, nil
}

func (vm *VM) evalFunctionDefinition(n *ir.FunctionDefinition, env *Environment) (Value, error) {
	params := make([]FunctionParam, len(n.Params))
	for i, p := range n.Params {
		params[i] = FunctionParam{Name: p.Name}
	}
	fn := &Function{Name: n.Name, Params: params, Body: n.Body, Env: env}
	if n.Name != "" {
		env.Define(n.Name, fn)
	}
	return fn, nil
}

func (vm *VM) evalObjectLiteral(n *ir.ObjectLiteral, env *Environment) (Value, error) {
	obj := &ObjectLiteral{Fields: map[string]Value{}}
	for _, f := range n.Fields {
		v, err := vm.Eval(f.Value, env)
		if err != nil {
			return nil, err
		}
		obj.Set(f.Key, v)
	}
	return obj, nil
}

func (vm *VM) evalArrayLiteral(n *ir.ArrayLiteral, env *Environment) (Value, error) {
	items := make([]Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := vm.Eval(el, env)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return &List{Items: items}, nil
}

func (vm *VM) evalMemberAccess(n *ir.MemberAccess, env *Environment) (Value, error) {
	obj, err := vm.Eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	switch o := Unwrap(obj).(type) {
	case *ObjectLiteral:
		v, ok := o.Get(n.Field)
		if !ok {
			return nil, fmt.Errorf("name_error: no field %q", n.Field)
		}
		return v, nil
	case *RecordObject:
		v, ok := o.Get(n.Field)
		if !ok {
			return nil, fmt.Errorf("name_error: no field %q", n.Field)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("type_error: %s has no members", obj.TypeName())
	}
}

func (vm *VM) evalMemberAssignment(n *ir.MemberAssignment, env *Environment) (Value, error) {
	obj, err := vm.Eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	val, err := vm.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	switch o := Unwrap(obj).(type) {
	case *ObjectLiteral:
		o.Set(n.Field, val)
		return val, nil
	case *RecordObject:
		o.Set(n.Field, val)
		return val, nil
	default:
		return nil, fmt.Errorf("type_error: %s has no members", obj.TypeName())
	}
}

// runImport loads and evaluates another source file against this VM's
// *same* global environment and type registry, so declarations in the
// imported file become visible to the importer. Cycles are rejected as
// a value_error instead of recursing forever. Reachable only through the
// "import" builtin (see builtins.go), not a dedicated IR node: spec.md
// has no import keyword, just an ordinary command call.
func (vm *VM) runImport(path string) (Value, error) {
	resolved := vm.resolvePath(path)
	abs, err := filepath.Abs(resolved)
	if err != nil {
		abs = resolved
	}
	if vm.importing[abs] {
		return nil, fmt.Errorf("value_error: cyclic import of %q", path)
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("io_error: %w", err)
	}
	vm.importing[abs] = true
	defer delete(vm.importing, abs)
	return vm.Run(string(raw))
}
