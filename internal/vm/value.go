package vm

import (
	"fmt"
	"strings"
	"time"

	"github.com/jweissman/aua-sub000/internal/ir"
	"github.com/jweissman/aua-sub000/internal/types"
)

// Value is Aua's closed runtime value sum: Int, Float, Bool, Str, Nihil,
// List, Dict, ObjectLiteral (untyped record), RecordObject (cast-produced
// typed record), Time, Function, and Klass (a type used as a value).
type Value interface {
	valueNode()
	TypeName() string
	Inspect() string
}

type Int int64

func (Int) valueNode()        {}
func (Int) TypeName() string  { return "Int" }
func (v Int) Inspect() string { return fmt.Sprintf("%d", int64(v)) }

type Float float64

func (Float) valueNode()        {}
func (Float) TypeName() string  { return "Float" }
func (v Float) Inspect() string { return fmt.Sprintf("%g", float64(v)) }

type Bool bool

func (Bool) valueNode()        {}
func (Bool) TypeName() string  { return "Bool" }
func (v Bool) Inspect() string { return fmt.Sprintf("%t", bool(v)) }

type Str string

func (Str) valueNode()        {}
func (Str) TypeName() string  { return "Str" }
func (v Str) Inspect() string { return string(v) }

type Nihil struct{}

func (Nihil) valueNode()        {}
func (Nihil) TypeName() string  { return "Nihil" }
func (Nihil) Inspect() string   { return "nihil" }

type List struct {
	Items []Value
}

func (*List) valueNode()       {}
func (*List) TypeName() string { return "List" }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type Dict struct {
	Keys   []string
	Values map[string]Value
}

func NewDict() *Dict { return &Dict{Values: map[string]Value{}} }

func (d *Dict) Set(key string, v Value) {
	if _, exists := d.Values[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Values[key] = v
}

func (*Dict) valueNode()       {}
func (*Dict) TypeName() string { return "Dict" }
func (d *Dict) Inspect() string {
	parts := make([]string, len(d.Keys))
	for i, k := range d.Keys {
		parts[i] = fmt.Sprintf("%s: %s", k, d.Values[k].Inspect())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ObjectLiteral is Aua's untyped record value — the product of an object
// literal expression, with no declared type.
type ObjectLiteral struct {
	Keys   []string
	Fields map[string]Value
}

func (*ObjectLiteral) valueNode()       {}
func (*ObjectLiteral) TypeName() string { return "Object" }
func (o *ObjectLiteral) Inspect() string {
	parts := make([]string, len(o.Keys))
	for i, k := range o.Keys {
		parts[i] = fmt.Sprintf("%s: %s", k, o.Fields[k].Inspect())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (o *ObjectLiteral) Get(field string) (Value, bool) {
	v, ok := o.Fields[field]
	return v, ok
}

func (o *ObjectLiteral) Set(field string, v Value) {
	if _, exists := o.Fields[field]; !exists {
		o.Keys = append(o.Keys, field)
	}
	o.Fields[field] = v
}

// RecordObject is a value produced by casting to a declared record type:
// it carries the record's type name so `typeof` reports it and member
// access is validated against the declared field set.
type RecordObject struct {
	Type   string
	Keys   []string
	Fields map[string]Value
}

func (*RecordObject) valueNode()       {}
func (r *RecordObject) TypeName() string { return r.Type }
func (r *RecordObject) Inspect() string {
	parts := make([]string, len(r.Keys))
	for i, k := range r.Keys {
		parts[i] = fmt.Sprintf("%s: %s", k, r.Fields[k].Inspect())
	}
	return r.Type + "{" + strings.Join(parts, ", ") + "}"
}

func (r *RecordObject) Get(field string) (Value, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

func (r *RecordObject) Set(field string, v Value) {
	if _, exists := r.Fields[field]; !exists {
		r.Keys = append(r.Keys, field)
	}
	r.Fields[field] = v
}

type Time struct {
	T time.Time
}

func (Time) valueNode()        {}
func (Time) TypeName() string  { return "Time" }
func (t Time) Inspect() string { return t.T.Format(time.RFC3339) }

// Function is a closure: a user-defined function value capturing the
// environment active at its definition site, per spec.md's invariant
// that a function frame's parent is the defining environment, not the
// caller's.
type Function struct {
	Name   string
	Params []FunctionParam
	Body   ir.Stmt
	Env    *Environment
}

type FunctionParam struct {
	Name string
}

func (*Function) valueNode()       {}
func (*Function) TypeName() string { return "Function" }
func (f *Function) Inspect() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("fn %s(%s)", f.Name, strings.Join(names, ", "))
}

// Klass wraps a types.Klass as a first-class value, returned by a bare
// type name in expression position and by a `type` declaration.
type Klass struct {
	Underlying *types.Klass
	Name       string
}

func (*Klass) valueNode()       {}
func (k *Klass) TypeName() string { return "Klass" }
func (k *Klass) Inspect() string  { return "klass " + k.Name }

// Annotated wraps a Value produced by `cast` whose declared type is a
// generic or union so `typeof` can report the flattened annotation
// (e.g. "List<Int>") instead of the underlying concrete value's own
// natural type name.
type Annotated struct {
	Value
	Annotation string
}

func (a *Annotated) TypeName() string { return a.Annotation }

// Unwrap returns the underlying concrete Value, stripping any Annotated
// wrapper so arithmetic/member access see the real shape.
func Unwrap(v Value) Value {
	if a, ok := v.(*Annotated); ok {
		return Unwrap(a.Value)
	}
	return v
}

// Truthy implements Aua's truthiness rule: Bool is itself, Nihil is
// false, every other value is true.
func Truthy(v Value) bool {
	switch n := Unwrap(v).(type) {
	case Bool:
		return bool(n)
	case Nihil:
		return false
	default:
		return true
	}
}
