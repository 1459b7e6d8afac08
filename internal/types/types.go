// Package types implements Aua's closed-sum type system: Klass
// descriptors, the process-lifetime type registry, and JSON-schema
// derivation for schema-constrained model completion.
package types

import (
	"fmt"
	"sync"

	"github.com/jweissman/aua-sub000/internal/ir"
)

// Klass is a runtime type descriptor: the capability object spec.md's VM
// uses to introspect a type, derive its JSON schema, and construct a
// value of that type from a raw decoded JSON payload.
type Klass struct {
	name       string
	kind       klassKind
	fields     []ir.RecordField
	genericOf  string
	genericArg []*Klass
	unionArms  []*Klass
	constant   ir.TypeConstant
	isConstant bool
	construct  func(raw interface{}) (interface{}, error)
}

type klassKind int

const (
	kindPrimitive klassKind = iota
	kindRecord
	kindGeneric
	kindUnion
	kindConstant
)

// Name returns the type's declared or primitive name.
func (k *Klass) Name() string { return k.name }

// Introspect returns a human-readable description of the type's shape,
// used in cast prompts and as the annotation on union cast results.
func (k *Klass) Introspect() string {
	switch k.kind {
	case kindRecord:
		s := k.name + " {"
		for i, f := range k.fields {
			if i > 0 {
				s += ", "
			}
			s += f.Name + ": " + f.Type.String()
		}
		return s + "}"
	case kindUnion:
		s := ""
		for i, arm := range k.unionArms {
			if i > 0 {
				s += " | "
			}
			s += arm.Name()
		}
		return s
	case kindGeneric:
		s := k.genericOf + "<"
		for i, a := range k.genericArg {
			if i > 0 {
				s += ", "
			}
			s += a.Name()
		}
		return s + ">"
	default:
		return k.name
	}
}

// Fields exposes a record Klass's field list (nil for non-records).
func (k *Klass) Fields() []ir.RecordField { return k.fields }

// UnionArms exposes a union Klass's alternative Klasses (nil otherwise).
func (k *Klass) UnionArms() []*Klass { return k.unionArms }

// IsUnion reports whether the Klass describes a union type.
func (k *Klass) IsUnion() bool { return k.kind == kindUnion }

// IsRecord reports whether the Klass describes a record type.
func (k *Klass) IsRecord() bool { return k.kind == kindRecord }

// Construct builds a value of this type from a decoded JSON payload
// (map[string]interface{}, string, float64, bool, or nil, per
// encoding/json's default unmarshal shape). Primitive klasses coerce the
// raw value directly; record klasses expect a map and recursively
// construct each field.
func (k *Klass) Construct(raw interface{}) (interface{}, error) {
	if k.construct != nil {
		return k.construct(raw)
	}
	return raw, nil
}

// Registry is the process-lifetime name -> Klass map. Registration is
// append-only with last-writer-wins on redefinition, matching the
// teacher's builtins Registry shape (mutex-guarded map, case-sensitive
// here since Aua type names are case-sensitive unlike DWScript identifiers).
type Registry struct {
	mu    sync.RWMutex
	store map[string]*Klass
}

// NewRegistry returns a Registry pre-seeded with Aua's primitive klasses.
func NewRegistry() *Registry {
	r := &Registry{store: make(map[string]*Klass)}
	for _, name := range []string{"Int", "Float", "Bool", "Str", "Nihil", "List", "Dict", "Any"} {
		r.Register(primitiveKlass(name))
	}
	return r
}

func primitiveKlass(name string) *Klass {
	return &Klass{name: name, kind: kindPrimitive, construct: coercePrimitive(name)}
}

func coercePrimitive(name string) func(interface{}) (interface{}, error) {
	return func(raw interface{}) (interface{}, error) {
		switch name {
		case "Int":
			switch v := raw.(type) {
			case float64:
				return int64(v), nil
			case int64:
				return v, nil
			case string:
				var n int64
				_, err := fmt.Sscanf(v, "%d", &n)
				return n, err
			}
			return nil, fmt.Errorf("cannot construct Int from %T", raw)
		case "Float":
			switch v := raw.(type) {
			case float64:
				return v, nil
			case int64:
				return float64(v), nil
			}
			return nil, fmt.Errorf("cannot construct Float from %T", raw)
		case "Bool":
			if v, ok := raw.(bool); ok {
				return v, nil
			}
			return nil, fmt.Errorf("cannot construct Bool from %T", raw)
		case "Str":
			if v, ok := raw.(string); ok {
				return v, nil
			}
			return fmt.Sprintf("%v", raw), nil
		case "Nihil":
			return nil, nil
		default:
			return raw, nil
		}
	}
}

// Register adds or replaces a Klass under its own name.
func (r *Registry) Register(k *Klass) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[k.name] = k
}

// Lookup resolves a type name to its Klass.
func (r *Registry) Lookup(name string) (*Klass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.store[name]
	return k, ok
}

// DeclareRecord registers a new named record type and returns its Klass.
func (r *Registry) DeclareRecord(name string, fields []ir.RecordField) *Klass {
	k := &Klass{name: name, kind: kindRecord, fields: fields}
	k.construct = func(raw interface{}) (interface{}, error) {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("cannot construct %s from %T", name, raw)
		}
		out := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			fk, err := r.Resolve(f.Type)
			if err != nil {
				return nil, err
			}
			val, err := fk.Construct(m[f.Name])
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			out[f.Name] = val
		}
		return out, nil
	}
	r.Register(k)
	return k
}

// DeclareUnion registers a new named union type and returns its Klass.
func (r *Registry) DeclareUnion(name string, arms []ir.Type) (*Klass, error) {
	armKlasses := make([]*Klass, len(arms))
	for i, a := range arms {
		ak, err := r.Resolve(a)
		if err != nil {
			return nil, err
		}
		armKlasses[i] = ak
	}
	k := &Klass{name: name, kind: kindUnion, unionArms: armKlasses}
	r.Register(k)
	return k, nil
}

// Resolve turns an ir.Type into its Klass, declaring anonymous generic,
// union, and constant klasses on demand (these are not registered under
// a name since only `type` declarations name types).
func (r *Registry) Resolve(t ir.Type) (*Klass, error) {
	switch n := t.(type) {
	case ir.TypeReference:
		if k, ok := r.Lookup(n.Name); ok {
			return k, nil
		}
		return nil, fmt.Errorf("unknown type %q", n.Name)
	case ir.GenericType:
		params := make([]*Klass, len(n.Params))
		for i, p := range n.Params {
			pk, err := r.Resolve(p)
			if err != nil {
				return nil, err
			}
			params[i] = pk
		}
		return &Klass{
			name:       n.String(),
			kind:       kindGeneric,
			genericOf:  n.Name,
			genericArg: params,
			construct:  genericConstruct(n.Name, params),
		}, nil
	case ir.UnionType:
		arms := make([]*Klass, len(n.Arms))
		for i, a := range n.Arms {
			ak, err := r.Resolve(a)
			if err != nil {
				return nil, err
			}
			arms[i] = ak
		}
		return &Klass{name: n.String(), kind: kindUnion, unionArms: arms}, nil
	case ir.TypeConstant:
		return &Klass{name: n.String(), kind: kindConstant, constant: n, isConstant: true,
			construct: func(raw interface{}) (interface{}, error) { return raw, nil }}, nil
	case ir.RecordType:
		if k, ok := r.Lookup(n.Name); ok {
			return k, nil
		}
		return r.DeclareRecord(n.Name, n.Fields), nil
	default:
		return nil, fmt.Errorf("unresolvable type %T", t)
	}
}

func genericConstruct(name string, params []*Klass) func(interface{}) (interface{}, error) {
	return func(raw interface{}) (interface{}, error) {
		switch name {
		case "List":
			arr, ok := raw.([]interface{})
			if !ok {
				return nil, fmt.Errorf("cannot construct List from %T", raw)
			}
			elemKlass := params[0]
			out := make([]interface{}, len(arr))
			for i, el := range arr {
				v, err := elemKlass.Construct(el)
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return out, nil
		case "Dict":
			m, ok := raw.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("cannot construct Dict from %T", raw)
			}
			valKlass := params[len(params)-1]
			out := make(map[string]interface{}, len(m))
			for k, v := range m {
				cv, err := valKlass.Construct(v)
				if err != nil {
					return nil, err
				}
				out[k] = cv
			}
			return out, nil
		default:
			return raw, nil
		}
	}
}
