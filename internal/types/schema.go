package types

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"
)

// JSONSchema derives the JSON-schema fragment for a Klass per the
// table in spec.md §4.5: primitives map to {"type": ...}, records to
// {"type":"object","properties":{...},"required":[...]}, generics to
// {"type":"array","items":...} (List) or additionalProperties (Dict),
// unions to {"oneOf": [...]}, and constants to a single-value enum.
//
// The caller wraps the result in the cast envelope
// {"type":"object","properties":{"value":<schema>},"required":["value"]}
// before sending it to the model, per spec.md §6.
func JSONSchema(k *Klass) (string, error) {
	switch k.kind {
	case kindPrimitive:
		return primitiveSchema(k.name)
	case kindRecord:
		return recordSchema(k)
	case kindGeneric:
		return genericSchema(k)
	case kindUnion:
		return unionSchema(k)
	case kindConstant:
		return constantSchema(k.constant)
	default:
		return `{"type":"string"}`, nil
	}
}

func primitiveSchema(name string) (string, error) {
	switch name {
	case "Int":
		return `{"type":"integer"}`, nil
	case "Float":
		return `{"type":"number"}`, nil
	case "Bool":
		return `{"type":"boolean"}`, nil
	case "Str":
		return `{"type":"string"}`, nil
	case "Nihil":
		return `{"type":"null"}`, nil
	default:
		return `{}`, nil
	}
}

func recordSchema(k *Klass) (string, error) {
	doc := `{"type":"object","properties":{},"required":[]}`
	var err error
	required := make([]string, 0, len(k.fields))
	for _, f := range k.fields {
		fieldKlassSchema, ferr := fieldSchema(f.Type)
		if ferr != nil {
			return "", ferr
		}
		doc, err = sjson.SetRaw(doc, "properties."+jsonPathEscape(f.Name), fieldKlassSchema)
		if err != nil {
			return "", err
		}
		required = append(required, f.Name)
	}
	for i, name := range required {
		doc, err = sjson.Set(doc, fmt.Sprintf("required.%d", i), name)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}

func genericSchema(k *Klass) (string, error) {
	switch k.genericOf {
	case "List":
		itemSchema, err := JSONSchema(k.genericArg[0])
		if err != nil {
			return "", err
		}
		doc := `{"type":"array"}`
		return sjson.SetRaw(doc, "items", itemSchema)
	case "Dict":
		valSchema, err := JSONSchema(k.genericArg[len(k.genericArg)-1])
		if err != nil {
			return "", err
		}
		doc := `{"type":"object"}`
		return sjson.SetRaw(doc, "additionalProperties", valSchema)
	default:
		return `{"type":"object"}`, nil
	}
}

func unionSchema(k *Klass) (string, error) {
	doc := `{"oneOf":[]}`
	var err error
	for i, arm := range k.unionArms {
		armSchema, aerr := JSONSchema(arm)
		if aerr != nil {
			return "", aerr
		}
		doc, err = sjson.SetRaw(doc, fmt.Sprintf("oneOf.%d", i), armSchema)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}

func constantSchema(c fmt.Stringer) (string, error) {
	return fmt.Sprintf(`{"enum":[%q]}`, c.String()), nil
}

// fieldSchema derives the schema embedded in a record's properties for
// one field type. Record fields carry ir.Type, not *Klass, and this
// function has no registry access, so it matches primitive names only.
func fieldSchema(t fmt.Stringer) (string, error) {
	// Int/Float/Bool/Str/Nihil map to their primitive schema. Any other
	// field type (a named record, a generic, a union or a constant) is not
	// resolved and gets the permissive {} schema.
	name := t.String()
	switch name {
	case "Int":
		return `{"type":"integer"}`, nil
	case "Float":
		return `{"type":"number"}`, nil
	case "Bool":
		return `{"type":"boolean"}`, nil
	case "Str":
		return `{"type":"string"}`, nil
	case "Nihil":
		return `{"type":"null"}`, nil
	default:
		return `{}`, nil
	}
}

func jsonPathEscape(name string) string {
	return strings.ReplaceAll(name, ".", "\\.")
}
