package vm

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/jweissman/aua-sub000/internal/ir"
	"github.com/jweissman/aua-sub000/internal/types"
)

// castEnvelope wraps a Klass's own JSON schema in the {"value": ...}
// object spec.md §6 specifies as the cast prompt's response shape.
func castEnvelope(schema string) (string, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
		return "", err
	}
	envelope := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"value": parsed},
		"required":   []string{"value"},
	}
	out, err := json.Marshal(envelope)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// castPrompt builds the model prompt for casting value (already
// rendered as Aua source/inspect text) to the type described by klass.
func castPrompt(value Value, klass *types.Klass) string {
	return fmt.Sprintf(
		"Convert the following value to %s (%s). Respond with only the requested value, "+
			"wrapped in the required JSON envelope.\n\nValue:\n%s",
		klass.Name(), klass.Introspect(), value.Inspect())
}

// Cast implements spec.md §4.4's universal typecasting algorithm:
// resolve the target Klass, derive its JSON schema, wrap it in the cast
// envelope, ask the model for a schema-constrained completion, extract
// the "value" field, construct the target value, and (for generic/union
// targets) tag the result with its flattened type annotation so typeof
// reports it.
func (vm *VM) Cast(value Value, t ir.Type) (Value, error) {
	klass, err := vm.Types.Resolve(t)
	if err != nil {
		return nil, fmt.Errorf("type_error: %w", err)
	}

	schema, err := types.JSONSchema(klass)
	if err != nil {
		return nil, fmt.Errorf("type_error: deriving schema for %s: %w", klass.Name(), err)
	}
	envelope, err := castEnvelope(schema)
	if err != nil {
		return nil, fmt.Errorf("type_error: %w", err)
	}

	raw, err := vm.Chat.AskWithSchema(vm.ctx(), castPrompt(value, klass), envelope)
	if err != nil {
		return nil, fmt.Errorf("model_error: %w", err)
	}

	extracted := gjson.Get(raw, "value")
	if !extracted.Exists() {
		return nil, fmt.Errorf("value_error: model response missing \"value\" field: %s", raw)
	}

	constructed, err := klass.Construct(extracted.Value())
	if err != nil {
		return nil, fmt.Errorf("value_error: %w", err)
	}

	return vm.toValue(constructed, klass), nil
}

// toValue converts a constructed Go value (the shape produced by
// types.Klass.Construct: primitives, map[string]interface{}, or
// []interface{}) into an Aua Value, tagging the result with klass's
// flattened type annotation when klass is a generic or union so typeof
// reports e.g. "List<Int>" rather than the underlying List's own name.
func (vm *VM) toValue(raw interface{}, klass *types.Klass) Value {
	if klass.IsRecord() {
		m, _ := raw.(map[string]interface{})
		rec := &RecordObject{Type: klass.Name(), Fields: map[string]Value{}}
		for _, f := range klass.Fields() {
			rec.Set(f.Name, fromDecoded(m[f.Name]))
		}
		return rec
	}
	val := fromDecoded(raw)
	if klass.IsUnion() {
		return &Annotated{Value: val, Annotation: klass.Introspect()}
	}
	if klass.Name() != val.TypeName() && klass.Name() != "" && isGenericName(klass.Name()) {
		return &Annotated{Value: val, Annotation: klass.Name()}
	}
	return val
}

func isGenericName(name string) bool {
	for _, c := range name {
		if c == '<' {
			return true
		}
	}
	return false
}
