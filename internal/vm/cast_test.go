package vm

import (
	"testing"

	"github.com/jweissman/aua-sub000/internal/chat"
)

func TestCastToPrimitiveInt(t *testing.T) {
	v := New(nil, &chat.Static{SchemaResponse: `{"value": 42}`})
	result, err := v.Run(`"forty-two" as Int`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(Int) != 42 {
		t.Fatalf("expected 42, got %s", result.Inspect())
	}
}

func TestCastToRecordBuildsRecordObject(t *testing.T) {
	v := New(nil, &chat.Static{SchemaResponse: `{"value": {"name": "Ada", "age": 36}}`})
	src := `type Person = { name: Str, age: Int }
"Ada, 36 years old" as Person`
	result, err := v.Run(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, ok := result.(*RecordObject)
	if !ok {
		t.Fatalf("expected *RecordObject, got %T", result)
	}
	if rec.Type != "Person" {
		t.Fatalf("expected type Person, got %q", rec.Type)
	}
	name, _ := rec.Get("name")
	if name.(Str) != "Ada" {
		t.Fatalf("expected name Ada, got %v", name)
	}
	age, _ := rec.Get("age")
	if age.(Int) != 36 {
		t.Fatalf("expected age 36, got %v", age)
	}
}

func TestCastToGenericListTagsAnnotation(t *testing.T) {
	v := New(nil, &chat.Static{SchemaResponse: `{"value": [1, 2, 3]}`})
	result, err := v.Run(`"one, two, three" as List<Int>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ann, ok := result.(*Annotated)
	if !ok {
		t.Fatalf("expected *Annotated, got %T", result)
	}
	if ann.TypeName() != "List<Int>" {
		t.Fatalf("expected annotation List<Int>, got %q", ann.TypeName())
	}
	list, ok := Unwrap(result).(*List)
	if !ok || len(list.Items) != 3 {
		t.Fatalf("expected underlying List of 3, got %#v", Unwrap(result))
	}
}

func TestCastToUnionTagsFlattenedAnnotation(t *testing.T) {
	v := New(nil, &chat.Static{SchemaResponse: `{"value": 5}`})
	result, err := v.Run(`"five" as Int | Str`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ann, ok := result.(*Annotated)
	if !ok {
		t.Fatalf("expected *Annotated, got %T", result)
	}
	if ann.TypeName() != "Int | Str" {
		t.Fatalf("expected annotation %q, got %q", "Int | Str", ann.TypeName())
	}
}

func TestCastMissingValueFieldErrors(t *testing.T) {
	v := New(nil, &chat.Static{SchemaResponse: `{"wrong_key": 42}`})
	if _, err := v.Run(`"x" as Int`); err == nil {
		t.Fatalf("expected value_error for missing value field")
	}
}

func TestCastModelErrorPropagates(t *testing.T) {
	v := New(nil, &chat.Static{Err: errStatic("boom")})
	if _, err := v.Run(`"x" as Int`); err == nil {
		t.Fatalf("expected model_error to propagate")
	}
}

func TestCastUnknownTypeErrors(t *testing.T) {
	v := New(nil, &chat.Static{SchemaResponse: `{"value": 1}`})
	if _, err := v.Run(`"x" as Nonexistent`); err == nil {
		t.Fatalf("expected type_error for unresolvable cast target")
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func errStatic(msg string) error { return errString(msg) }
