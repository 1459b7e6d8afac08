package vm

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jweissman/aua-sub000/internal/chat"
)

func TestBuiltinAskDelegatesToChatClient(t *testing.T) {
	v := New(nil, &chat.Static{Response: "42"})
	result, err := v.Run(`ask "what is the answer"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(Str) != "42" {
		t.Fatalf("expected %q, got %q", "42", result.(Str))
	}
}

func TestBuiltinAskPropagatesModelError(t *testing.T) {
	v := New(nil, &chat.Static{Err: errStatic("unreachable")})
	if _, err := v.Run(`ask "hello"`); err == nil {
		t.Fatalf("expected model_error")
	}
}

func TestBuiltinTypeofReportsNaturalTypeName(t *testing.T) {
	v := New(nil, &chat.Static{})
	result, err := v.Run(`typeof(1)`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(Str) != "Int" {
		t.Fatalf("expected Int, got %q", result.(Str))
	}
}

func TestBuiltinInspectRendersValue(t *testing.T) {
	v := New(nil, &chat.Static{})
	result, err := v.Run(`inspect([1, 2])`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(Str) != "[1, 2]" {
		t.Fatalf("expected [1, 2], got %q", result.(Str))
	}
}

func TestBuiltinSizeOnVariousTypes(t *testing.T) {
	v := New(nil, &chat.Static{})
	cases := map[string]int64{
		`size([1, 2, 3])`:   3,
		`size("hello")`:     5,
		`size({ a: 1 })`:    1,
	}
	for src, want := range cases {
		result, err := v.Run(src)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", src, err)
		}
		if int64(result.(Int)) != want {
			t.Errorf("%q: expected %d, got %s", src, want, result.Inspect())
		}
	}
}

func TestBuiltinRandRejectsNonPositiveBound(t *testing.T) {
	v := New(nil, &chat.Static{})
	if _, err := v.Run(`rand(0)`); err == nil {
		t.Fatalf("expected value_error for non-positive rand bound")
	}
}

func TestBuiltinWriteFileAndListFiles(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}
	v := New(out, &chat.Static{})
	v.ImportRoot = dir

	if _, err := v.Run(`write_file("hello.txt", "hi there")`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "hello.txt"))
	if err != nil {
		t.Fatalf("expected file to be written: %v", err)
	}
	if string(content) != "hi there" {
		t.Fatalf("expected %q, got %q", "hi there", content)
	}

	result, err := v.Run(`list_files(".")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := result.(*List)
	if !ok || len(list.Items) != 1 {
		t.Fatalf("expected a 1-item list, got %#v", result)
	}
	if list.Items[0].(Str) != "hello.txt" {
		t.Fatalf("expected hello.txt, got %v", list.Items[0])
	}
}

func TestBuiltinParseYAMLDecodesMapping(t *testing.T) {
	v := New(nil, &chat.Static{})
	result, err := v.Run(`parse_yaml("name: Ada\nage: 36")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dict, ok := result.(*Dict)
	if !ok {
		t.Fatalf("expected *Dict, got %T", result)
	}
	name, ok := dict.Values["name"]
	if !ok || name.(Str) != "Ada" {
		t.Fatalf("expected name Ada, got %v", dict.Values)
	}
	age, ok := dict.Values["age"]
	if !ok || age.(Int) != 36 {
		t.Fatalf("expected age 36, got %v", dict.Values)
	}
}

func TestBuiltinDumpYAMLProducesText(t *testing.T) {
	v := New(nil, &chat.Static{})
	result, err := v.Run(`dump_yaml({ name: "Ada" })`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(result.(Str))
	if s == "" {
		t.Fatalf("expected non-empty YAML output")
	}
}

func TestBuiltinSemanticFuzzyEqAsksModel(t *testing.T) {
	v := New(nil, &chat.Static{SchemaResponse: `{"value": true, "reason": "both mean large"}`})
	result, err := v.Run(`semantic_fuzzy_eq("big", "large")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(Bool) != true {
		t.Fatalf("expected true, got %v", result)
	}
}

func TestBuiltinSemanticFuzzyEqViaTildeEqualsOperator(t *testing.T) {
	v := New(nil, &chat.Static{SchemaResponse: `{"value": false, "reason": "different"}`})
	result, err := v.Run(`"big" ~= "tiny"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(Bool) != false {
		t.Fatalf("expected false, got %v", result)
	}
}

func TestBuiltinSeeURLFetchesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "page contents")
	}))
	defer srv.Close()

	v := New(nil, &chat.Static{})
	result, err := v.Run(fmt.Sprintf(`see_url("%s")`, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(Str) != "page contents" {
		t.Fatalf("expected %q, got %q", "page contents", result.(Str))
	}
}

func TestBuiltinSeeURLNonSuccessIsIoError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	v := New(nil, &chat.Static{})
	if _, err := v.Run(fmt.Sprintf(`see_url("%s")`, srv.URL)); err == nil {
		t.Fatalf("expected io_error for non-success status")
	}
}

func TestBuiltinArityErrorsOnWrongArgCount(t *testing.T) {
	v := New(nil, &chat.Static{})
	if _, err := v.Run(`inspect(1, 2)`); err == nil {
		t.Fatalf("expected arity_error")
	}
}

func TestUnknownBuiltinNameErrors(t *testing.T) {
	v := New(nil, &chat.Static{})
	if _, err := v.Run(`totally_unknown_builtin(1)`); err == nil {
		t.Fatalf("expected name_error for unknown builtin")
	}
}
