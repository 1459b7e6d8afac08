package vm

import (
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/maruel/natural"
	"github.com/tidwall/gjson"
)

// RegisterBuiltins populates reg with Aua's fixed builtin vocabulary from
// spec.md §6. Each one is grounded on the teacher's builtins.Registry
// dispatch style: a name, a Category, and a BuiltinFunc closure.
func RegisterBuiltins(reg *Registry) {
	reg.Register(&FunctionInfo{Name: "say", Category: CategoryIO, Function: builtinSay})
	reg.Register(&FunctionInfo{Name: "ask", Category: CategoryModel, Function: builtinAsk})
	reg.Register(&FunctionInfo{Name: "chat", Category: CategoryModel, Function: builtinChat})
	reg.Register(&FunctionInfo{Name: "time", Category: CategorySystem, Function: builtinTime})
	reg.Register(&FunctionInfo{Name: "rand", Category: CategorySystem, Function: builtinRand})
	reg.Register(&FunctionInfo{Name: "inspect", Category: CategoryIO, Function: builtinInspect})
	reg.Register(&FunctionInfo{Name: "typeof", Category: CategoryCasting, Function: builtinTypeof})
	reg.Register(&FunctionInfo{Name: "see_url", Category: CategoryModel, Function: builtinSeeURL})
	reg.Register(&FunctionInfo{Name: "semantic_fuzzy_eq", Category: CategoryModel, Function: builtinSemanticFuzzyEq})
	reg.Register(&FunctionInfo{Name: "size", Category: CategoryData, Function: builtinSize})
	reg.Register(&FunctionInfo{Name: "write_file", Category: CategoryIO, Function: builtinWriteFile})
	reg.Register(&FunctionInfo{Name: "list_files", Category: CategoryIO, Function: builtinListFiles})
	reg.Register(&FunctionInfo{Name: "load_yaml", Category: CategoryData, Function: builtinLoadYAML})
	reg.Register(&FunctionInfo{Name: "parse_yaml", Category: CategoryData, Function: builtinParseYAML})
	reg.Register(&FunctionInfo{Name: "dump_yaml", Category: CategoryData, Function: builtinDumpYAML})
	reg.Register(&FunctionInfo{Name: "import", Category: CategorySystem, Function: builtinImport})
}

func arity(name string, args []Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("arity_error: %s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func builtinSay(vm *VM, args []Value) (Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = stringify(a)
	}
	line := ""
	for i, p := range parts {
		if i > 0 {
			line += " "
		}
		line += p
	}
	fmt.Fprintln(vm.Output, line)
	return Nihil{}, nil
}

func builtinAsk(vm *VM, args []Value) (Value, error) {
	if err := arity("ask", args, 1); err != nil {
		return nil, err
	}
	prompt := stringify(args[0])
	text, err := vm.Chat.Ask(vm.ctx(), prompt)
	if err != nil {
		return nil, fmt.Errorf("model_error: %w", err)
	}
	return Str(text), nil
}

// builtinChat is `ask`'s multi-turn sibling: each arg is concatenated as
// a message in a single user turn, since Aua has no separate message-role
// type in its value sum.
func builtinChat(vm *VM, args []Value) (Value, error) {
	prompt := ""
	for i, a := range args {
		if i > 0 {
			prompt += "\n"
		}
		prompt += stringify(a)
	}
	text, err := vm.Chat.Ask(vm.ctx(), prompt)
	if err != nil {
		return nil, fmt.Errorf("model_error: %w", err)
	}
	return Str(text), nil
}

func builtinTime(vm *VM, args []Value) (Value, error) {
	return Time{T: time.Now()}, nil
}

func builtinRand(vm *VM, args []Value) (Value, error) {
	if len(args) == 0 {
		return Float(rand.Float64()), nil
	}
	n, ok := Unwrap(args[0]).(Int)
	if !ok {
		return nil, fmt.Errorf("type_error: rand expects an Int upper bound")
	}
	if n <= 0 {
		return nil, fmt.Errorf("value_error: rand upper bound must be positive")
	}
	return Int(rand.Int63n(int64(n) + 1)), nil
}

func builtinInspect(vm *VM, args []Value) (Value, error) {
	if err := arity("inspect", args, 1); err != nil {
		return nil, err
	}
	return Str(args[0].Inspect()), nil
}

func builtinTypeof(vm *VM, args []Value) (Value, error) {
	if err := arity("typeof", args, 1); err != nil {
		return nil, err
	}
	return Str(args[0].TypeName()), nil
}

// builtinSeeURL performs a real HTTP GET against url and returns the
// response body as a Str; a non-2xx status is an io_error rather than a
// silently-returned error page.
func builtinSeeURL(vm *VM, args []Value) (Value, error) {
	if err := arity("see_url", args, 1); err != nil {
		return nil, err
	}
	url := stringify(args[0])
	req, err := http.NewRequestWithContext(vm.ctx(), http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("io_error: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("io_error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("io_error: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("io_error: %s returned status %d", url, resp.StatusCode)
	}
	return Str(body), nil
}

const semanticFuzzyEqSchema = `{"type":"object","properties":{"value":{"type":"boolean"},"reason":{"type":"string"}},"required":["value","reason"]}`

// builtinSemanticFuzzyEq routes the comparison through AskWithSchema so
// the model's answer is constrained to a {value, reason} envelope
// instead of sniffed from free text, matching Cast's schema-constrained
// pattern in cast.go.
func builtinSemanticFuzzyEq(vm *VM, args []Value) (Value, error) {
	if err := arity("semantic_fuzzy_eq", args, 2); err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(
		"Do these two values mean approximately the same thing? Respond with the required JSON envelope.\nA: %s\nB: %s",
		stringify(args[0]), stringify(args[1]))
	raw, err := vm.Chat.AskWithSchema(vm.ctx(), prompt, semanticFuzzyEqSchema)
	if err != nil {
		return nil, fmt.Errorf("model_error: %w", err)
	}
	value := gjson.Get(raw, "value")
	if !value.Exists() {
		return nil, fmt.Errorf("value_error: model response missing \"value\" field: %s", raw)
	}
	return Bool(value.Bool()), nil
}

// builtinImport is spec.md's `import "path.aua"` form: an ordinary
// command call (see parser.startsCommandCallArg), not a keyword, that
// runs another source file against this VM's global environment.
func builtinImport(vm *VM, args []Value) (Value, error) {
	if err := arity("import", args, 1); err != nil {
		return nil, err
	}
	return vm.runImport(stringify(args[0]))
}

func builtinSize(vm *VM, args []Value) (Value, error) {
	if err := arity("size", args, 1); err != nil {
		return nil, err
	}
	switch v := Unwrap(args[0]).(type) {
	case *List:
		return Int(len(v.Items)), nil
	case *Dict:
		return Int(len(v.Keys)), nil
	case Str:
		return Int(len(string(v))), nil
	case *ObjectLiteral:
		return Int(len(v.Keys)), nil
	case *RecordObject:
		return Int(len(v.Keys)), nil
	default:
		return nil, fmt.Errorf("type_error: size is not defined for %s", v.TypeName())
	}
}

func builtinWriteFile(vm *VM, args []Value) (Value, error) {
	if err := arity("write_file", args, 2); err != nil {
		return nil, err
	}
	path := stringify(args[0])
	content := stringify(args[1])
	if err := os.WriteFile(vm.resolvePath(path), []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("io_error: %w", err)
	}
	return Nihil{}, nil
}

// builtinListFiles lists a directory's entries in natural (human) order
// rather than byte-wise lexical order, using maruel/natural the same way
// a file-browsing feature in the teacher's corpus would.
func builtinListFiles(vm *VM, args []Value) (Value, error) {
	dir := "."
	if len(args) == 1 {
		dir = stringify(args[0])
	}
	entries, err := os.ReadDir(vm.resolvePath(dir))
	if err != nil {
		return nil, fmt.Errorf("io_error: %w", err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	natural.Sort(names)
	items := make([]Value, len(names))
	for i, n := range names {
		items[i] = Str(n)
	}
	return &List{Items: items}, nil
}

func builtinLoadYAML(vm *VM, args []Value) (Value, error) {
	if err := arity("load_yaml", args, 1); err != nil {
		return nil, err
	}
	path := vm.resolvePath(stringify(args[0]))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("io_error: %w", err)
	}
	return parseYAMLBytes(raw)
}

func builtinParseYAML(vm *VM, args []Value) (Value, error) {
	if err := arity("parse_yaml", args, 1); err != nil {
		return nil, err
	}
	return parseYAMLBytes([]byte(stringify(args[0])))
}

func parseYAMLBytes(raw []byte) (Value, error) {
	var decoded interface{}
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("value_error: invalid yaml: %w", err)
	}
	return fromDecoded(decoded), nil
}

func builtinDumpYAML(vm *VM, args []Value) (Value, error) {
	if err := arity("dump_yaml", args, 1); err != nil {
		return nil, err
	}
	encoded, err := yaml.Marshal(toDecoded(args[0]))
	if err != nil {
		return nil, fmt.Errorf("value_error: %w", err)
	}
	return Str(encoded), nil
}

// fromDecoded converts a generic decoded YAML/JSON value (as produced by
// goccy/go-yaml's Unmarshal into interface{}) into an Aua Value.
func fromDecoded(v interface{}) Value {
	switch n := v.(type) {
	case nil:
		return Nihil{}
	case bool:
		return Bool(n)
	case int:
		return Int(int64(n))
	case int64:
		return Int(n)
	case uint64:
		return Int(int64(n))
	case float64:
		return Float(n)
	case string:
		return Str(n)
	case []interface{}:
		items := make([]Value, len(n))
		for i, el := range n {
			items[i] = fromDecoded(el)
		}
		return &List{Items: items}
	case map[string]interface{}:
		d := NewDict()
		for k, val := range n {
			d.Set(k, fromDecoded(val))
		}
		return d
	default:
		return Str(fmt.Sprintf("%v", n))
	}
}

// toDecoded is fromDecoded's inverse, used by dump_yaml to hand
// goccy/go-yaml a plain interface{} tree to marshal.
func toDecoded(v Value) interface{} {
	switch n := Unwrap(v).(type) {
	case Nihil:
		return nil
	case Bool:
		return bool(n)
	case Int:
		return int64(n)
	case Float:
		return float64(n)
	case Str:
		return string(n)
	case *List:
		out := make([]interface{}, len(n.Items))
		for i, it := range n.Items {
			out[i] = toDecoded(it)
		}
		return out
	case *Dict:
		out := make(map[string]interface{}, len(n.Keys))
		for _, k := range n.Keys {
			out[k] = toDecoded(n.Values[k])
		}
		return out
	case *ObjectLiteral:
		out := make(map[string]interface{}, len(n.Keys))
		for _, k := range n.Keys {
			out[k] = toDecoded(n.Fields[k])
		}
		return out
	case *RecordObject:
		out := make(map[string]interface{}, len(n.Keys))
		for _, k := range n.Keys {
			out[k] = toDecoded(n.Fields[k])
		}
		return out
	default:
		return n.Inspect()
	}
}

func stringify(v Value) string {
	if s, ok := Unwrap(v).(Str); ok {
		return string(s)
	}
	return v.Inspect()
}

func (vm *VM) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if vm.ImportRoot == "" {
		return p
	}
	return filepath.Join(vm.ImportRoot, p)
}
