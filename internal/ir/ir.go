// Package ir defines Aua's intermediate representation: a closed sum of
// VM statements lowered from the AST by internal/translator, and a closed
// sum of type descriptors used by casting and the type registry.
package ir

import "github.com/jweissman/aua-sub000/internal/position"

// Stmt is one node of the IR the VM executes. Every concrete type below
// implements it; the set is closed by design so the VM's dispatch switch
// is exhaustive and the translator is the only place new shapes appear.
type Stmt interface {
	stmtNode()
	Pos() position.Position
}

type base struct{ P position.Position }

func (b base) Pos() position.Position { return b.P }

// Lit is a constant: Int, Float, Bool, Str, or Nihil depending on Kind.
type Lit struct {
	base
	Kind  string // "int" | "float" | "bool" | "str" | "nihil"
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func (Lit) stmtNode() {}

// Id looks up a bound name in the current environment.
type Id struct {
	base
	Name string
}

func (Id) stmtNode() {}

// Let assigns Value to Name: the VM updates the nearest frame that already
// binds Name, or defines it in the current frame if none does.
type Let struct {
	base
	Name  string
	Value Stmt
}

func (Let) stmtNode() {}

// Send dispatches a binary operator method (+, -, *, /, %, **, ==, !=, <,
// >, <=, >=, &&, ||) to the left operand.
type Send struct {
	base
	Op    string
	Left  Stmt
	Right Stmt
}

func (Send) stmtNode() {}

// Negate/Not are unary operators, kept distinct from Send since they take
// one operand and never promote numerically.
type Negate struct {
	base
	Operand Stmt
}

func (Negate) stmtNode() {}

type Not struct {
	base
	Operand Stmt
}

func (Not) stmtNode() {}

// Cat concatenates string representations of a sequence of values; the
// translator lowers a StructuredString's segments into the Parts of a
// single Cat node.
type Cat struct {
	base
	Parts []Stmt
}

func (Cat) stmtNode() {}

// Cons evaluates Parts as a sequence for effect, yielding the last value;
// the translator lowers BlockExpression into Cons.
type Cons struct {
	base
	Parts []Stmt
}

func (Cons) stmtNode() {}

// Gen evaluates a generative literal: Parts are concatenated into a
// prompt (string segments as-is, expression holes stringified) and the
// result is handed to the model client's Ask method.
type Gen struct {
	base
	Parts []Stmt
}

func (Gen) stmtNode() {}

// Cast performs universal typecasting of Value to Type.
type Cast struct {
	base
	Value Stmt
	Type  Type
}

func (Cast) stmtNode() {}

// Call applies Callee to Args. Callee may name a builtin or resolve to a
// user-defined Function value.
type Call struct {
	base
	Callee Stmt
	Args   []Stmt
}

func (Call) stmtNode() {}

// If/While are structural control flow.
type If struct {
	base
	Cond Stmt
	Then Stmt
	Else Stmt // nil if there is no else branch
}

func (If) stmtNode() {}

type While struct {
	base
	Cond Stmt
	Body Stmt
}

func (While) stmtNode() {}

// TypeDeclaration registers a record or union type in the type registry
// when executed.
type TypeDeclaration struct {
	base
	Name   string
	Fields []RecordField // record form
	Union  []Type        // union form
}

func (TypeDeclaration) stmtNode() {}

// RecordField is one named, typed field of a record type.
type RecordField struct {
	Name string
	Type Type
}

// FunctionDefinition builds a Function value closing over the defining
// environment.
type FunctionDefinition struct {
	base
	Name       string
	Params     []FunctionParam
	ReturnType Type // nil if undeclared
	Body       Stmt
}

// FunctionParam is one parameter of a FunctionDefinition.
type FunctionParam struct {
	Name string
	Type Type // nil if untyped
}

func (FunctionDefinition) stmtNode() {}

// ObjectLiteral builds an untyped record value.
type ObjectLiteral struct {
	base
	Fields []ObjectFieldInit
}

// ObjectFieldInit is one key/value initializer of an ObjectLiteral.
type ObjectFieldInit struct {
	Key   string
	Value Stmt
}

func (ObjectLiteral) stmtNode() {}

// ArrayLiteral builds a List value.
type ArrayLiteral struct {
	base
	Elements []Stmt
}

func (ArrayLiteral) stmtNode() {}

// MemberAccess reads Object.Field.
type MemberAccess struct {
	base
	Object Stmt
	Field  string
}

func (MemberAccess) stmtNode() {}

// MemberAssignment writes Value into Object.Field.
type MemberAssignment struct {
	base
	Object Stmt
	Field  string
	Value  Stmt
}

func (MemberAssignment) stmtNode() {}

// --- Types --------------------------------------------------------------

// Type is the closed sum of type descriptors the translator produces from
// ast.TypeExpr and the VM resolves against the type registry.
type Type interface {
	typeNode()
	String() string
}

// TypeReference names a declared or primitive type ("Int", "Person").
type TypeReference struct {
	Name string
}

func (TypeReference) typeNode()      {}
func (t TypeReference) String() string { return t.Name }

// TypeConstant is a literal used as a type, matching only that exact value.
type TypeConstant struct {
	Kind  string // "str" | "int"
	Str   string
	Int   int64
}

func (TypeConstant) typeNode() {}
func (t TypeConstant) String() string {
	if t.Kind == "int" {
		return itoa(t.Int)
	}
	return t.Str
}

// GenericType is `Name<Params...>` ("List<Int>", "Dict<Str, Int>").
type GenericType struct {
	Name   string
	Params []Type
}

func (GenericType) typeNode() {}
func (t GenericType) String() string {
	s := t.Name + "<"
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ">"
}

// RecordType is a named struct of typed fields.
type RecordType struct {
	Name   string
	Fields []RecordField
}

func (RecordType) typeNode()        {}
func (t RecordType) String() string { return t.Name }

// UnionType is a closed set of alternative types.
type UnionType struct {
	Arms []Type
}

func (UnionType) typeNode() {}
func (t UnionType) String() string {
	s := ""
	for i, a := range t.Arms {
		if i > 0 {
			s += " | "
		}
		s += a.String()
	}
	return s
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
