// Package ast defines Aua's abstract syntax tree. Nodes follow the
// teacher's Node/Expression/Statement interface split (TokenLiteral,
// String, Pos) but carry Aua's own closed tag set instead of Pascal's.
package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jweissman/aua-sub000/internal/position"
)

// Node is the root interface every AST node satisfies.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() position.Position
}

// Expression is a Node that yields a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a Node evaluated for effect and/or its terminal value; Aua
// is expression-oriented so most statements are ExpressionStatement.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of every parsed Aua source file: a flat sequence of
// statements whose last value is the program's result.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) Pos() position.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return position.Position{}
}
func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Statements {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ExpressionStatement wraps an Expression used in statement position.
type ExpressionStatement struct {
	Token   position.Position
	Literal string
	Expr    Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Literal }
func (es *ExpressionStatement) Pos() position.Position { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expr == nil {
		return ""
	}
	return es.Expr.String()
}

// Identifier references a bound name.
type Identifier struct {
	Token position.Position
	Value string
}

func (i *Identifier) expressionNode()         {}
func (i *Identifier) TokenLiteral() string    { return i.Value }
func (i *Identifier) Pos() position.Position  { return i.Token }
func (i *Identifier) String() string          { return i.Value }

// IntLiteral is an integer constant.
type IntLiteral struct {
	Token position.Position
	Value int64
}

func (n *IntLiteral) expressionNode()        {}
func (n *IntLiteral) TokenLiteral() string   { return fmt.Sprintf("%d", n.Value) }
func (n *IntLiteral) Pos() position.Position { return n.Token }
func (n *IntLiteral) String() string         { return fmt.Sprintf("%d", n.Value) }

// FloatLiteral is a floating-point constant.
type FloatLiteral struct {
	Token position.Position
	Value float64
}

func (n *FloatLiteral) expressionNode()        {}
func (n *FloatLiteral) TokenLiteral() string   { return fmt.Sprintf("%g", n.Value) }
func (n *FloatLiteral) Pos() position.Position { return n.Token }
func (n *FloatLiteral) String() string         { return fmt.Sprintf("%g", n.Value) }

// BoolLiteral is a boolean constant.
type BoolLiteral struct {
	Token position.Position
	Value bool
}

func (n *BoolLiteral) expressionNode()        {}
func (n *BoolLiteral) TokenLiteral() string   { return fmt.Sprintf("%t", n.Value) }
func (n *BoolLiteral) Pos() position.Position { return n.Token }
func (n *BoolLiteral) String() string         { return fmt.Sprintf("%t", n.Value) }

// NihilLiteral is Aua's absence-of-value constant.
type NihilLiteral struct {
	Token position.Position
}

func (n *NihilLiteral) expressionNode()        {}
func (n *NihilLiteral) TokenLiteral() string   { return "nihil" }
func (n *NihilLiteral) Pos() position.Position { return n.Token }
func (n *NihilLiteral) String() string         { return "nihil" }

// StringSegment is one piece of a structured string literal: either a
// literal text run or an embedded expression hole.
type StringSegment struct {
	Literal string      // set when Expr == nil
	Expr    Expression  // set for ${...} holes
}

// StructuredString is a (possibly interpolated) double-quoted string
// literal, represented as an ordered list of segments so the translator
// can lower it into a single `cat` over those segments.
type StructuredString struct {
	Token    position.Position
	Segments []StringSegment
}

func (n *StructuredString) expressionNode()        {}
func (n *StructuredString) TokenLiteral() string   { return "\"" }
func (n *StructuredString) Pos() position.Position { return n.Token }
func (n *StructuredString) String() string {
	var sb strings.Builder
	sb.WriteString(`"`)
	for _, seg := range n.Segments {
		if seg.Expr != nil {
			sb.WriteString("${")
			sb.WriteString(seg.Expr.String())
			sb.WriteString("}")
		} else {
			sb.WriteString(seg.Literal)
		}
	}
	sb.WriteString(`"`)
	return sb.String()
}

// GenerativeString is a """...""" literal: text (with possible ${...}
// holes, same Segment shape) that is evaluated by a model at runtime
// rather than concatenated.
type GenerativeString struct {
	Token    position.Position
	Segments []StringSegment
}

func (n *GenerativeString) expressionNode()        {}
func (n *GenerativeString) TokenLiteral() string   { return `"""` }
func (n *GenerativeString) Pos() position.Position { return n.Token }
func (n *GenerativeString) String() string {
	var sb strings.Builder
	sb.WriteString(`"""`)
	for _, seg := range n.Segments {
		if seg.Expr != nil {
			sb.WriteString("${")
			sb.WriteString(seg.Expr.String())
			sb.WriteString("}")
		} else {
			sb.WriteString(seg.Literal)
		}
	}
	sb.WriteString(`"""`)
	return sb.String()
}

// UnaryExpression is a prefix operator applied to one operand (-x, not x).
type UnaryExpression struct {
	Token    position.Position
	Operator string
	Operand  Expression
}

func (n *UnaryExpression) expressionNode()        {}
func (n *UnaryExpression) TokenLiteral() string   { return n.Operator }
func (n *UnaryExpression) Pos() position.Position { return n.Token }
func (n *UnaryExpression) String() string {
	return fmt.Sprintf("(%s%s)", n.Operator, n.Operand.String())
}

// BinaryExpression is an infix operator applied to two operands.
type BinaryExpression struct {
	Token    position.Position
	Operator string
	Left     Expression
	Right    Expression
}

func (n *BinaryExpression) expressionNode()        {}
func (n *BinaryExpression) TokenLiteral() string   { return n.Operator }
func (n *BinaryExpression) Pos() position.Position { return n.Token }
func (n *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), n.Operator, n.Right.String())
}

// AssignExpression binds or rebinds a name: `x = v`. Per spec.md §4.4, the
// VM decides at evaluation time whether this defines a fresh binding in the
// current frame or updates one found in an enclosing frame; the surface
// grammar has no separate declaration form.
type AssignExpression struct {
	Token  position.Position
	Target Expression // Identifier or MemberExpression
	Value  Expression
}

func (n *AssignExpression) expressionNode()        {}
func (n *AssignExpression) TokenLiteral() string   { return "=" }
func (n *AssignExpression) Pos() position.Position { return n.Token }
func (n *AssignExpression) String() string {
	return fmt.Sprintf("%s = %s", n.Target.String(), n.Value.String())
}

// CallExpression applies Callee to Args.
type CallExpression struct {
	Token  position.Position
	Callee Expression
	Args   []Expression
}

func (n *CallExpression) expressionNode()        {}
func (n *CallExpression) TokenLiteral() string   { return "(" }
func (n *CallExpression) Pos() position.Position { return n.Token }
func (n *CallExpression) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Callee.String(), strings.Join(args, ", "))
}

// CastExpression casts Value to the type named by TypeExpr ("x as Int").
// Union is set when the cast was written with "~" rather than "as": the
// two forms lower identically (spec.md §4.3's dynamic_union_class and
// union_type_lookup are both just resolving TypeExpr the normal way),
// Union only affects how the node prints.
type CastExpression struct {
	Token    position.Position
	Value    Expression
	TypeExpr TypeExpr
	Union    bool
}

func (n *CastExpression) expressionNode()        {}
func (n *CastExpression) TokenLiteral() string   { return "as" }
func (n *CastExpression) Pos() position.Position { return n.Token }
func (n *CastExpression) String() string {
	op := "as"
	if n.Union {
		op = "~"
	}
	return fmt.Sprintf("(%s %s %s)", n.Value.String(), op, n.TypeExpr.String())
}

// BlockExpression is a brace-delimited sequence; its value is its last
// statement's value (nihil if empty).
type BlockExpression struct {
	Token      position.Position
	Statements []Statement
}

func (n *BlockExpression) expressionNode()        {}
func (n *BlockExpression) TokenLiteral() string   { return "{" }
func (n *BlockExpression) Pos() position.Position { return n.Token }
func (n *BlockExpression) String() string {
	var sb bytes.Buffer
	sb.WriteString("{ ")
	for i, s := range n.Statements {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(s.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

// IfExpression evaluates to Consequence's value or Alternative's value
// (nihil if Alternative is nil and the condition is false).
type IfExpression struct {
	Token       position.Position
	Condition   Expression
	Consequence *BlockExpression
	Alternative *BlockExpression
}

func (n *IfExpression) expressionNode()        {}
func (n *IfExpression) TokenLiteral() string   { return "if" }
func (n *IfExpression) Pos() position.Position { return n.Token }
func (n *IfExpression) String() string {
	s := fmt.Sprintf("if %s %s", n.Condition.String(), n.Consequence.String())
	if n.Alternative != nil {
		s += " else " + n.Alternative.String()
	}
	return s + " end"
}

// WhileExpression loops while Condition holds; its value is nihil.
type WhileExpression struct {
	Token     position.Position
	Condition Expression
	Body      *BlockExpression
}

func (n *WhileExpression) expressionNode()        {}
func (n *WhileExpression) TokenLiteral() string   { return "while" }
func (n *WhileExpression) Pos() position.Position { return n.Token }
func (n *WhileExpression) String() string {
	return fmt.Sprintf("while %s %s end", n.Condition.String(), n.Body.String())
}

// Param is one function parameter, with an optional declared type.
type Param struct {
	Name     string
	TypeExpr TypeExpr // nil if untyped
}

// FunctionLiteral defines a closure value.
type FunctionLiteral struct {
	Token      position.Position
	Name       string // "" for an anonymous function literal
	Params     []Param
	ReturnType TypeExpr // nil if undeclared
	Body       *BlockExpression
}

func (n *FunctionLiteral) expressionNode()        {}
func (n *FunctionLiteral) TokenLiteral() string   { return "fun" }
func (n *FunctionLiteral) Pos() position.Position { return n.Token }
func (n *FunctionLiteral) String() string {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Name
	}
	return fmt.Sprintf("fun %s(%s) %s end", n.Name, strings.Join(params, ", "), n.Body.String())
}

// ArrayLiteral is a `[e1, e2, ...]` expression.
type ArrayLiteral struct {
	Token    position.Position
	Elements []Expression
}

func (n *ArrayLiteral) expressionNode()        {}
func (n *ArrayLiteral) TokenLiteral() string   { return "[" }
func (n *ArrayLiteral) Pos() position.Position { return n.Token }
func (n *ArrayLiteral) String() string {
	elems := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// ObjectField is one key: value entry of an object literal.
type ObjectField struct {
	Key   string
	Value Expression
}

// ObjectLiteral is a `{ k: v, ... }` expression, Aua's untyped record value.
type ObjectLiteral struct {
	Token  position.Position
	Fields []ObjectField
}

func (n *ObjectLiteral) expressionNode()        {}
func (n *ObjectLiteral) TokenLiteral() string   { return "{" }
func (n *ObjectLiteral) Pos() position.Position { return n.Token }
func (n *ObjectLiteral) String() string {
	fields := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Key, f.Value.String())
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

// MemberExpression is `obj.field`.
type MemberExpression struct {
	Token  position.Position
	Object Expression
	Field  string
}

func (n *MemberExpression) expressionNode()        {}
func (n *MemberExpression) TokenLiteral() string   { return "." }
func (n *MemberExpression) Pos() position.Position { return n.Token }
func (n *MemberExpression) String() string {
	return fmt.Sprintf("%s.%s", n.Object.String(), n.Field)
}

// FieldDef is one field of a `type` record declaration.
type FieldDef struct {
	Name     string
	TypeExpr TypeExpr
}

// TypeDeclaration introduces a named record or union type into the type
// registry.
type TypeDeclaration struct {
	Token  position.Position
	Name   string
	Fields []FieldDef // record form
	Union  []TypeExpr // union form (len > 0 when this is a union declaration)
}

func (n *TypeDeclaration) expressionNode()        {}
func (n *TypeDeclaration) TokenLiteral() string   { return "type" }
func (n *TypeDeclaration) Pos() position.Position { return n.Token }
func (n *TypeDeclaration) String() string {
	return fmt.Sprintf("type %s", n.Name)
}

// --- Type expressions -------------------------------------------------

// TypeExpr is the AST-level representation of a type annotation; the
// translator lowers it into an ir.Type.
type TypeExpr interface {
	Node
	typeExprNode()
}

// TypeName references a declared or primitive type by name.
type TypeName struct {
	Token position.Position
	Name  string
}

func (n *TypeName) typeExprNode()           {}
func (n *TypeName) TokenLiteral() string    { return n.Name }
func (n *TypeName) Pos() position.Position  { return n.Token }
func (n *TypeName) String() string          { return n.Name }

// GenericTypeExpr is `Name<Param,...>`.
type GenericTypeExpr struct {
	Token  position.Position
	Name   string
	Params []TypeExpr
}

func (n *GenericTypeExpr) typeExprNode()          {}
func (n *GenericTypeExpr) TokenLiteral() string   { return n.Name }
func (n *GenericTypeExpr) Pos() position.Position { return n.Token }
func (n *GenericTypeExpr) String() string {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s<%s>", n.Name, strings.Join(params, ", "))
}

// UnionTypeExpr is `A | B | ...`.
type UnionTypeExpr struct {
	Token position.Position
	Arms  []TypeExpr
}

func (n *UnionTypeExpr) typeExprNode()          {}
func (n *UnionTypeExpr) TokenLiteral() string   { return "|" }
func (n *UnionTypeExpr) Pos() position.Position { return n.Token }
func (n *UnionTypeExpr) String() string {
	arms := make([]string, len(n.Arms))
	for i, a := range n.Arms {
		arms[i] = a.String()
	}
	return strings.Join(arms, " | ")
}

// RecordTypeExpr is `{ field: type, ... }` used as a type_expr primary, e.g.
// `type Point = { x: Int, y: Int }`.
type RecordTypeExpr struct {
	Token  position.Position
	Fields []FieldDef
}

func (n *RecordTypeExpr) typeExprNode()          {}
func (n *RecordTypeExpr) TokenLiteral() string   { return "{" }
func (n *RecordTypeExpr) Pos() position.Position { return n.Token }
func (n *RecordTypeExpr) String() string {
	fields := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.TypeExpr.String())
	}
	return "{ " + strings.Join(fields, ", ") + " }"
}

// ConstantTypeExpr is a literal used as a type ("Red" in Color = "Red" | "Blue").
type ConstantTypeExpr struct {
	Token position.Position
	Value Expression
}

func (n *ConstantTypeExpr) typeExprNode()          {}
func (n *ConstantTypeExpr) TokenLiteral() string   { return n.Value.TokenLiteral() }
func (n *ConstantTypeExpr) Pos() position.Position { return n.Token }
func (n *ConstantTypeExpr) String() string          { return n.Value.String() }
