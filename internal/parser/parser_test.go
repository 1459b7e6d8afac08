package parser

import (
	"testing"

	"github.com/jweissman/aua-sub000/internal/ast"
	"github.com/jweissman/aua-sub000/internal/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", input, p.Errors())
	}
	return prog
}

func singleExpr(t *testing.T, input string) ast.Expression {
	t.Helper()
	prog := parseProgram(t, input)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	es, ok := prog.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected *ast.ExpressionStatement, got %T", prog.Statements[0])
	}
	return es.Expr
}

func TestOperatorPrecedenceClimbing(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 + 2 + 3", "((1 + 2) + 3)"},
		{"1 < 2 && 3 > 4", "((1 < 2) && (3 > 4))"},
		{"-1 + 2", "((-1) + 2)"},
		{"!true && false", "((!true) && false)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"2 * 3 ** 2", "(2 * (3 ** 2))"},
	}
	for _, tt := range tests {
		expr := singleExpr(t, tt.input)
		if got := expr.String(); got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestEmptyBraceIsObjectLiteral(t *testing.T) {
	expr := singleExpr(t, "{}")
	obj, ok := expr.(*ast.ObjectLiteral)
	if !ok {
		t.Fatalf("expected *ast.ObjectLiteral, got %T", expr)
	}
	if len(obj.Fields) != 0 {
		t.Fatalf("expected 0 fields, got %d", len(obj.Fields))
	}
}

func TestKeyColonBraceIsObjectLiteral(t *testing.T) {
	expr := singleExpr(t, `{ a: 1, b: 2 }`)
	obj, ok := expr.(*ast.ObjectLiteral)
	if !ok {
		t.Fatalf("expected *ast.ObjectLiteral, got %T", expr)
	}
	if len(obj.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(obj.Fields))
	}
	if obj.Fields[0].Key != "a" || obj.Fields[1].Key != "b" {
		t.Fatalf("unexpected field keys: %+v", obj.Fields)
	}
}

func TestAssignment(t *testing.T) {
	expr := singleExpr(t, "x = 10")
	assign, ok := expr.(*ast.AssignExpression)
	if !ok {
		t.Fatalf("expected *ast.AssignExpression, got %T", expr)
	}
	ident, ok := assign.Target.(*ast.Identifier)
	if !ok || ident.Value != "x" {
		t.Fatalf("expected target identifier x, got %#v", assign.Target)
	}
}

func TestTernaryIf(t *testing.T) {
	expr := singleExpr(t, `if false then 1 else 2`)
	ifExpr, ok := expr.(*ast.IfExpression)
	if !ok {
		t.Fatalf("expected *ast.IfExpression, got %T", expr)
	}
	if len(ifExpr.Consequence.Statements) != 1 || len(ifExpr.Alternative.Statements) != 1 {
		t.Fatalf("expected single-statement branches, got %#v / %#v", ifExpr.Consequence, ifExpr.Alternative)
	}
}

func TestTernaryIfWithTrailingEnd(t *testing.T) {
	prog := parseProgram(t, "if false then 1 else 2 end\n3")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
}

func TestBlockIfElifElse(t *testing.T) {
	expr := singleExpr(t, "if a\n1\nelif b\n2\nelse\n3\nend")
	outer, ok := expr.(*ast.IfExpression)
	if !ok {
		t.Fatalf("expected *ast.IfExpression, got %T", expr)
	}
	if outer.Alternative == nil || len(outer.Alternative.Statements) != 1 {
		t.Fatalf("expected synthetic alternative block wrapping elif, got %#v", outer.Alternative)
	}
	inner, ok := outer.Alternative.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement inside alternative, got %T", outer.Alternative.Statements[0])
	}
	if _, ok := inner.Expr.(*ast.IfExpression); !ok {
		t.Fatalf("expected nested *ast.IfExpression for elif, got %T", inner.Expr)
	}
}

func TestWhileLoop(t *testing.T) {
	expr := singleExpr(t, "while x < 10\nx = x + 1\nend")
	w, ok := expr.(*ast.WhileExpression)
	if !ok {
		t.Fatalf("expected *ast.WhileExpression, got %T", expr)
	}
	if len(w.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(w.Body.Statements))
	}
}

func TestWhileLoopThenMoreStatements(t *testing.T) {
	prog := parseProgram(t, "counter = 0\nwhile counter < 3\ncounter = counter + 1\nend\ncounter")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
}

func TestFunctionLiteralUntyped(t *testing.T) {
	expr := singleExpr(t, "fun add(a, b)\na + b\nend")
	fn, ok := expr.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", expr)
	}
	if fn.Name != "add" {
		t.Fatalf("expected name add, got %q", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Fatalf("unexpected params: %+v", fn.Params)
	}
	if fn.ReturnType != nil {
		t.Fatalf("expected nil return type, got %#v", fn.ReturnType)
	}
}

func TestFunctionLiteralWithTypes(t *testing.T) {
	expr := singleExpr(t, "fun add(a: Int, b: Int) -> Int\na + b\nend")
	fn, ok := expr.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", expr)
	}
	if fn.Params[0].TypeExpr == nil || fn.Params[0].TypeExpr.String() != "Int" {
		t.Fatalf("expected param 0 typed Int, got %#v", fn.Params[0].TypeExpr)
	}
	if fn.ReturnType == nil || fn.ReturnType.String() != "Int" {
		t.Fatalf("expected return type Int, got %#v", fn.ReturnType)
	}
}

func TestFunctionWithNestedTernaryIfDoubleEnd(t *testing.T) {
	expr := singleExpr(t, "fun fact(n)\nif n <= 1 then 1 else n * fact(n-1) end\nend")
	fn, ok := expr.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", expr)
	}
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d: %+v", len(fn.Body.Statements), fn.Body.Statements)
	}
}

func TestCastExpression(t *testing.T) {
	expr := singleExpr(t, `x as Int`)
	cast, ok := expr.(*ast.CastExpression)
	if !ok {
		t.Fatalf("expected *ast.CastExpression, got %T", expr)
	}
	if cast.Union {
		t.Fatalf("expected Union=false for 'as'")
	}
	if cast.TypeExpr.String() != "Int" {
		t.Fatalf("expected cast target Int, got %q", cast.TypeExpr.String())
	}
}

func TestUnionCastExpression(t *testing.T) {
	expr := singleExpr(t, `x ~ YesNo`)
	cast, ok := expr.(*ast.CastExpression)
	if !ok {
		t.Fatalf("expected *ast.CastExpression, got %T", expr)
	}
	if !cast.Union {
		t.Fatalf("expected Union=true for '~'")
	}
}

func TestTypeDeclarationRecordForm(t *testing.T) {
	prog := parseProgram(t, `type Point = { x: Int, y: Int }`)
	decl, ok := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.TypeDeclaration)
	if !ok {
		t.Fatalf("expected *ast.TypeDeclaration, got %T", prog.Statements[0])
	}
	if decl.Name != "Point" {
		t.Fatalf("expected name Point, got %q", decl.Name)
	}
	if len(decl.Fields) != 2 || decl.Fields[0].Name != "x" || decl.Fields[1].Name != "y" {
		t.Fatalf("unexpected fields: %+v", decl.Fields)
	}
	if len(decl.Union) != 0 {
		t.Fatalf("expected no union arms for record form, got %+v", decl.Union)
	}
}

func TestTypeDeclarationUnionForm(t *testing.T) {
	prog := parseProgram(t, `type Color = 'Red' | 'Blue'`)
	decl, ok := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.TypeDeclaration)
	if !ok {
		t.Fatalf("expected *ast.TypeDeclaration, got %T", prog.Statements[0])
	}
	if decl.Name != "Color" {
		t.Fatalf("expected name Color, got %q", decl.Name)
	}
	if len(decl.Union) != 2 {
		t.Fatalf("expected 2 union arms, got %d", len(decl.Union))
	}
	if _, ok := decl.Union[0].(*ast.ConstantTypeExpr); !ok {
		t.Fatalf("expected constant type arm, got %#v", decl.Union[0])
	}
}

func TestGenericTypeExpr(t *testing.T) {
	expr := singleExpr(t, `x as List<Int>`)
	cast, ok := expr.(*ast.CastExpression)
	if !ok {
		t.Fatalf("expected *ast.CastExpression, got %T", expr)
	}
	generic, ok := cast.TypeExpr.(*ast.GenericTypeExpr)
	if !ok {
		t.Fatalf("expected *ast.GenericTypeExpr, got %#v", cast.TypeExpr)
	}
	if generic.Name != "List" || len(generic.Params) != 1 || generic.Params[0].String() != "Int" {
		t.Fatalf("unexpected generic type: %+v", generic)
	}
}

func TestCommandCallSyntax(t *testing.T) {
	expr := singleExpr(t, `say "hello"`)
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected *ast.CallExpression, got %T", expr)
	}
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok || callee.Value != "say" {
		t.Fatalf("expected callee identifier say, got %#v", call.Callee)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(call.Args))
	}
}

func TestCommandCallMultipleArgs(t *testing.T) {
	expr := singleExpr(t, `import "a.aua", "b.aua"`)
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected *ast.CallExpression, got %T", expr)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
}

func TestSubtractionIsNotCommandCall(t *testing.T) {
	expr := singleExpr(t, `x - 1`)
	if _, ok := expr.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected *ast.BinaryExpression for 'x - 1', got %T", expr)
	}
}

func TestArrayLiteral(t *testing.T) {
	expr := singleExpr(t, `[1, 2, 3]`)
	arr, ok := expr.(*ast.ArrayLiteral)
	if !ok {
		t.Fatalf("expected *ast.ArrayLiteral, got %T", expr)
	}
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(arr.Elements))
	}
}

func TestMemberExpression(t *testing.T) {
	expr := singleExpr(t, `point.x`)
	mem, ok := expr.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("expected *ast.MemberExpression, got %T", expr)
	}
	if mem.Field != "x" {
		t.Fatalf("expected field x, got %q", mem.Field)
	}
	ident, ok := mem.Object.(*ast.Identifier)
	if !ok || ident.Value != "point" {
		t.Fatalf("expected object identifier point, got %#v", mem.Object)
	}
}

func TestCallExpression(t *testing.T) {
	expr := singleExpr(t, `add(1, 2)`)
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected *ast.CallExpression, got %T", expr)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
}

func TestSingleQuoteSimpleString(t *testing.T) {
	expr := singleExpr(t, `'hello world'`)
	str, ok := expr.(*ast.StructuredString)
	if !ok {
		t.Fatalf("expected *ast.StructuredString, got %T", expr)
	}
	if len(str.Segments) != 1 || str.Segments[0].Expr != nil || str.Segments[0].Literal != "hello world" {
		t.Fatalf("unexpected segments: %+v", str.Segments)
	}
}

func TestSimpleStringLiteralIsSingleSegment(t *testing.T) {
	expr := singleExpr(t, `"hello world"`)
	str, ok := expr.(*ast.StructuredString)
	if !ok {
		t.Fatalf("expected *ast.StructuredString, got %T", expr)
	}
	if len(str.Segments) != 1 || str.Segments[0].Expr != nil || str.Segments[0].Literal != "hello world" {
		t.Fatalf("unexpected segments: %+v", str.Segments)
	}
}

func TestInterpolatedStringHasEmbeddedExpression(t *testing.T) {
	expr := singleExpr(t, `"hi ${name}!"`)
	str, ok := expr.(*ast.StructuredString)
	if !ok {
		t.Fatalf("expected *ast.StructuredString, got %T", expr)
	}
	if len(str.Segments) != 3 {
		t.Fatalf("expected 3 segments (text, hole, text), got %d: %+v", len(str.Segments), str.Segments)
	}
	if str.Segments[0].Literal != "hi " || str.Segments[0].Expr != nil {
		t.Fatalf("expected leading text segment %q, got %+v", "hi ", str.Segments[0])
	}
	hole := str.Segments[1]
	if hole.Expr == nil {
		t.Fatalf("expected embedded expression in hole segment")
	}
	ident, ok := hole.Expr.(*ast.Identifier)
	if !ok || ident.Value != "name" {
		t.Fatalf("expected identifier name in hole, got %#v", hole.Expr)
	}
	if str.Segments[2].Literal != "!" {
		t.Fatalf("expected trailing text segment %q, got %+v", "!", str.Segments[2])
	}
}

func TestGenerativeStringWithHole(t *testing.T) {
	expr := singleExpr(t, `"""Describe ${topic} in one sentence."""`)
	gen, ok := expr.(*ast.GenerativeString)
	if !ok {
		t.Fatalf("expected *ast.GenerativeString, got %T", expr)
	}
	foundHole := false
	for _, seg := range gen.Segments {
		if seg.Expr != nil {
			foundHole = true
			ident, ok := seg.Expr.(*ast.Identifier)
			if !ok || ident.Value != "topic" {
				t.Fatalf("expected identifier topic in hole, got %#v", seg.Expr)
			}
		}
	}
	if !foundHole {
		t.Fatalf("expected an interpolation hole in generative string, got %+v", gen.Segments)
	}
}

func TestObjectLiteralNestedInParens(t *testing.T) {
	expr := singleExpr(t, `({ a: 1 })`)
	if _, ok := expr.(*ast.ObjectLiteral); !ok {
		t.Fatalf("expected *ast.ObjectLiteral, got %T", expr)
	}
}

func TestParseErrorsAccumulateWithPosition(t *testing.T) {
	l := lexer.New(`type = 5`)
	p := New(l)
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected at least one parse error")
	}
	for _, e := range p.Errors() {
		if e.Pos.Line == 0 && e.Pos.Column == 0 {
			t.Fatalf("expected a populated position on error %+v", e)
		}
	}
}
