// Package translator lowers an AST into the VM's IR. It is a single
// recursive descent over ast.Node, mirroring the shape of the teacher's
// semantic-analysis passes but performing lowering rather than static
// checking, since Aua resolves types dynamically at cast time instead of
// at compile time.
package translator

import (
	"github.com/jweissman/aua-sub000/internal/ast"
	"github.com/jweissman/aua-sub000/internal/ir"
	"github.com/jweissman/aua-sub000/internal/position"
)

// Translate lowers a parsed Program into a single Cons IR node whose
// value is the program's result.
func Translate(prog *ast.Program) ir.Stmt {
	return lowerBlock(prog.Statements, prog.Pos())
}

func lowerBlock(stmts []ast.Statement, _ position.Position) ir.Stmt {
	parts := make([]ir.Stmt, 0, len(stmts))
	for _, s := range stmts {
		parts = append(parts, lowerStatement(s))
	}
	return &ir.Cons{Parts: parts}
}

func lowerStatement(s ast.Statement) ir.Stmt {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		if n.Expr == nil {
			return litNihil()
		}
		return lowerExpr(n.Expr)
	default:
		return litNihil()
	}
}

func lowerExpr(e ast.Expression) ir.Stmt {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return &ir.Lit{Kind: "int", Int: n.Value}
	case *ast.FloatLiteral:
		return &ir.Lit{Kind: "float", Float: n.Value}
	case *ast.BoolLiteral:
		return &ir.Lit{Kind: "bool", Bool: n.Value}
	case *ast.NihilLiteral:
		return &ir.Lit{Kind: "nihil"}
	case *ast.Identifier:
		return &ir.Id{Name: n.Value}
	case *ast.StructuredString:
		return lowerStructuredString(n)
	case *ast.GenerativeString:
		return lowerGenerative(n)
	case *ast.UnaryExpression:
		return lowerUnary(n)
	case *ast.BinaryExpression:
		if n.Operator == "~=" {
			return &ir.Call{
				Callee: &ir.Id{Name: "semantic_fuzzy_eq"},
				Args:   []ir.Stmt{lowerExpr(n.Left), lowerExpr(n.Right)},
			}
		}
		return &ir.Send{Op: n.Operator, Left: lowerExpr(n.Left), Right: lowerExpr(n.Right)}
	case *ast.AssignExpression:
		return lowerAssign(n)
	case *ast.CallExpression:
		args := make([]ir.Stmt, len(n.Args))
		for i, a := range n.Args {
			args[i] = lowerExpr(a)
		}
		return &ir.Call{Callee: lowerExpr(n.Callee), Args: args}
	case *ast.CastExpression:
		return &ir.Cast{Value: lowerExpr(n.Value), Type: lowerTypeExpr(n.TypeExpr)}
	case *ast.BlockExpression:
		parts := make([]ir.Stmt, len(n.Statements))
		for i, st := range n.Statements {
			parts[i] = lowerStatement(st)
		}
		return &ir.Cons{Parts: parts}
	case *ast.IfExpression:
		return lowerIf(n)
	case *ast.WhileExpression:
		body := ir.Stmt(&ir.Lit{Kind: "nihil"})
		if n.Body != nil {
			body = lowerExpr(n.Body)
		}
		return &ir.While{Cond: lowerExpr(n.Condition), Body: body}
	case *ast.FunctionLiteral:
		return lowerFunctionLiteral(n)
	case *ast.ArrayLiteral:
		elems := make([]ir.Stmt, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = lowerExpr(el)
		}
		return &ir.ArrayLiteral{Elements: elems}
	case *ast.ObjectLiteral:
		fields := make([]ir.ObjectFieldInit, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ir.ObjectFieldInit{Key: f.Key, Value: lowerExpr(f.Value)}
		}
		return &ir.ObjectLiteral{Fields: fields}
	case *ast.MemberExpression:
		return &ir.MemberAccess{Object: lowerExpr(n.Object), Field: n.Field}
	case *ast.TypeDeclaration:
		return lowerTypeDeclaration(n)
	default:
		return &ir.Lit{Kind: "nihil"}
	}
}

func lowerUnary(n *ast.UnaryExpression) ir.Stmt {
	operand := lowerExpr(n.Operand)
	if n.Operator == "!" {
		return &ir.Not{Operand: operand}
	}
	return &ir.Negate{Operand: operand}
}

// lowerAssign always produces a Let: per spec.md §4.4 assignment has one
// surface form, and the VM's *ir.Let case decides at runtime whether the
// name is already bound in an enclosing frame (update) or not (define).
func lowerAssign(n *ast.AssignExpression) ir.Stmt {
	value := lowerExpr(n.Value)
	switch target := n.Target.(type) {
	case *ast.Identifier:
		return &ir.Let{Name: target.Value, Value: value}
	case *ast.MemberExpression:
		return &ir.MemberAssignment{Object: lowerExpr(target.Object), Field: target.Field, Value: value}
	default:
		return value
	}
}

func lowerIf(n *ast.IfExpression) ir.Stmt {
	var thenStmt ir.Stmt = &ir.Lit{Kind: "nihil"}
	if n.Consequence != nil {
		thenStmt = lowerExpr(n.Consequence)
	}
	var elseStmt ir.Stmt
	if n.Alternative != nil {
		elseStmt = lowerExpr(n.Alternative)
	}
	return &ir.If{Cond: lowerExpr(n.Condition), Then: thenStmt, Else: elseStmt}
}

func lowerFunctionLiteral(n *ast.FunctionLiteral) ir.Stmt {
	params := make([]ir.FunctionParam, len(n.Params))
	for i, p := range n.Params {
		var t ir.Type
		if p.TypeExpr != nil {
			t = lowerTypeExpr(p.TypeExpr)
		}
		params[i] = ir.FunctionParam{Name: p.Name, Type: t}
	}
	var retType ir.Type
	if n.ReturnType != nil {
		retType = lowerTypeExpr(n.ReturnType)
	}
	return &ir.FunctionDefinition{
		Name:       n.Name,
		Params:     params,
		ReturnType: retType,
		Body:       lowerExpr(n.Body),
	}
}

func lowerTypeDeclaration(n *ast.TypeDeclaration) ir.Stmt {
	if len(n.Union) > 0 {
		union := make([]ir.Type, len(n.Union))
		for i, arm := range n.Union {
			union[i] = lowerTypeExpr(arm)
		}
		return &ir.TypeDeclaration{Name: n.Name, Union: union}
	}
	fields := make([]ir.RecordField, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = ir.RecordField{Name: f.Name, Type: lowerTypeExpr(f.TypeExpr)}
	}
	return &ir.TypeDeclaration{Name: n.Name, Fields: fields}
}

// lowerStructuredString lowers an interpolated string's segments into a
// Cat node: literal segments become Str literals, expression holes are
// lowered and stringified by the VM's Cat implementation at runtime.
func lowerStructuredString(n *ast.StructuredString) ir.Stmt {
	parts := make([]ir.Stmt, 0, len(n.Segments))
	for _, seg := range n.Segments {
		if seg.Expr != nil {
			parts = append(parts, lowerExpr(seg.Expr))
		} else {
			parts = append(parts, &ir.Lit{Kind: "str", Str: seg.Literal})
		}
	}
	return &ir.Cat{Parts: parts}
}

// lowerGenerative lowers a """...""" literal's segments into a Gen node.
func lowerGenerative(n *ast.GenerativeString) ir.Stmt {
	parts := make([]ir.Stmt, 0, len(n.Segments))
	for _, seg := range n.Segments {
		if seg.Expr != nil {
			parts = append(parts, lowerExpr(seg.Expr))
		} else {
			parts = append(parts, &ir.Lit{Kind: "str", Str: seg.Literal})
		}
	}
	return &ir.Gen{Parts: parts}
}

func lowerTypeExpr(t ast.TypeExpr) ir.Type {
	switch n := t.(type) {
	case *ast.TypeName:
		return ir.TypeReference{Name: n.Name}
	case *ast.GenericTypeExpr:
		params := make([]ir.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = lowerTypeExpr(p)
		}
		return ir.GenericType{Name: n.Name, Params: params}
	case *ast.UnionTypeExpr:
		arms := make([]ir.Type, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = lowerTypeExpr(a)
		}
		return ir.UnionType{Arms: arms}
	case *ast.ConstantTypeExpr:
		switch v := n.Value.(type) {
		case *ast.IntLiteral:
			return ir.TypeConstant{Kind: "int", Int: v.Value}
		case *ast.StructuredString:
			var s string
			for _, seg := range v.Segments {
				s += seg.Literal
			}
			return ir.TypeConstant{Kind: "str", Str: s}
		}
		return ir.TypeReference{Name: "Nihil"}
	case *ast.RecordTypeExpr:
		fields := make([]ir.RecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ir.RecordField{Name: f.Name, Type: lowerTypeExpr(f.TypeExpr)}
		}
		return ir.RecordType{Fields: fields}
	default:
		return ir.TypeReference{Name: "Any"}
	}
}

func litNihil() *ir.Lit { return &ir.Lit{Kind: "nihil"} }
