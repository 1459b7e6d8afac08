// Package parser implements Aua's recursive-descent, precedence-climbing
// parser. It follows the teacher's Pratt-parser shape: prefix/infix
// function tables keyed by token type, a precedence lookup table, and
// structured error accumulation instead of panicking on the first bad
// token.
package parser

import (
	"fmt"
	"strconv"

	"github.com/jweissman/aua-sub000/internal/ast"
	"github.com/jweissman/aua-sub000/internal/lexer"
	"github.com/jweissman/aua-sub000/internal/position"
)

// precedence levels, lowest to highest, per spec.md §4.2. Assignment
// binds loosest since it's really a statement form wearing an infix
// hat; cast (as/~) is deliberately looser than the logical operators so
// "a && b as T" casts the whole conjunction, not just b.
const (
	LOWEST int = iota
	ASSIGNP
	CAST
	OR
	AND
	EQUALS
	LESSGREATER
	SUM
	PRODUCT
	EXPONENT
	PREFIX
	CALL
	MEMBER
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:   ASSIGNP,
	lexer.AS:       CAST,
	lexer.TILDE:    CAST,
	lexer.PIPEPIPE: OR,
	lexer.AMPAMP:   AND,
	lexer.EQ:       EQUALS,
	lexer.NEQ:      EQUALS,
	lexer.TILDE_EQ: EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LE:       LESSGREATER,
	lexer.GE:       LESSGREATER,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.STAR:     PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.DSTAR:    EXPONENT,
	lexer.LPAREN:   CALL,
	lexer.DOT:      MEMBER,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// ParseError is one parse-time diagnostic.
type ParseError struct {
	Message string
	Pos     position.Position
}

// Parser consumes a token stream from a Lexer and produces an *ast.Program.
type Parser struct {
	l *lexer.Lexer

	curTok   lexer.Token
	peekTok  lexer.Token
	peek2Tok lexer.Token

	errors []ParseError

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New constructs a Parser over l and registers every prefix/infix handler.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:           p.parseIdentifier,
		lexer.INT:             p.parseIntLiteral,
		lexer.FLOAT:           p.parseFloatLiteral,
		lexer.TRUE:            p.parseBoolLiteral,
		lexer.FALSE:           p.parseBoolLiteral,
		lexer.NIHIL:           p.parseNihilLiteral,
		lexer.SIMPLE_STRING:   p.parseSimpleString,
		lexer.STRING_START:    p.parseStructuredString,
		lexer.GENERATIVE_TEXT: p.parseGenerativeString,
		lexer.MINUS:           p.parseUnaryExpression,
		lexer.BANG:            p.parseUnaryExpression,
		lexer.LPAREN:          p.parseGroupedExpression,
		lexer.LBRACKET:        p.parseArrayLiteral,
		lexer.LBRACE:          p.parseBraceExpression,
		lexer.IF:              p.parseIfExpression,
		lexer.WHILE:           p.parseWhileExpression,
		lexer.FUN:             p.parseFunctionLiteral,
		lexer.TYPE:            p.parseTypeDeclaration,
	}

	p.infixParseFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS:     p.parseBinaryExpression,
		lexer.MINUS:    p.parseBinaryExpression,
		lexer.STAR:     p.parseBinaryExpression,
		lexer.SLASH:    p.parseBinaryExpression,
		lexer.PERCENT:  p.parseBinaryExpression,
		lexer.DSTAR:    p.parseBinaryExpression,
		lexer.EQ:       p.parseBinaryExpression,
		lexer.NEQ:      p.parseBinaryExpression,
		lexer.LT:       p.parseBinaryExpression,
		lexer.GT:       p.parseBinaryExpression,
		lexer.LE:       p.parseBinaryExpression,
		lexer.GE:       p.parseBinaryExpression,
		lexer.AMPAMP:   p.parseBinaryExpression,
		lexer.PIPEPIPE: p.parseBinaryExpression,
		lexer.TILDE_EQ: p.parseBinaryExpression,
		lexer.ASSIGN:   p.parseAssignExpression,
		lexer.LPAREN:   p.parseCallExpression,
		lexer.DOT:      p.parseMemberExpression,
		lexer.AS:       p.parseCastExpression,
		lexer.TILDE:    p.parseUnionCastExpression,
	}

	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns accumulated parse diagnostics.
func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) addError(format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{Message: fmt.Sprintf(format, args...), Pos: p.curTok.Pos})
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.peek2Tok
	p.peek2Tok = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curTok.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekTok.Type == t }

// atAny reports whether curTok is any of types — used to check a
// multi-keyword terminator (elif/else/end) without a chain of curTokenIs.
func (p *Parser) atAny(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.curTokenIs(t) {
			return true
		}
	}
	return false
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errors = append(p.errors, ParseError{
		Message: fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekTok.Type),
		Pos:     p.peekTok.Pos,
	})
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curTok.Type]; ok {
		return pr
	}
	return LOWEST
}

// skipEOS consumes zero or more statement-separator tokens.
func (p *Parser) skipEOS() {
	for p.curTokenIs(lexer.EOS) {
		p.nextToken()
	}
}

// ParseProgram parses the whole token stream into a Program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipEOS()
	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if !p.curTokenIs(lexer.EOF) {
			p.nextToken()
		}
		p.skipEOS()
	}
	return prog
}

// parseStatementSequence parses statements until curTok is one of stops
// (left sitting on the matched stop token, or EOF) — the shared body
// parser for while/fun/if block forms. It always advances past the last
// token of each statement and skips any eos run before checking for a
// stop, so a stop token already consumed by a nested construct (e.g. the
// inner "end" of a ternary if) is never mistaken for this sequence's own
// terminator.
func (p *Parser) parseStatementSequence(stops ...lexer.TokenType) []ast.Statement {
	p.nextToken()
	p.skipEOS()
	var stmts []ast.Statement
	for !p.atAny(stops...) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if !p.curTokenIs(lexer.EOF) {
			p.nextToken()
		}
		p.skipEOS()
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	pos := p.curTok.Pos
	expr := p.parseExpression(LOWEST)
	return &ast.ExpressionStatement{Token: pos, Expr: expr}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixParseFns[p.curTok.Type]
	if !ok {
		p.addError("no prefix parse function for %s", p.curTok.Type)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(lexer.EOS) && !p.peekTokenIs(lexer.EOF) && precedence < p.peekPrecedence() {
		infix, ok := p.infixParseFns[p.peekTok.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

// startsCommandCallArg reports whether peekTok can open a command-call
// argument per spec.md §4.2's space-applied `id arg1, arg2, ...` form.
// Tokens that are also infix operators (MINUS, BANG) are deliberately
// excluded so "x - 1" still parses as subtraction, never as a call.
func (p *Parser) startsCommandCallArg() bool {
	switch p.peekTok.Type {
	case lexer.IDENT, lexer.INT, lexer.FLOAT, lexer.TRUE, lexer.FALSE, lexer.NIHIL,
		lexer.SIMPLE_STRING, lexer.STRING_START, lexer.GENERATIVE_TEXT,
		lexer.LBRACKET, lexer.LBRACE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseIdentifier() ast.Expression {
	pos := p.curTok.Pos
	ident := ast.Expression(&ast.Identifier{Token: pos, Value: p.curTok.Literal})
	if !p.startsCommandCallArg() {
		return ident
	}
	p.nextToken()
	args := []ast.Expression{p.parseExpression(LOWEST)}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(LOWEST))
	}
	return &ast.CallExpression{Token: pos, Callee: ident, Args: args}
}

func (p *Parser) parseIntLiteral() ast.Expression {
	v, err := strconv.ParseInt(p.curTok.Literal, 10, 64)
	if err != nil {
		p.addError("invalid integer literal %q", p.curTok.Literal)
	}
	return &ast.IntLiteral{Token: p.curTok.Pos, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, err := strconv.ParseFloat(p.curTok.Literal, 64)
	if err != nil {
		p.addError("invalid float literal %q", p.curTok.Literal)
	}
	return &ast.FloatLiteral{Token: p.curTok.Pos, Value: v}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.BoolLiteral{Token: p.curTok.Pos, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNihilLiteral() ast.Expression {
	return &ast.NihilLiteral{Token: p.curTok.Pos}
}

// parseSimpleString handles a string with no interpolation holes at all
// (single-quoted 'simple_str' or a double-quoted string with no ${...}).
func (p *Parser) parseSimpleString() ast.Expression {
	pos := p.curTok.Pos
	return &ast.StructuredString{Token: pos, Segments: []ast.StringSegment{{Literal: p.curTok.Literal}}}
}

// parseStructuredString consumes a STRING_START token, which by
// construction always opens an interpolation hole (a string with no
// holes lexes as a single SIMPLE_STRING token instead), and alternates
// embedded-expression parsing with STRING_PART/STRING_END segments until
// the string closes.
func (p *Parser) parseStructuredString() ast.Expression {
	pos := p.curTok.Pos
	segments := []ast.StringSegment{{Literal: p.curTok.Literal}}

	for {
		p.nextToken() // move onto first token of the embedded expression
		expr := p.parseExpression(LOWEST)
		segments = append(segments, ast.StringSegment{Expr: expr})
		if !p.expectPeek(lexer.INTERP_END) {
			break
		}
		if !p.expectPeekStringContinuation() {
			break
		}
		segments = append(segments, ast.StringSegment{Literal: p.curTok.Literal})
		if p.curTok.Type == lexer.STRING_END {
			break
		}
	}

	return &ast.StructuredString{Token: pos, Segments: segments}
}

func (p *Parser) expectPeekStringContinuation() bool {
	if p.peekTokenIs(lexer.STRING_PART) || p.peekTokenIs(lexer.STRING_END) {
		p.nextToken()
		return true
	}
	p.addError("expected string continuation, got %s", p.peekTok.Type)
	return false
}

// parseGenerativeString lowers a raw """...""" payload into segments,
// splitting on ${...} the way the parser is responsible for per design:
// the lexer hands back the whole span untouched, and interpolation
// holes inside it are recognized here by re-lexing the payload text.
func (p *Parser) parseGenerativeString() ast.Expression {
	pos := p.curTok.Pos
	raw := p.curTok.Literal
	segments := splitInterpolation(raw, pos)
	return &ast.GenerativeString{Token: pos, Segments: segments}
}

// splitInterpolation scans raw text for ${...} holes, parsing each hole's
// contents with a fresh sub-parser over just that slice.
func splitInterpolation(raw string, base position.Position) []ast.StringSegment {
	var segments []ast.StringSegment
	i := 0
	for i < len(raw) {
		j := indexOf(raw[i:], "${")
		if j < 0 {
			segments = append(segments, ast.StringSegment{Literal: raw[i:]})
			break
		}
		if j > 0 {
			segments = append(segments, ast.StringSegment{Literal: raw[i : i+j]})
		}
		start := i + j + 2
		depth := 1
		k := start
		for k < len(raw) && depth > 0 {
			switch raw[k] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
			k++
		}
		exprSrc := raw[start:k]
		sub := New(lexer.New(exprSrc))
		expr := sub.parseExpression(LOWEST)
		segments = append(segments, ast.StringSegment{Expr: expr})
		if k >= len(raw) {
			i = k
		} else {
			i = k + 1
		}
	}
	return segments
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	pos := p.curTok.Pos
	op := p.curTok.Literal
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return &ast.UnaryExpression{Token: pos, Operator: op, Operand: operand}
}

// parseBinaryExpression parses a left-associative infix operator at its
// own precedence, except "**" which is right-associative per spec.md
// §4.2: its right operand is parsed one precedence level looser so a
// following "**" keeps binding instead of stopping.
func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	pos := p.curTok.Pos
	op := p.curTok.Literal
	precedence := p.curPrecedence()
	rightPrecedence := precedence
	if op == "**" {
		rightPrecedence = precedence - 1
	}
	p.nextToken()
	right := p.parseExpression(rightPrecedence)
	return &ast.BinaryExpression{Token: pos, Operator: op, Left: left, Right: right}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return expr
	}
	return expr
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	pos := p.curTok.Pos
	elems := p.parseExpressionList(lexer.RBRACKET)
	return &ast.ArrayLiteral{Token: pos, Elements: elems}
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return list
	}
	return list
}

// parseBraceExpression disambiguates `{ k: v }` object literals from
// `{ stmt; stmt }` block expressions by looking ahead for IDENT followed
// by COLON (or an immediate `}`).
func (p *Parser) parseBraceExpression() ast.Expression {
	if p.looksLikeObjectLiteral() {
		return p.parseObjectLiteral()
	}
	return p.parseBlockExpression()
}

func (p *Parser) looksLikeObjectLiteral() bool {
	if p.peekTokenIs(lexer.RBRACE) {
		return true // `{}` is the empty object
	}
	return p.peekTokenIs(lexer.IDENT) && p.peek2Tok.Type == lexer.COLON
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	pos := p.curTok.Pos
	var fields []ast.ObjectField
	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return &ast.ObjectLiteral{Token: pos, Fields: fields}
	}
	p.nextToken()
	for {
		if !p.curTokenIs(lexer.IDENT) {
			p.addError("expected field name in object literal, got %s", p.curTok.Type)
			break
		}
		key := p.curTok.Literal
		if !p.expectPeek(lexer.COLON) {
			break
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		fields = append(fields, ast.ObjectField{Key: key, Value: val})
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(lexer.RBRACE)
	return &ast.ObjectLiteral{Token: pos, Fields: fields}
}

// parseBlockExpression parses a brace-delimited statement sequence. Only
// object literals and grouped sub-blocks still use brace delimiting;
// if/while/fun bodies are end-terminated (parseStatementSequence).
func (p *Parser) parseBlockExpression() *ast.BlockExpression {
	pos := p.curTok.Pos
	block := &ast.BlockExpression{Token: pos}
	p.nextToken()
	p.skipEOS()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if !p.curTokenIs(lexer.EOF) {
			p.nextToken()
		}
		p.skipEOS()
	}
	return block
}

func wrapAsBlock(expr ast.Expression) *ast.BlockExpression {
	return &ast.BlockExpression{
		Token:      expr.Pos(),
		Statements: []ast.Statement{&ast.ExpressionStatement{Token: expr.Pos(), Expr: expr}},
	}
}

// parseIfExpression handles both of spec.md §4.2's conditional forms:
// the ternary "if cond then a else b" (single-expression branches, a
// trailing "end" is optional — it's only consumed when one is actually
// there, since a ternary if can be a whole program with nothing after
// it) and the block form "if cond ... [elif cond ...]* [else ...] end"
// (statement-sequence branches, "end" is mandatory).
func (p *Parser) parseIfExpression() ast.Expression {
	pos := p.curTok.Pos
	p.nextToken()
	cond := p.parseExpression(LOWEST)

	if p.peekTokenIs(lexer.THEN) {
		return p.parseTernaryIf(pos, cond)
	}
	return p.parseBlockIf(pos, cond)
}

func (p *Parser) parseTernaryIf(pos position.Position, cond ast.Expression) ast.Expression {
	p.nextToken() // onto THEN
	p.nextToken() // onto first token of the consequence
	cons := p.parseExpression(LOWEST)
	ifExpr := &ast.IfExpression{Token: pos, Condition: cond, Consequence: wrapAsBlock(cons)}
	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken() // onto ELSE
		p.nextToken() // onto first token of the alternative
		alt := p.parseExpression(LOWEST)
		ifExpr.Alternative = wrapAsBlock(alt)
	}
	if p.peekTokenIs(lexer.END) {
		p.nextToken()
	}
	return ifExpr
}

func (p *Parser) parseBlockIf(pos position.Position, cond ast.Expression) ast.Expression {
	consStmts := p.parseStatementSequence(lexer.ELIF, lexer.ELSE, lexer.END)
	ifExpr := &ast.IfExpression{Token: pos, Condition: cond, Consequence: &ast.BlockExpression{Token: pos, Statements: consStmts}}
	if p.curTokenIs(lexer.ELIF) {
		ifExpr.Alternative = wrapAsBlock(p.parseElifChain())
		return ifExpr
	}
	if p.curTokenIs(lexer.ELSE) {
		elsePos := p.curTok.Pos
		altStmts := p.parseStatementSequence(lexer.END)
		ifExpr.Alternative = &ast.BlockExpression{Token: elsePos, Statements: altStmts}
	}
	return ifExpr
}

// parseElifChain parses one "elif cond ..." arm, recursing for further
// elif arms and terminating the whole chain on "else"/"end" exactly like
// parseBlockIf's top-level consequence.
func (p *Parser) parseElifChain() ast.Expression {
	pos := p.curTok.Pos
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	consStmts := p.parseStatementSequence(lexer.ELIF, lexer.ELSE, lexer.END)
	ifExpr := &ast.IfExpression{Token: pos, Condition: cond, Consequence: &ast.BlockExpression{Token: pos, Statements: consStmts}}
	if p.curTokenIs(lexer.ELIF) {
		ifExpr.Alternative = wrapAsBlock(p.parseElifChain())
		return ifExpr
	}
	if p.curTokenIs(lexer.ELSE) {
		elsePos := p.curTok.Pos
		altStmts := p.parseStatementSequence(lexer.END)
		ifExpr.Alternative = &ast.BlockExpression{Token: elsePos, Statements: altStmts}
	}
	return ifExpr
}

func (p *Parser) parseWhileExpression() ast.Expression {
	pos := p.curTok.Pos
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	stmts := p.parseStatementSequence(lexer.END)
	return &ast.WhileExpression{Token: pos, Condition: cond, Body: &ast.BlockExpression{Token: pos, Statements: stmts}}
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	pos := p.curTok.Pos
	name := ""
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		name = p.curTok.Literal
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	params := p.parseParamList()
	var retType ast.TypeExpr
	if p.peekTokenIs(lexer.ARROW) {
		p.nextToken()
		p.nextToken()
		retType = p.parseTypeExpr()
	}
	stmts := p.parseStatementSequence(lexer.END)
	return &ast.FunctionLiteral{Token: pos, Name: name, Params: params, ReturnType: retType, Body: &ast.BlockExpression{Token: pos, Statements: stmts}}
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.parseOneParam())
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseOneParam())
	}
	p.expectPeek(lexer.RPAREN)
	return params
}

func (p *Parser) parseOneParam() ast.Param {
	name := p.curTok.Literal
	param := ast.Param{Name: name}
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		param.TypeExpr = p.parseTypeExpr()
	}
	return param
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	pos := p.curTok.Pos
	p.nextToken()
	val := p.parseExpression(ASSIGNP - 1)
	return &ast.AssignExpression{Token: pos, Target: left, Value: val}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	pos := p.curTok.Pos
	args := p.parseExpressionList(lexer.RPAREN)
	return &ast.CallExpression{Token: pos, Callee: callee, Args: args}
}

func (p *Parser) parseMemberExpression(obj ast.Expression) ast.Expression {
	pos := p.curTok.Pos
	if !p.expectPeek(lexer.IDENT) {
		return obj
	}
	return &ast.MemberExpression{Token: pos, Object: obj, Field: p.curTok.Literal}
}

func (p *Parser) parseCastExpression(value ast.Expression) ast.Expression {
	return p.parseCastLike(value, false)
}

// parseUnionCastExpression handles "x ~ T", spec.md §4.3's union-cast:
// same underlying universal-cast algorithm as "as", just spelled
// differently and conventionally aimed at a union type.
func (p *Parser) parseUnionCastExpression(value ast.Expression) ast.Expression {
	return p.parseCastLike(value, true)
}

func (p *Parser) parseCastLike(value ast.Expression, union bool) ast.Expression {
	pos := p.curTok.Pos
	p.nextToken()
	typeExpr := p.parseTypeExpr()
	return &ast.CastExpression{Token: pos, Value: value, TypeExpr: typeExpr, Union: union}
}

// parseTypeDeclaration handles `type Name = A | B` union declarations
// and `type Name = { field: T, ... }` record declarations — both forms
// always take "=" followed by a type_expr per spec.md §4.2; the concrete
// ast.TypeExpr returned decides which kind of ast.TypeDeclaration this
// becomes.
func (p *Parser) parseTypeDeclaration() ast.Expression {
	pos := p.curTok.Pos
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := p.curTok.Literal

	if !p.expectPeek(lexer.ASSIGN) {
		return &ast.TypeDeclaration{Token: pos, Name: name}
	}
	p.nextToken()
	typeExpr := p.parseTypeExpr()

	switch t := typeExpr.(type) {
	case *ast.RecordTypeExpr:
		return &ast.TypeDeclaration{Token: pos, Name: name, Fields: t.Fields}
	case *ast.UnionTypeExpr:
		return &ast.TypeDeclaration{Token: pos, Name: name, Union: t.Arms}
	default:
		return &ast.TypeDeclaration{Token: pos, Name: name, Union: []ast.TypeExpr{typeExpr}}
	}
}

// parseTypeExpr parses a type annotation: a bare name, a generic
// application, a record shape, a literal constant tag, or a
// `|`-separated union of any of those.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	first := p.parseTypeExprPrimary()
	if !p.peekTokenIs(lexer.PIPE) {
		return first
	}
	arms := []ast.TypeExpr{first}
	for p.peekTokenIs(lexer.PIPE) {
		p.nextToken()
		p.nextToken()
		arms = append(arms, p.parseTypeExprPrimary())
	}
	return &ast.UnionTypeExpr{Token: first.Pos(), Arms: arms}
}

func (p *Parser) parseTypeExprPrimary() ast.TypeExpr {
	switch p.curTok.Type {
	case lexer.IDENT:
		name := p.curTok.Literal
		pos := p.curTok.Pos
		if p.peekTokenIs(lexer.LT) {
			p.nextToken()
			p.nextToken()
			var params []ast.TypeExpr
			params = append(params, p.parseTypeExpr())
			for p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
				params = append(params, p.parseTypeExpr())
			}
			p.expectPeek(lexer.GT)
			return &ast.GenericTypeExpr{Token: pos, Name: name, Params: params}
		}
		return &ast.TypeName{Token: pos, Name: name}
	case lexer.SIMPLE_STRING:
		lit := p.parseSimpleString()
		return &ast.ConstantTypeExpr{Token: p.curTok.Pos, Value: lit}
	case lexer.INT:
		lit := p.parseIntLiteral()
		return &ast.ConstantTypeExpr{Token: p.curTok.Pos, Value: lit}
	case lexer.LPAREN:
		p.nextToken()
		inner := p.parseTypeExpr()
		p.expectPeek(lexer.RPAREN)
		return inner
	case lexer.LBRACE:
		return p.parseRecordTypeExpr()
	default:
		p.addError("expected type expression, got %s", p.curTok.Type)
		return &ast.TypeName{Token: p.curTok.Pos, Name: p.curTok.Literal}
	}
}

// parseRecordTypeExpr parses `{ field: type, ... }` as a type_expr
// primary, used by record-shaped type declarations ("type Point = { x:
// Int, y: Int }").
func (p *Parser) parseRecordTypeExpr() ast.TypeExpr {
	pos := p.curTok.Pos
	var fields []ast.FieldDef
	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return &ast.RecordTypeExpr{Token: pos, Fields: fields}
	}
	p.nextToken()
	for {
		if !p.curTokenIs(lexer.IDENT) {
			p.addError("expected field name in record type, got %s", p.curTok.Type)
			break
		}
		fname := p.curTok.Literal
		if !p.expectPeek(lexer.COLON) {
			break
		}
		p.nextToken()
		ftype := p.parseTypeExpr()
		fields = append(fields, ast.FieldDef{Name: fname, TypeExpr: ftype})
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(lexer.RBRACE)
	return &ast.RecordTypeExpr{Token: pos, Fields: fields}
}
