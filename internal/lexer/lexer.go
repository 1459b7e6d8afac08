// Package lexer turns Aua source text into a token stream. It follows the
// teacher's dispatch-table shape (a map from the lookahead rune to a
// handler function instead of one giant switch) and its line/column
// cursor bookkeeping, generalized to Aua's three lexical modes: normal
// code, the body of an interpolated string, and the body of a generative
// (triple-quoted) string literal.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/jweissman/aua-sub000/internal/position"
)

type lexMode int

const (
	modeNormal lexMode = iota
	modeStringBody
	modeGenerativeBody
)

// LexError is a single lexical diagnostic, accumulated rather than raised,
// matching the teacher's error-accumulation style so a caller can report
// every problem in a source file at once.
type LexError struct {
	Message string
	Pos     position.Position
}

type stringFrame struct {
	quote byte
}

// Lexer scans Aua source text into tokens on demand.
type Lexer struct {
	input        string
	ch           rune
	chWidth      int
	position     int
	readPosition int
	line         int
	column       int

	modeStack     []lexMode
	stringStack   []stringFrame
	atStringStart bool

	errors []LexError
}

// New constructs a Lexer over src, stripping a leading UTF-8 BOM if present.
func New(src string) *Lexer {
	src = strings.TrimPrefix(src, "\xef\xbb\xbf")
	l := &Lexer{
		input:     src,
		line:      1,
		column:    0,
		modeStack: []lexMode{modeNormal},
	}
	l.readChar()
	return l
}

// Errors returns every lexical diagnostic accumulated so far.
func (l *Lexer) Errors() []LexError { return l.errors }

func (l *Lexer) addError(msg string) {
	l.errors = append(l.errors, LexError{Message: msg, Pos: l.pos()})
}

func (l *Lexer) mode() lexMode { return l.modeStack[len(l.modeStack)-1] }

func (l *Lexer) pushMode(m lexMode) { l.modeStack = append(l.modeStack, m) }

func (l *Lexer) popMode() {
	if len(l.modeStack) > 1 {
		l.modeStack = l.modeStack[:len(l.modeStack)-1]
	}
}

func (l *Lexer) pos() position.Position {
	return position.Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chWidth = 0
		l.position = l.readPosition
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.position = l.readPosition
	l.readPosition += w
	l.ch = r
	l.chWidth = w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekCharAt(offset int) rune {
	idx := l.readPosition
	var r rune
	for i := 0; i <= offset; i++ {
		if idx >= len(l.input) {
			return 0
		}
		var w int
		r, w = utf8.DecodeRuneInString(l.input[idx:])
		idx += w
	}
	return r
}

func (l *Lexer) startsWith(s string) bool {
	return strings.HasPrefix(l.input[l.position:], s)
}

// NextToken produces the next token, dispatching on the lexer's current
// mode. The normal-mode dispatch table mirrors the teacher's
// rune-keyed handler map for operators and delimiters.
func (l *Lexer) NextToken() Token {
	switch l.mode() {
	case modeStringBody:
		return l.lexStringBody()
	case modeGenerativeBody:
		return l.lexGenerativeBody()
	default:
		return l.lexNormal()
	}
}

var punctHandlers = map[rune]func(*Lexer) Token{
	'+': func(l *Lexer) Token { return l.simple(PLUS) },
	'-': func(l *Lexer) Token {
		if l.peekChar() == '>' {
			return l.two(ARROW)
		}
		return l.simple(MINUS)
	},
	'*': func(l *Lexer) Token {
		if l.peekChar() == '*' {
			return l.two(DSTAR)
		}
		return l.simple(STAR)
	},
	'/': func(l *Lexer) Token { return l.simple(SLASH) },
	'%': func(l *Lexer) Token { return l.simple(PERCENT) },
	'=': func(l *Lexer) Token {
		if l.peekChar() == '=' {
			return l.two(EQ)
		}
		return l.simple(ASSIGN)
	},
	'!': func(l *Lexer) Token {
		if l.peekChar() == '=' {
			return l.two(NEQ)
		}
		return l.simple(BANG)
	},
	'<': func(l *Lexer) Token {
		if l.peekChar() == '=' {
			return l.two(LE)
		}
		return l.simple(LT)
	},
	'>': func(l *Lexer) Token {
		if l.peekChar() == '=' {
			return l.two(GE)
		}
		return l.simple(GT)
	},
	'&': func(l *Lexer) Token {
		if l.peekChar() == '&' {
			return l.two(AMPAMP)
		}
		tok := Token{Type: ILLEGAL, Literal: "&", Pos: l.pos()}
		l.addError("unexpected character '&'")
		l.readChar()
		return tok
	},
	'~': func(l *Lexer) Token {
		if l.peekChar() == '=' {
			return l.two(TILDE_EQ)
		}
		return l.simple(TILDE)
	},
	';': func(l *Lexer) Token { return l.simple(EOS) },
	'(': func(l *Lexer) Token { return l.simple(LPAREN) },
	')': func(l *Lexer) Token { return l.simple(RPAREN) },
	'{': func(l *Lexer) Token { return l.simple(LBRACE) },
	'}': func(l *Lexer) Token { return l.simple(RBRACE) },
	'[': func(l *Lexer) Token { return l.simple(LBRACKET) },
	']': func(l *Lexer) Token { return l.simple(RBRACKET) },
	',': func(l *Lexer) Token { return l.simple(COMMA) },
	':': func(l *Lexer) Token { return l.simple(COLON) },
	'.': func(l *Lexer) Token { return l.simple(DOT) },
	'|': func(l *Lexer) Token {
		if l.peekChar() == '|' {
			return l.two(PIPEPIPE)
		}
		return l.simple(PIPE)
	},
	'?': func(l *Lexer) Token { return l.simple(QUESTION) },
}

func (l *Lexer) lexNormal() Token {
	l.skipWhitespaceAndComments()

	p := l.pos()

	if l.ch == 0 {
		return Token{Type: EOF, Literal: "", Pos: p}
	}

	if l.ch == '\n' {
		l.readChar()
		return Token{Type: EOS, Literal: "\n", Pos: p}
	}

	if l.startsWith(`"""`) {
		l.readChar()
		l.readChar()
		l.readChar()
		l.pushMode(modeGenerativeBody)
		return l.lexGenerativeBody()
	}

	if l.ch == '"' {
		l.readChar()
		l.stringStack = append(l.stringStack, stringFrame{quote: '"'})
		l.pushMode(modeStringBody)
		l.atStringStart = true
		return l.lexStringBody()
	}

	if l.ch == '\'' {
		return l.readSimpleQuoteString()
	}

	if l.ch == '}' && l.inStringResumeMode() {
		l.readChar()
		l.popMode() // back to modeStringBody
		return Token{Type: INTERP_END, Literal: "}", Pos: p}
	}

	if isDigit(l.ch) {
		return l.readNumber()
	}

	if isIdentStart(l.ch) {
		return l.readIdentifier()
	}

	if handler, ok := punctHandlers[l.ch]; ok {
		return handler(l)
	}

	tok := Token{Type: ILLEGAL, Literal: string(l.ch), Pos: p}
	l.addError("unexpected character '" + string(l.ch) + "'")
	l.readChar()
	return tok
}

func (l *Lexer) simple(t TokenType) Token {
	p := l.pos()
	lit := string(l.ch)
	l.readChar()
	return Token{Type: t, Literal: lit, Pos: p}
}

func (l *Lexer) two(t TokenType) Token {
	p := l.pos()
	first := l.ch
	l.readChar()
	lit := string(first) + string(l.ch)
	l.readChar()
	return Token{Type: t, Literal: lit, Pos: p}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool { return isIdentStart(ch) || isDigit(ch) }

func (l *Lexer) readNumber() Token {
	p := l.pos()
	start := l.position
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lit := l.input[start:l.position]
	if isFloat {
		return Token{Type: FLOAT, Literal: lit, Pos: p}
	}
	return Token{Type: INT, Literal: lit, Pos: p}
}

func (l *Lexer) readIdentifier() Token {
	p := l.pos()
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.position]
	return Token{Type: LookupIdent(lit), Literal: lit, Pos: p}
}

// lexStringBody scans the literal text of an interpolated string until it
// hits either "${" (an interpolation hole) or the closing quote. A string
// that closes before any hole opens comes back as one SIMPLE_STRING token;
// otherwise the first call emits STRING_START (which also consumes the
// "${") and later calls emit STRING_PART or STRING_END, so the parser sees
// a flat token stream interleaving literal segments with normal-mode
// expression tokens, each hole closed by an INTERP_END marker.
func (l *Lexer) lexStringBody() Token {
	p := l.pos()
	var sb strings.Builder
	first := l.atStringStart
	l.atStringStart = false

	for {
		if l.ch == 0 {
			l.addError("unterminated string literal")
			return Token{Type: STRING_END, Literal: sb.String(), Pos: p}
		}
		if l.ch == '"' {
			l.readChar()
			l.popStringFrame()
			l.popMode()
			if first {
				// No interpolation hole was ever opened: this is a
				// complete, self-contained string in one token.
				return Token{Type: SIMPLE_STRING, Literal: sb.String(), Pos: p}
			}
			return Token{Type: STRING_END, Literal: sb.String(), Pos: p}
		}
		if l.ch == '$' && l.peekChar() == '{' {
			l.readChar()
			l.readChar()
			l.pushMode(modeNormal)
			if first {
				return Token{Type: STRING_START, Literal: sb.String(), Pos: p}
			}
			return Token{Type: STRING_PART, Literal: sb.String(), Pos: p}
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(l.unescape(l.ch))
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
}

// readSimpleQuoteString scans a single-quoted 'simple_str' literal: plain
// text with no interpolation, used mainly as a string-constant type arm
// ('yes' | 'no').
func (l *Lexer) readSimpleQuoteString() Token {
	p := l.pos()
	l.readChar() // consume opening '
	var sb strings.Builder
	for {
		if l.ch == 0 {
			l.addError("unterminated string literal")
			return Token{Type: SIMPLE_STRING, Literal: sb.String(), Pos: p}
		}
		if l.ch == '\'' {
			l.readChar()
			return Token{Type: SIMPLE_STRING, Literal: sb.String(), Pos: p}
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(l.unescape(l.ch))
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
}

func (l *Lexer) popStringFrame() {
	if len(l.stringStack) > 0 {
		l.stringStack = l.stringStack[:len(l.stringStack)-1]
	}
}

func (l *Lexer) unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '"':
		return '"'
	case '\\':
		return '\\'
	case '$':
		return '$'
	default:
		return ch
	}
}

// lexGenerativeBody scans the raw payload of a """...""" literal up to the
// closing triple quote. Per design, interpolation inside a generative
// literal is recognized by the parser re-scanning this raw text, not by
// the lexer itself — the lexer hands back the whole span untouched.
func (l *Lexer) lexGenerativeBody() Token {
	p := l.pos()
	start := l.position
	for {
		if l.ch == 0 {
			l.addError("unterminated generative string literal")
			break
		}
		if l.startsWith(`"""`) {
			break
		}
		l.readChar()
	}
	text := l.input[start:l.position]
	if l.startsWith(`"""`) {
		l.readChar()
		l.readChar()
		l.readChar()
	}
	l.popMode()
	return Token{Type: GENERATIVE_TEXT, Literal: text, Pos: p}
}

// inStringResumeMode reports whether a string frame is outstanding; lexNormal
// uses it to treat a '}' as INTERP_END and pop back into string mode.
func (l *Lexer) inStringResumeMode() bool { return len(l.stringStack) > 0 }
