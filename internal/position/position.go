// Package position carries source-location information through the lexer,
// parser, and IR so diagnostics can always point back at the original text.
package position

import "fmt"

// Position is a cursor into a source document: a line/column pair for
// human-facing diagnostics plus a byte offset for slicing the source.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String renders the position as "line:column", the form diagnostics embed.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Zero reports whether the position has never been set.
func (p Position) Zero() bool {
	return p.Line == 0 && p.Column == 0 && p.Offset == 0
}
