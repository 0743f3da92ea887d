// Package token holds source-position primitives shared by the FD lexer and
// the guard-expression tokenizer.
package token

import "strconv"

// Position is a 1-based line/column plus a 0-based byte offset into the
// source buffer being scanned.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String renders "line:column" for diagnostics.
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}
