// Package ffderr implements the error taxonomy of §7: description syntax
// errors and schema semantic errors carry a source location, StreamError
// carries a byte offset, and all surface as an ordinary Go error rather
// than a fatal abort, per Design Note §9 ("map to a result type at each
// entry point"). The Stream Evaluator (internal/decode) does not build
// StreamError values: it reports stream-format mismatches as plain errors
// without a byte offset.
package ffderr

import (
	"errors"
	"fmt"

	"github.com/corwinn/libwind-ffd/internal/token"
)

// ErrUnsupportedVersion is the sentinel for the "unsupported-feature marker"
// soft-skip case (§7.4). A host checks for it with errors.Is. No
// description construct makes the decoder return it.
var ErrUnsupportedVersion = errors.New("ffd: unsupported version, skip file")

// SyntaxError reports a malformed description token or structure (§7.1).
type SyntaxError struct {
	Pos     token.Position
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Message)
}

// NewSyntax builds a SyntaxError at pos.
func NewSyntax(pos token.Position, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// SemanticError reports a schema-level problem discovered after parsing:
// duplicate format, unknown alias, over-deep array, bad value-list range,
// ambiguous symbol (§7.2).
type SemanticError struct {
	Pos     token.Position
	Name    string
	Message string
}

func (e *SemanticError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: schema error: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: schema error: %s: %s", e.Pos, e.Name, e.Message)
}

// NewSemantic builds a SemanticError.
func NewSemantic(pos token.Position, name, format string, args ...any) error {
	return &SemanticError{Pos: pos, Name: name, Message: fmt.Sprintf(format, args...)}
}

// StreamError reports a malformed binary input: read past end, array count
// over budget, missing sentinel, missing hash target, no value-list match
// where one is required (§7.3).
type StreamError struct {
	Offset  int64
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("offset %d: stream error: %s", e.Offset, e.Message)
}

// NewStream builds a StreamError at the given byte offset.
func NewStream(offset int64, format string, args ...any) error {
	return &StreamError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
