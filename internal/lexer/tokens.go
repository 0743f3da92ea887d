package lexer

import "github.com/corwinn/libwind-ffd/internal/token"

// Kind enumerates lexical tokens for the description grammar (§4.1).
type Kind int

const (
	EOF Kind = iota
	ILLEGAL

	NEWLINE // blank-line terminator for enum/struct blocks

	// Keywords
	KwType
	KwConst
	KwEnum
	KwStruct
	KwFormat

	// Literals
	IDENT  // [A-Za-z_][A-Za-z0-9_]* (a dotted path is IDENT DOT IDENT ...)
	INT    // decimal or 0x-prefixed integer
	STRING // "..."

	// Punctuation
	DOT      // .
	COMMA    // ,
	COLON    // :
	LT       // <
	GT       // >
	LBRACKET // [
	RBRACKET // ]
	LPAREN   // (
	RPAREN   // )
	ELLIPSIS // ...
	QUESTION // ???
)

// String renders the token kind name, mirroring TokenType.String() style.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case NEWLINE:
		return "NEWLINE"
	case KwType:
		return "type"
	case KwConst:
		return "const"
	case KwEnum:
		return "enum"
	case KwStruct:
		return "struct"
	case KwFormat:
		return "format"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case STRING:
		return "STRING"
	case DOT:
		return "DOT"
	case COMMA:
		return "COMMA"
	case COLON:
		return "COLON"
	case LT:
		return "LT"
	case GT:
		return "GT"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case ELLIPSIS:
		return "ELLIPSIS"
	case QUESTION:
		return "QUESTION"
	default:
		return "UNKNOWN"
	}
}

// Keywords maps leading-column-1 identifiers to directive keywords (§4.1).
var Keywords = map[string]Kind{
	"type":   KwType,
	"const":  KwConst,
	"enum":   KwEnum,
	"struct": KwStruct,
	"format": KwFormat,
}

// Token is one lexical unit: its kind, raw text and source position.
//
// Text is a slice into the original source buffer - zero extra allocation,
// mirroring the teacher lexer's []byte-backed Token.
type Token struct {
	Kind Kind
	Text []byte
	Pos  token.Position
}

// String returns the token text, for debugging and tests.
func (t Token) String() string { return string(t.Text) }
