package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenKinds(t *testing.T, src string) []Kind {
	t.Helper()
	l, err := New([]byte(src))
	require.NoError(t, err)
	var kinds []Kind
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		kinds = append(kinds, tok.Kind)
		if tok.Kind == EOF {
			return kinds
		}
	}
}

func TestKeywordsAndIdent(t *testing.T) {
	kinds := tokenKinds(t, "type u8 1\n")
	require.Equal(t, []Kind{KwType, IDENT, INT, NEWLINE, EOF}, kinds)
}

func TestHexAndDecimalIntegers(t *testing.T) {
	l, err := New([]byte("0x1F -3 42"))
	require.NoError(t, err)
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, INT, tok.Kind)
	require.Equal(t, "0x1F", tok.String())

	tok, err = l.Next()
	require.NoError(t, err)
	require.Equal(t, INT, tok.Kind)
	require.Equal(t, "-3", tok.String())

	tok, err = l.Next()
	require.NoError(t, err)
	require.Equal(t, "42", tok.String())
}

func TestCommentsAreSkipped(t *testing.T) {
	kinds := tokenKinds(t, "// comment\nconst N 3 /* inline */\n")
	require.Equal(t, []Kind{NEWLINE, KwConst, IDENT, INT, NEWLINE, EOF}, kinds)
}

func TestStringLiteral(t *testing.T) {
	l, err := New([]byte(`const NAME "hello world"`))
	require.NoError(t, err)
	_, _ = l.Next() // const
	_, _ = l.Next() // NAME
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, STRING, tok.Kind)
	require.Equal(t, "hello world", tok.String())
}

func TestCaptureParenCapturesBalancedExpression(t *testing.T) {
	l, err := New([]byte("(V == 1 && (x > 2)) rest"))
	require.NoError(t, err)
	inner, pos, err := l.CaptureParen()
	require.NoError(t, err)
	require.Equal(t, "V == 1 && (x > 2)", string(inner))
	require.Equal(t, 1, pos.Column)

	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, "rest", tok.String())
}

func TestCaptureBracketAttr(t *testing.T) {
	l, err := New([]byte("[deprecated since 2]\nrest"))
	require.NoError(t, err)
	body, _, err := l.CaptureBracketAttr()
	require.NoError(t, err)
	require.Equal(t, "deprecated since 2", body)
}

func TestRejectsNonASCII(t *testing.T) {
	_, err := New([]byte("type \x80 1"))
	require.Error(t, err)
}

func TestAtLineStartTracksColumn(t *testing.T) {
	l, err := New([]byte("struct Foo\n    u8 x\n"))
	require.NoError(t, err)
	top, err := l.AtLineStart()
	require.NoError(t, err)
	require.True(t, top)

	_, _ = l.Next() // struct
	_, _ = l.Next() // Foo
	_, _ = l.Next() // NEWLINE
	indented, err := l.AtLineStart()
	require.NoError(t, err)
	require.False(t, indented)
}
