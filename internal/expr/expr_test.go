package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type mapResolver map[string]int

func (m mapResolver) Resolve(sym Sym, _ Node) (int, bool) {
	v, ok := m[sym.Name()]
	return v, ok
}

func TestParseSimpleComparison(t *testing.T) {
	n, err := Parse("V == 1")
	require.NoError(t, err)
	b, ok := n.(Binary)
	require.True(t, ok)
	require.Equal(t, OpEq, b.Op)
	require.Equal(t, Sym{Path: []string{"V"}}, b.L)
	require.Equal(t, Lit{Value: 1}, b.R)
}

func TestParseLeftToRightChain(t *testing.T) {
	n, err := Parse("a == 1 && b == 2")
	require.NoError(t, err)
	// Strict left fold: ((a == 1) && b) == 2.
	outer, ok := n.(Binary)
	require.True(t, ok)
	require.Equal(t, OpEq, outer.Op)
	inner, ok := outer.L.(Binary)
	require.True(t, ok)
	require.Equal(t, OpAnd, inner.Op)
}

func TestParseNestedParens(t *testing.T) {
	n, err := Parse("V == 1 && (x > 2)")
	require.NoError(t, err)
	outer := n.(Binary)
	require.Equal(t, OpAnd, outer.Op)
	_, ok := outer.R.(Binary)
	require.True(t, ok)
}

func TestParseDottedSymbol(t *testing.T) {
	n, err := Parse("a.b.c == 1")
	require.NoError(t, err)
	b := n.(Binary)
	sym := b.L.(Sym)
	require.Equal(t, []string{"a", "b", "c"}, sym.Path)
	require.Equal(t, "a.b.c", sym.Name())
}

func TestParseNegation(t *testing.T) {
	n, err := Parse("!flag")
	require.NoError(t, err)
	u := n.(Unary)
	require.Equal(t, OpNot, u.Op)
}

func TestParseHexAndNegativeLiterals(t *testing.T) {
	n, err := Parse("V == 0x1F")
	require.NoError(t, err)
	b := n.(Binary)
	require.Equal(t, Lit{Value: 0x1F}, b.R)

	n, err = Parse("V == -1")
	require.NoError(t, err)
	b = n.(Binary)
	require.Equal(t, Lit{Value: -1}, b.R)
}

func TestParseEmptyExpressionFails(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
}

func TestParseTrailingGarbageFails(t *testing.T) {
	_, err := Parse("V == 1 )")
	require.Error(t, err)
}

func TestEvalComparisons(t *testing.T) {
	r := mapResolver{"V": 1, "W": 2}

	n, err := Parse("V == 1")
	require.NoError(t, err)
	require.True(t, Eval(n, r))

	n, err = Parse("V == 2")
	require.NoError(t, err)
	require.False(t, Eval(n, r))

	n, err = Parse("V < W")
	require.NoError(t, err)
	require.True(t, Eval(n, r))
}

func TestEvalUnresolvedSymbolIsFalseExceptNotEqual(t *testing.T) {
	r := mapResolver{}

	n, err := Parse("x == 1")
	require.NoError(t, err)
	require.False(t, Eval(n, r))

	n, err = Parse("x != 1")
	require.NoError(t, err)
	require.True(t, Eval(n, r))
}

func TestEvalAndOrChain(t *testing.T) {
	r := mapResolver{"a": 1, "b": 2}

	n, err := Parse("(a == 1) && (b == 2)")
	require.NoError(t, err)
	require.True(t, Eval(n, r))

	n, err = Parse("(a == 1) && (b == 9)")
	require.NoError(t, err)
	require.False(t, Eval(n, r))

	n, err = Parse("(a == 9) || (b == 2)")
	require.NoError(t, err)
	require.True(t, Eval(n, r))
}

func TestEvalNegation(t *testing.T) {
	r := mapResolver{"flag": 0}
	n, err := Parse("!flag")
	require.NoError(t, err)
	require.True(t, Eval(n, r))

	r = mapResolver{"flag": 1}
	require.False(t, Eval(n, r))
}

func TestEvalBitwiseAnd(t *testing.T) {
	r := mapResolver{"mask": 0x6}
	n, err := Parse("mask & 0x2")
	require.NoError(t, err)
	require.True(t, Eval(n, r))

	n, err = Parse("mask & 0x1")
	require.NoError(t, err)
	require.False(t, Eval(n, r))
}
