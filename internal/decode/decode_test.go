package decode_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corwinn/libwind-ffd/internal/decode"
	"github.com/corwinn/libwind-ffd/internal/schema"
	"github.com/corwinn/libwind-ffd/ffdstream"
)

func compileAndDecode(t *testing.T, desc string, input []byte) *decode.Node {
	t.Helper()
	g, err := schema.Parse([]byte(desc))
	require.NoError(t, err)
	inst, err := decode.Decode(g, ffdstream.FromReadSeeker(bytes.NewReader(input)))
	require.NoError(t, err)
	return inst
}

func TestDecode_ParametricStructDimensionBoundToOuterField(t *testing.T) {
	desc := "type u8 1\nstruct Pair<N>\n    u8 items[N]\n\nformat Root\n    u8 n\n    Pair<n> pair\n"
	root := compileAndDecode(t, desc, []byte{2, 0xAA, 0xBB})

	pair, ok := root.Child("pair")
	require.True(t, ok)
	items, ok := pair.Child("items")
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0xBB}, items.Buf)
}

func TestDecode_VariadicNoMatchTerminatesWithoutError(t *testing.T) {
	desc := "type u8 1\nenum Kind u8\n    A 0\n    B 1\n\nstruct Body:1\n    u8 b\n\nformat Root\n    Kind k\n    ... k\n"
	root := compileAndDecode(t, desc, []byte{0x00})

	k, ok := root.Child("k")
	require.True(t, ok)
	assert.Equal(t, 0, k.AsInt())
	_, ok = root.Child("b")
	assert.False(t, ok)
}

func TestDecode_JaggedArrayDimensionSumsSiblingArray(t *testing.T) {
	desc := "type u8 1\nformat Root\n    u8 lens[2]\n    u8 data[lens]\n"
	root := compileAndDecode(t, desc, []byte{1, 2, 0xAA, 0xBB, 0xCC})

	data, ok := root.Child("data")
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, data.Buf)
}

func TestDecode_ReleaseClearsSubtree(t *testing.T) {
	desc := "type u8 1\nconst N 2\nformat Root\n    u8 xs[N]\n"
	root := compileAndDecode(t, desc, []byte{1, 2})

	decode.Release(root)
	assert.Nil(t, root.Children)
}

// TestDecode_GuardedTypeSwitchesAcrossInvalidate proves two things about
// §4.3's deferred resolution and §4.4's guard-enablement cache together:
// that a field referencing a name with more than one guarded declaration
// actually switches which one it binds to depending on runtime state, and
// that Graph.Invalidate() re-arms that choice for the next decode instead
// of freezing whichever declaration won the first time.
func TestDecode_GuardedTypeSwitchesAcrossInvalidate(t *testing.T) {
	desc := "type u8 1\n" +
		"type Word 2 (mode == 2)\n" +
		"type Word 1 (mode == 1)\n" +
		"format Root\n" +
		"    u8 mode\n" +
		"    Word w\n"
	g, err := schema.Parse([]byte(desc))
	require.NoError(t, err)

	root1, err := decode.Decode(g, ffdstream.FromReadSeeker(bytes.NewReader([]byte{1, 0xAA})))
	require.NoError(t, err)
	w1, ok := root1.Child("w")
	require.True(t, ok)
	assert.Equal(t, 1, len(w1.Buf))

	g.Invalidate()

	root2, err := decode.Decode(g, ffdstream.FromReadSeeker(bytes.NewReader([]byte{2, 0xAA, 0xBB})))
	require.NoError(t, err)
	w2, ok := root2.Child("w")
	require.True(t, ok)
	assert.Equal(t, 2, len(w2.Buf))
}
