package ffd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corwinn/libwind-ffd/ffdstream"
)

func decodeBytes(t *testing.T, description string, input []byte) *Instance {
	t.Helper()
	s, err := Compile([]byte(description))
	require.NoError(t, err)
	inst, err := Decode(s, ffdstream.FromReadSeeker(bytes.NewReader(input)))
	require.NoError(t, err)
	return inst
}

func TestScenarioConstSizedArray(t *testing.T) {
	root := decodeBytes(t, "type u8 1\nconst N 3\nformat Root\n    u8 xs[N]\n", []byte{1, 2, 3})
	xs, ok := root.Child("xs")
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, xs.Buf)
	require.Equal(t, 4, root.NodeCount())
}

func TestScenarioVariadicInline(t *testing.T) {
	desc := "type u8 1\nenum Kind u8\n    A 0\n    B 1\n\nstruct Body:1,2\n    u8 b\n\nformat Root\n    Kind k\n    ... k\n"
	root := decodeBytes(t, desc, []byte{0x01, 0x42})
	k, ok := root.Child("k")
	require.True(t, ok)
	require.Equal(t, 1, k.AsInt())
	b, ok := root.Child("b")
	require.True(t, ok)
	require.Equal(t, 0x42, b.AsInt())
}

func TestScenarioLengthPrefixedArray(t *testing.T) {
	desc := "type u8 1\ntype u16 2\nformat Root\n    u8 n\n    u16 xs[n]\n"
	root := decodeBytes(t, desc, []byte{0x02, 0x01, 0x00, 0x02, 0x00})
	n, ok := root.Child("n")
	require.True(t, ok)
	require.Equal(t, 2, n.AsInt())
	xs, ok := root.Child("xs")
	require.True(t, ok)
	require.Len(t, xs.Buf, 4)
}

func TestScenarioSentinelArray(t *testing.T) {
	desc := "type u8 1\nformat Root\n    u8 s[-0]\n"
	s, err := Compile([]byte(desc))
	require.NoError(t, err)
	stream := ffdstream.FromReadSeeker(bytes.NewReader([]byte{0x41, 0x42, 0x00}))
	inst, err := Decode(s, stream)
	require.NoError(t, err)
	sf, ok := inst.Child("s")
	require.True(t, ok)
	require.Equal(t, []byte{0x41, 0x42}, sf.Buf)
	require.Equal(t, int64(3), stream.Tell())
}

func TestScenarioGuardedField(t *testing.T) {
	desc := "type u8 1\nconst V 1\nformat Root\n    u8 a (V == 1)\n    u8 b (V == 2)\n"
	s, err := Compile([]byte(desc))
	require.NoError(t, err)
	stream := ffdstream.FromReadSeeker(bytes.NewReader([]byte{0xAA}))
	inst, err := Decode(s, stream)
	require.NoError(t, err)
	_, ok := inst.Child("a")
	require.True(t, ok)
	_, ok = inst.Child("b")
	require.False(t, ok)
	require.Equal(t, int64(1), stream.Tell())
}

func TestScenarioHashKeyIndirection(t *testing.T) {
	desc := "type u8 1\nstruct Item\n    u8 name[2]\nformat Root\n    u8 n\n    Item items[n]\n    Item<>[] ref\n"
	root := decodeBytes(t, desc, []byte{0x02, 'a', 'b', 'c', 'd', 0x01})
	ref, ok := root.Child("ref")
	require.True(t, ok)
	target, ok := ref.HashTarget()
	require.True(t, ok)
	name, ok := target.Child("name")
	require.True(t, ok)
	require.Equal(t, "cd", name.AsString())
}

func TestInvalidateThenRedecodeIsDeterministic(t *testing.T) {
	desc := "type u8 1\nconst N 2\nformat Root\n    u8 xs[N]\n"
	s, err := Compile([]byte(desc))
	require.NoError(t, err)
	input := []byte{9, 8}

	first, err := Decode(s, ffdstream.FromReadSeeker(bytes.NewReader(input)))
	require.NoError(t, err)
	Invalidate(s)
	second, err := Decode(s, ffdstream.FromReadSeeker(bytes.NewReader(input)))
	require.NoError(t, err)

	fx, _ := first.Child("xs")
	sx, _ := second.Child("xs")
	require.Equal(t, fx.Buf, sx.Buf)
}

func TestGetAttributeEntryPoint(t *testing.T) {
	s, err := Compile([]byte("type u8 1\nconst N 3\nformat Root\n    u8 xs[N]\n"))
	require.NoError(t, err)
	n, ok := GetAttribute(s, "N")
	require.True(t, ok)
	require.Equal(t, 3, n.IntValue)
}
