package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleArrayFormat(t *testing.T) {
	src := "type u8 1\nconst N 3\nformat Root\n    u8 xs[N]\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	require.NotNil(t, g.Format)
	require.Equal(t, "Root", g.Format.Name)
	require.Len(t, g.Format.Fields, 1)

	f := g.Format.Fields[0]
	require.Equal(t, "xs", f.Name)
	require.True(t, f.Flags.Array)
	require.NotNil(t, f.DType)
	require.Equal(t, KindType, f.DType.Kind)
	require.Len(t, f.Dims, 1)
	require.Equal(t, "N", f.Dims[0].Sym)
}

func TestParseEnumAutoIncrement(t *testing.T) {
	src := "type u8 1\nenum Kind u8\n    A\n    B\n    C 5\n    D\n\nformat Root\n    Kind k\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	var kind *Node
	for _, n := range g.Nodes() {
		if n.Kind == KindEnum && n.Name == "Kind" {
			kind = n
		}
	}
	require.NotNil(t, kind)
	require.Equal(t, []EnumItem{
		{Name: "A", Value: 0},
		{Name: "B", Value: 1},
		{Name: "C", Value: 5},
		{Name: "D", Value: 6},
	}, kind.Items)
	require.NotNil(t, kind.BaseType)
	require.Equal(t, 1, kind.BaseType.Size)
}

func TestParseGuardedField(t *testing.T) {
	src := "type u8 1\nconst V 1\nformat Root\n    u8 a (V == 1)\n    u8 b (V == 2)\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, g.Format.Fields, 2)
	require.NotNil(t, g.Format.Fields[0].Guard)
	require.NotNil(t, g.Format.Fields[1].Guard)
}

func TestParseHashKeyField(t *testing.T) {
	src := "type u8 1\nstruct Item\n    u8 name[2]\nformat Root\n    u8 n\n    Item items[n]\n    Item<>[] ref\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, g.Format.Fields, 3)
	ref := g.Format.Fields[2]
	require.Equal(t, "ref", ref.Name)
	require.True(t, ref.Flags.HashKey)
	require.NotNil(t, ref.HashTypeNode)
	require.Equal(t, "Item", ref.HashTypeNode.Name)
}

func TestParseVariadicField(t *testing.T) {
	src := "type u8 1\nenum Kind u8\n    A 0\n    B 1\n\nstruct Body:1,2\n    u8 b\n\nformat Root\n    Kind k\n    ... k\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, g.Format.Fields, 2)
	require.True(t, g.Format.Fields[1].Flags.Variadic)
	require.Equal(t, "k", g.Format.Fields[1].TypeName)

	var body *Node
	for _, n := range g.Nodes() {
		if n.Name == "Body" {
			body = n
		}
	}
	require.NotNil(t, body)
	require.Equal(t, []ValueRange{{Lo: 1, Hi: 1}, {Lo: 2, Hi: 2}}, body.ValueList)
}

func TestParseValueListDashRange(t *testing.T) {
	src := "type u8 1\nstruct Body:1-3,5,10-12\n    u8 b\n\nformat Root\n    Body body\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)

	var body *Node
	for _, n := range g.Nodes() {
		if n.Name == "Body" {
			body = n
		}
	}
	require.NotNil(t, body)
	require.Equal(t, []ValueRange{{Lo: 1, Hi: 3}, {Lo: 5, Hi: 5}, {Lo: 10, Hi: 12}}, body.ValueList)
}

func TestParseValueListBadRangeIsError(t *testing.T) {
	_, err := Parse([]byte("struct Body:5-1\n    u8 b\n\nformat Root\n    Body body\n"))
	require.Error(t, err)
}

func TestParseSentinelArray(t *testing.T) {
	src := "type u8 1\nformat Root\n    u8 s[-0]\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	f := g.Format.Fields[0]
	require.True(t, f.Dims[0].Sentinel)
	require.Equal(t, 0, f.Dims[0].Lit)
}

func TestParseMissingFormatIsError(t *testing.T) {
	_, err := Parse([]byte("type u8 1\n"))
	require.Error(t, err)
}

func TestParseUnknownTypeIsError(t *testing.T) {
	_, err := Parse([]byte("format Root\n    Nope x\n"))
	require.Error(t, err)
}

func TestPrecomputeSizeForFlatStruct(t *testing.T) {
	src := "type u8 1\ntype u16 2\nformat Root\n    u8 a\n    u16 b\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	size, ok := g.Format.PrecomputeSize()
	require.True(t, ok)
	require.Equal(t, 3, size)
}

func TestPrecomputeSizeFalseForGuardedField(t *testing.T) {
	src := "type u8 1\nconst V 1\nformat Root\n    u8 a (V == 1)\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	_, ok := g.Format.PrecomputeSize()
	require.False(t, ok)
}

func TestGetAttributeTopLevel(t *testing.T) {
	src := "type u8 1\nconst N 3\nformat Root\n    u8 xs[N]\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	n, ok := g.GetAttribute("N")
	require.True(t, ok)
	require.Equal(t, KindConst, n.Kind)
}

func TestInvalidateClearsGuardCache(t *testing.T) {
	src := "type u8 1\nconst V 1 (V == 1)\nformat Root\n    u8 a\n"
	g, err := Parse([]byte(src))
	require.NoError(t, err)
	var v *Node
	for _, n := range g.Nodes() {
		if n.Name == "V" {
			v = n
		}
	}
	require.NotNil(t, v)
	v.GuardCache = &guardCache{resolved: true, enabled: true}
	g.Invalidate()
	require.Nil(t, v.GuardCache)
}
