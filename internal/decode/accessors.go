package decode

import "github.com/corwinn/libwind-ffd/internal/schema"

// Value Accessors (§4.6): typed views over a leaf instance node's byte
// buffer. Integer decoding is little-endian throughout, matching the
// description's host assumption of 32-bit int.

func readLE(buf []byte, signed bool) int {
	var u uint64
	for i, b := range buf {
		u |= uint64(b) << (8 * uint(i))
	}
	if !signed || len(buf) == 0 {
		return int(u)
	}
	bits := uint(len(buf) * 8)
	signBit := uint64(1) << (bits - 1)
	if u&signBit != 0 {
		return int(u) - int(uint64(1)<<bits)
	}
	return int(u)
}

// AsByte returns the first byte of the buffer.
func (n *Node) AsByte() byte {
	if len(n.Buf) == 0 {
		return 0
	}
	return n.Buf[0]
}

// AsShort reads up to 2 bytes, honoring signedness.
func (n *Node) AsShort() int {
	b := n.Buf
	if len(b) > 2 {
		b = b[:2]
	}
	return readLE(b, n.Signed)
}

// AsInt reads up to 4 bytes, honoring signedness. It never indirects
// through a hash table even when this node is a hash key (HashRef set) -
// use HashTarget for that (§4.6, §4.5 step 4).
func (n *Node) AsInt() int {
	return readLE(clamp(n.Buf, 4), n.Signed)
}

// HashTarget returns the instance this node's key indirects to through its
// hash table (§4.5 step 4), if any.
func (n *Node) HashTarget() (*Node, bool) {
	if n.HashRef == nil {
		return nil, false
	}
	key := readLE(clamp(n.Buf, 4), n.Signed)
	if key < 0 || key >= len(n.HashRef.Children) {
		return nil, false
	}
	return n.HashRef.Children[key], true
}

func clamp(b []byte, max int) []byte {
	if len(b) > max {
		return b[:max]
	}
	return b
}

// AsString returns the buffer interpreted as raw text.
func (n *Node) AsString() string {
	return string(n.Buf)
}

// AsArr reinterprets the buffer as a sequence of little-endian integers of
// the given element width, honoring signedness.
func (n *Node) AsArr(elemSize int) []int {
	if elemSize <= 0 {
		return nil
	}
	out := make([]int, 0, len(n.Buf)/elemSize)
	for i := 0; i+elemSize <= len(n.Buf); i += elemSize {
		out = append(out, readLE(n.Buf[i:i+elemSize], n.Signed))
	}
	return out
}

// SumInt sums an integer array's elements - the "jagged array" dimension
// support of §4.5.1.
func (n *Node) SumInt() int {
	size := n.ElemSize
	if size <= 0 {
		size = 1
	}
	total := 0
	for _, v := range n.AsArr(size) {
		total += v
	}
	return total
}

// EnumName looks up the enum item name matching this node's integer value,
// when this node's schema data type is an Enum.
func (n *Node) EnumName() (string, bool) {
	if n.Schema == nil || n.Schema.DType == nil || n.Schema.DType.Kind != schema.KindEnum {
		return "", false
	}
	v := n.AsInt()
	for _, it := range n.Schema.DType.Items {
		if it.Value == v {
			return it.Name, true
		}
	}
	return "", false
}
