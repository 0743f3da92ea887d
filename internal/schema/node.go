// Package schema implements the Schema Parser and Reference Resolver
// (§4.2, §4.3): it compiles Format Description text into a resolved schema
// graph of type, const, enum, struct, field and attribute nodes.
//
// Per Design Note §9 the graph is arena-owned rather than a hand-rolled
// doubly linked list of heap nodes: a Graph holds every Node in one
// insertion-ordered slice, and Prev/Next/Base/DType are plain *Node
// pointers into that arena. Go's garbage collector makes pointer-into-slice
// safe, so there is no need for the original's index-based indirection.
package schema

import (
	"github.com/corwinn/libwind-ffd/internal/expr"
	"github.com/corwinn/libwind-ffd/internal/token"
)

// Kind tags which variant of §3.1's schema node a Node holds.
type Kind int

const (
	KindType Kind = iota
	KindConst
	KindEnum
	KindStruct
	KindField
	KindAttribute
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindConst:
		return "const"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindField:
		return "field"
	case KindAttribute:
		return "attribute"
	case KindFormat:
		return "format"
	default:
		return "?"
	}
}

// ParamKind classifies a parametric struct's formal parameter once the
// resolver has inspected its uses (§4.3, §9 "parametric structs").
type ParamKind int

const (
	ParamUnclassified ParamKind = iota
	ParamIntLiteral
	ParamField
	ParamType
)

// Param is one formal parameter of a parametric struct.
type Param struct {
	Name  string
	Kind  ParamKind
	Value int    // for ParamIntLiteral
	Field string // dotted field path, for ParamField
}

// ValueRange is one inclusive integer range of a struct's value-list
// (`Name:[a,b],[c,d]`), per §3.1.
type ValueRange struct {
	Lo, Hi int
}

// Contains reports whether key falls within [Lo,Hi] inclusive.
func (r ValueRange) Contains(key int) bool {
	return key >= r.Lo && key <= r.Hi
}

// EnumItem is one member of an Enum node.
type EnumItem struct {
	Name  string
	Value int
	Guard expr.Node // optional
}

// FieldFlags are the boolean properties a Field node may carry (§3.1).
type FieldFlags struct {
	Array      bool
	Variadic   bool
	Composite  bool
	HashKey    bool
	ValueItem  bool // belongs to a value-list struct
}

// Dim is one array dimension of a Field, per §4.5.1.
type Dim struct {
	Lit      int    // literal count, when Sym == ""
	Sym      string // symbol naming a const/type/instance field, when non-empty
	Sentinel bool   // Lit is -K: read until element == K
}

// Node is one tagged schema node (§3.1). All fields are valid only for the
// variants that use them; Kind discriminates.
type Node struct {
	Kind Kind
	Name string
	Pos  token.Position

	// Arena linkage: Prev/Next are the top-level doubly linked sequence
	// (§3.1); Base is the back-pointer to a Field's owning Struct/Format
	// node.
	Prev, Next *Node
	Base       *Node

	Attrs []string // attached [ATTR] bodies, in source order

	Guard      expr.Node // optional, for Type/Const/Enum items/Field
	GuardCache *guardCache

	// Type
	Size      int
	Signed    bool
	Float     bool
	AliasName string // set when "type NAME ALIAS" names an earlier type

	// Const
	IntValue int
	StrValue string
	IsString bool

	// Enum
	BaseTypeName string
	BaseType     *Node
	Items        []EnumItem

	// Struct / Format
	Params      []Param
	ValueList   []ValueRange
	Fields      []*Node // owned children, declaration order
	IsFormat    bool

	// Field
	TypeName string   // unresolved data-type name, possibly "Base<args>"
	Args     []string // actual parametric arguments bound at this invocation site
	DType    *Node
	Flags    FieldFlags
	Dims     []Dim
	HashType     string // hash target element-struct type name, for Flags.HashKey
	HashTypeNode *Node  // resolved HashType, set by the Reference Resolver

	// DTypeCandidates and HashTypeCandidates are set instead of DType /
	// HashTypeNode when more than one same-named declaration is visible and
	// at least one carries a guard (§4.3 "defer resolution to evaluation
	// time"): the Reference Resolver cannot pick among them without an
	// instance to evaluate the guards against. ResolveDeferred performs that
	// pick at decode time, caching it into DType / HashTypeNode exactly as
	// the eager path would have. A non-nil candidate list, not DType's own
	// Guard field, is what Invalidate (§4.7) must key off of: the candidate
	// eventually chosen need not itself be guarded.
	DTypeCandidates    []*Node
	HashTypeCandidates []*Node
}

// guardCache holds the §4.4 "side effects" first-use-wins enablement cache
// for a guarded Type/Const/Enum node, held in Node.GuardCache; its own
// fields are unexported. A Type/Const/Enum's own *enablement* (as opposed
// to a field's guard, which is evaluated fresh every visit) is
// schema-scoped and reset only by Invalidate (§4.7).
type guardCache struct {
	resolved bool
	enabled  bool
}

// Enabled evaluates (and caches) this node's own guard, if any. Nodes with
// no guard are always enabled.
func (n *Node) Enabled(r expr.Resolver) bool {
	if n.Guard == nil {
		return true
	}
	if n.GuardCache == nil {
		n.GuardCache = &guardCache{}
	}
	if n.GuardCache.resolved {
		return n.GuardCache.enabled
	}
	n.GuardCache.enabled = expr.Eval(n.Guard, r)
	n.GuardCache.resolved = true
	return n.GuardCache.enabled
}

// Invalidate clears this node's cached guard enablement (§4.7).
func (n *Node) Invalidate() {
	n.GuardCache = nil
}

// Attribute looks up an attached attribute body by prefix match, per the
// original's "GetAttr" convention of attaching [ATTR] lines to the
// following directive and querying them back by a leading keyword.
func (n *Node) Attribute(query string) (string, bool) {
	for _, a := range n.Attrs {
		if a == query || len(a) > len(query) && a[:len(query)] == query && a[len(query)] == ' ' {
			return a, true
		}
	}
	return "", false
}

// PrecomputeSize returns the statically known byte size of a Struct node
// and true, or (0, false) if the struct's size depends on runtime state:
// a dynamic array dimension, a guarded or variadic field, or a named
// struct-typed field (§4.5.1 "statically precomputable size"). A composite
// (unnamed, inlined) struct field counts with its own precomputed size.
func (n *Node) PrecomputeSize() (int, bool) {
	if n.Kind != KindStruct && n.Kind != KindFormat {
		return 0, false
	}
	total := 0
	for _, f := range n.Fields {
		if f.Guard != nil {
			return 0, false
		}
		if f.Flags.Variadic {
			return 0, false
		}
		if f.DType == nil {
			return 0, false
		}
		switch f.DType.Kind {
		case KindType:
			elemSize := f.DType.Size
			count := 1
			if f.Flags.Array {
				for _, d := range f.Dims {
					if d.Sym != "" || d.Sentinel {
						return 0, false
					}
					count *= d.Lit
				}
			}
			total += elemSize * count
		case KindEnum:
			if f.DType.BaseType == nil {
				return 0, false
			}
			count := 1
			if f.Flags.Array {
				for _, d := range f.Dims {
					if d.Sym != "" || d.Sentinel {
						return 0, false
					}
					count *= d.Lit
				}
			}
			total += f.DType.BaseType.Size * count
		case KindStruct, KindFormat:
			if f.Flags.Composite {
				sub, ok := f.DType.PrecomputeSize()
				if !ok {
					return 0, false
				}
				total += sub
				continue
			}
			return 0, false
		default:
			return 0, false
		}
	}
	return total, true
}
