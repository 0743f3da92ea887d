package decode

import (
	"strings"

	"github.com/corwinn/libwind-ffd/internal/expr"
	"github.com/corwinn/libwind-ffd/internal/schema"
)

// instResolver implements expr.Resolver against the current instance tree
// and schema siblings (§4.4 steps 1-4).
type instResolver struct {
	g      *schema.Graph
	cur    *Node
	params map[string]int // active parametric-struct bindings (§4.3, §9)
}

func (r *instResolver) Resolve(sym expr.Sym, other expr.Node) (int, bool) {
	if v, ok := r.params[sym.Name()]; ok {
		return v, true
	}
	if v, ok := r.resolvePath(sym.Path); ok {
		return v, true
	}
	return r.resolveEnumItem(sym.Name(), other)
}

// resolvePath resolves a (possibly dotted) path first against the instance
// tree (fields already decoded in the enclosing instance, walking up
// through enclosing nodes), falling back to top-level schema constants.
func (r *instResolver) resolvePath(path []string) (int, bool) {
	node, ok := lookupInstance(r.cur, path[0])
	if ok {
		for _, part := range path[1:] {
			c, ok := node.Child(part)
			if !ok {
				return 0, false
			}
			node = c
		}
		return node.AsInt(), true
	}
	if len(path) == 1 {
		if c, ok := findConst(r.g, path[0]); ok {
			return c, true
		}
	}
	return 0, false
}

// resolveEnumItem implements §4.4 step 2: "if a symbol names an enum item
// of the *other* operand's type, substitute its integer value". The other
// operand, when itself a resolved Sym, tells us which enum to search;
// lacking that, any enum item of matching name is accepted.
func (r *instResolver) resolveEnumItem(name string, other expr.Node) (int, bool) {
	var enumHint *schema.Node
	if os, ok := other.(expr.Sym); ok {
		if n, ok := lookupInstance(r.cur, os.Path[0]); ok && n.Schema != nil && n.Schema.DType != nil && n.Schema.DType.Kind == schema.KindEnum {
			enumHint = n.Schema.DType
		}
	}
	for _, n := range r.g.Nodes() {
		if n.Kind != schema.KindEnum {
			continue
		}
		if enumHint != nil && n != enumHint {
			continue
		}
		for _, it := range n.Items {
			if it.Name == name {
				return it.Value, true
			}
		}
	}
	return 0, false
}

// lookupInstance searches cur's already-decoded children, then walks up
// through enclosing instance nodes, for a child named name.
func lookupInstance(cur *Node, name string) (*Node, bool) {
	for n := cur; n != nil; n = n.Parent {
		if c, ok := n.Child(name); ok {
			return c, true
		}
	}
	return nil, false
}

func findConst(g *schema.Graph, name string) (int, bool) {
	for _, n := range g.Nodes() {
		if n.Kind == schema.KindConst && n.Name == name {
			return n.IntValue, true
		}
	}
	return 0, false
}

func splitPath(s string) []string {
	return strings.Split(s, ".")
}
