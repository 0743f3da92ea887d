package schema

// Graph is the arena owning every schema node produced by a compile, plus
// the top-level doubly linked sequence threaded through Prev/Next (§3.1).
// A single Graph may back many sequential decodes (§5 "shared resources").
type Graph struct {
	nodes  []*Node
	head   *Node
	tail   *Node
	Format *Node
}

// newGraph returns an empty arena.
func newGraph() *Graph {
	return &Graph{}
}

// add appends n to the arena and to the top-level sequence, chaining
// Prev/Next in insertion (== textual) order.
func (g *Graph) add(n *Node) *Node {
	g.nodes = append(g.nodes, n)
	if g.tail != nil {
		g.tail.Next = n
		n.Prev = g.tail
	} else {
		g.head = n
	}
	g.tail = n
	if n.Kind == KindFormat {
		g.Format = n
	}
	return n
}

// Nodes returns the arena's top-level nodes in declaration order. The
// returned slice must not be mutated.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// GetAttribute is the top-level attribute lookup entry point (§6
// "get_attribute"): it returns the first top-level node named name, if any.
func (g *Graph) GetAttribute(name string) (*Node, bool) {
	for _, n := range g.nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Invalidate clears every guarded node's cached enablement and re-arms every
// field whose data type or hash-key target was deferred behind a guard,
// readying the graph for a fresh decode of a different input (§4.7). A
// field is re-armed by DTypeCandidates/HashTypeCandidates being non-nil, not
// by the previously chosen DType/HashTypeNode's own Guard field: a later
// decode may pick a different, unguarded candidate from the same list, and
// that resolution is still guard-dependent even though the winning candidate
// carries no guard of its own.
func (g *Graph) Invalidate() {
	for _, n := range g.nodes {
		n.Invalidate()
		if n.Kind == KindStruct || n.Kind == KindFormat {
			for _, f := range n.Fields {
				if f.DTypeCandidates != nil {
					f.DType = nil
				}
				if f.HashTypeCandidates != nil {
					f.HashTypeNode = nil
				}
			}
		}
	}
}
