// Package decode implements the Stream Evaluator (§4.5): it walks a
// resolved schema.Graph against an ffdstream.Stream, reading bytes in
// schema declaration order and building an instance tree (§3.2).
package decode

import "github.com/corwinn/libwind-ffd/internal/schema"

// Node is one decoded instance value (§3.2). A leaf node carries Buf; a
// composite/array-of-struct/struct node carries Children. The two are
// never both non-empty.
type Node struct {
	Schema *schema.Node // the field (or array-element field) that produced this node
	Name   string
	Parent *Node

	Buf      []byte
	Children []*Node

	IsArray  bool
	Signed   bool
	ElemSize int
	Level    int

	HashRef *Node // resolved array-of-hash-type instance, for Flags.HashKey leaves
}

// Child returns the first direct child named name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// NodeCount returns the size of the subtree rooted at n, counting n itself.
func (n *Node) NodeCount() int {
	count := 1
	for _, c := range n.Children {
		count += c.NodeCount()
	}
	return count
}

// Release detaches n's buffers and children so they become eligible for
// garbage collection immediately, rather than only when n itself is
// collected (§6 "release" entry point, §5 "instance trees are owned
// exclusively ... until released").
func Release(n *Node) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		Release(c)
	}
	n.Buf = nil
	n.Children = nil
	n.HashRef = nil
}

func newChild(parent *Node, fieldSchema *schema.Node, name string) *Node {
	return &Node{
		Schema: fieldSchema,
		Name:   name,
		Parent: parent,
		Level:  parent.Level + 1,
	}
}
