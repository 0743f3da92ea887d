package decode

import (
	"fmt"

	"github.com/corwinn/libwind-ffd/internal/expr"
	"github.com/corwinn/libwind-ffd/internal/ffderr"
	"github.com/corwinn/libwind-ffd/internal/schema"
	"github.com/corwinn/libwind-ffd/ffdstream"
)

type config struct {
	maxArrayElements int
}

func defaultConfig() config {
	return config{maxArrayElements: 1 << 21}
}

// Option configures a Decode call's runtime limits.
type Option func(*config)

// WithMaxArrayElements overrides the maximum total element count accepted
// for a single array field (§4.5.1, §8 invariant bound 2^21).
func WithMaxArrayElements(n int) Option {
	return func(c *config) { c.maxArrayElements = n }
}

// Context is the Stream Evaluator's per-decode state: the schema graph, the
// byte stream being consumed, and configured budgets. It carries no
// resolution cache of its own - guarded Type/Const/Enum enablement is
// cached on the schema node itself (§4.4), cleared by Graph.Invalidate
// (§4.7).
type Context struct {
	g   *schema.Graph
	s   ffdstream.Stream
	cfg config
}

// Decode is the Stream Evaluator's entry point (§6 "decode"): it walks g's
// Format node against s and returns the root instance node.
func Decode(g *schema.Graph, s ffdstream.Stream, opts ...Option) (*Node, error) {
	if g.Format == nil {
		return nil, fmt.Errorf("ffd: schema has no format node")
	}
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	ctx := &Context{g: g, s: s, cfg: cfg}
	root := &Node{Schema: g.Format, Name: g.Format.Name}
	if err := ctx.evalStructFields(g.Format, root); err != nil {
		return nil, err
	}
	return root, nil
}

// evalStructFields decodes every field of structNode into cur's children
// in declaration order (§4.5, §5 "ordering").
func (c *Context) evalStructFields(structNode *schema.Node, cur *Node) error {
	return c.evalStructFieldsWithParams(structNode, cur, nil)
}

func (c *Context) evalStructFieldsWithParams(structNode *schema.Node, cur *Node, params map[string]int) error {
	r := &instResolver{g: c.g, cur: cur, params: params}
	for _, f := range structNode.Fields {
		if f.Guard != nil && !expr.Eval(f.Guard, r) {
			continue // guarded-false: no bytes consumed, no instance node (§4.5 step 1)
		}
		if err := c.evalField(f, cur, r); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) evalField(f *schema.Node, cur *Node, r *instResolver) error {
	if err := schema.ResolveDeferred(f, r); err != nil {
		return err
	}
	switch {
	case f.Flags.Variadic:
		return c.evalVariadicField(f, cur, r)
	case f.Flags.HashKey && !f.Flags.Array:
		// A hash-key field stores an index, never a nested struct instance,
		// even when its own TYPE name happens to resolve to the hash
		// target struct itself (the "TYPE<>[] NAME" shorthand of §4.1).
		child, err := c.evalLeafField(f, cur)
		if err != nil {
			return err
		}
		cur.Children = append(cur.Children, child)
		return c.maybeLinkHashKey(f, cur)
	case f.Flags.Array:
		child, err := c.evalArrayField(f, cur, r)
		if err != nil {
			return err
		}
		cur.Children = append(cur.Children, child)
		return c.maybeLinkHashKey(f, cur)
	case f.Flags.Composite:
		if f.DType == nil {
			return ffderr.NewSemantic(f.Pos, f.Name, "composite field has no resolved type")
		}
		params := bindParams(f, r)
		return c.evalStructFieldsWithParams(f.DType, cur, params)
	case f.DType != nil && (f.DType.Kind == schema.KindStruct || f.DType.Kind == schema.KindFormat):
		child := newChild(cur, f, f.Name)
		params := bindParams(f, r)
		if err := c.evalStructFieldsWithParams(f.DType, child, params); err != nil {
			return err
		}
		cur.Children = append(cur.Children, child)
		return nil
	default:
		child, err := c.evalLeafField(f, cur)
		if err != nil {
			return err
		}
		cur.Children = append(cur.Children, child)
		return c.maybeLinkHashKey(f, cur)
	}
}

func (c *Context) evalLeafField(f *schema.Node, cur *Node) (*Node, error) {
	if f.DType == nil {
		return nil, ffderr.NewSemantic(f.Pos, f.Name, "field has no resolved data type")
	}
	size := f.DType.Size
	signed := f.DType.Signed
	switch f.DType.Kind {
	case schema.KindEnum:
		if f.DType.BaseType == nil {
			return nil, ffderr.NewSemantic(f.Pos, f.Name, "enum field has unresolved base type")
		}
		size = f.DType.BaseType.Size
		signed = f.DType.BaseType.Signed
	case schema.KindStruct, schema.KindFormat:
		// Hash-key field named after its own target struct (§4.1
		// "TYPE<>[] NAME"): the key itself is stored as a single byte.
		size = 1
		signed = false
	}
	child := newChild(cur, f, f.Name)
	child.Signed = signed
	buf := make([]byte, size)
	if err := c.s.Read(buf); err != nil {
		return nil, fmt.Errorf("ffd: reading field %q: %w", f.Name, err)
	}
	child.Buf = buf
	return child, nil
}

func (c *Context) evalVariadicField(f *schema.Node, cur *Node, r *instResolver) error {
	target, ok := c.resolveVariadic(f, r)
	if !ok {
		return nil // no matching value-list entry: not an error, terminates expansion (§4.5.2)
	}
	return c.evalStructFields(target, cur)
}

// maybeLinkHashKey implements §4.5 step 4: after reading a leaf (or array)
// field marked as a hash key, locate the most recently decoded sibling (or
// ancestor) array-of-HashType instance and store it as this node's hash
// table reference.
func (c *Context) maybeLinkHashKey(f *schema.Node, cur *Node) error {
	if !f.Flags.HashKey {
		return nil
	}
	leaf, ok := cur.Child(f.Name)
	if !ok {
		return nil
	}
	for n := cur; n != nil; n = n.Parent {
		for i := len(n.Children) - 1; i >= 0; i-- {
			c2 := n.Children[i]
			if c2 == leaf {
				continue
			}
			if c2.IsArray && c2.Schema != nil && c2.Schema.DType == f.HashTypeNode {
				leaf.HashRef = c2
				return nil
			}
		}
	}
	return nil
}

// bindParams evaluates a field's actual parametric arguments against the
// current instance, producing the binding map an invoked parametric
// struct's guards and dimensions see as plain symbols (§4.3, §9).
func bindParams(f *schema.Node, r *instResolver) map[string]int {
	if f.DType == nil || len(f.Args) == 0 || len(f.DType.Params) == 0 {
		return nil
	}
	bound := make(map[string]int, len(f.Args))
	for i, p := range f.DType.Params {
		if i >= len(f.Args) {
			break
		}
		switch p.Kind {
		case schema.ParamIntLiteral:
			if v, err := fastAtoi(f.Args[i]); err == nil {
				bound[p.Name] = v
			}
		default:
			if v, ok := r.resolvePath(splitPath(f.Args[i])); ok {
				bound[p.Name] = v
			}
		}
	}
	return bound
}

func fastAtoi(s string) (int, error) {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not an integer: %q", s)
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}
