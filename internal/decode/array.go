package decode

import (
	"fmt"

	"github.com/corwinn/libwind-ffd/internal/schema"
)

// evalDim evaluates one non-sentinel array dimension to a concrete count
// (§4.5.1). f is the array field the dimension belongs to, needed to anchor
// a guard-aware lookup of d.Sym at the field's declaration site.
func (c *Context) evalDim(f *schema.Node, d schema.Dim, r *instResolver) (int, error) {
	if d.Sym == "" {
		return d.Lit, nil
	}
	// A dimension symbol bound to the enclosing parametric struct's
	// invocation arguments takes priority, matching how guard expressions
	// resolve a symbol through the same instResolver (§4.3 "parametric
	// substitution", §9).
	if v, ok := r.params[d.Sym]; ok {
		return v, nil
	}
	if n, ok := schema.ResolveUsableAttribute(c.g, f.Base, d.Sym, r); ok {
		switch n.Kind {
		case schema.KindConst:
			return n.IntValue, nil
		case schema.KindType:
			buf := make([]byte, n.Size)
			if err := c.s.Read(buf); err != nil {
				return 0, err
			}
			return readLE(buf, n.Signed), nil
		}
	}
	if node, ok := lookupInstance(r.cur, d.Sym); ok {
		if node.IsArray {
			return node.SumInt(), nil
		}
		return node.AsInt(), nil
	}
	return 0, fmt.Errorf("ffd: unresolved array dimension %q", d.Sym)
}

// evalArrayField implements §4.5.1 in full: dimension evaluation (including
// sentinel-terminated arrays), and the primitive/opaque-struct/per-element
// dispatch.
func (c *Context) evalArrayField(f *schema.Node, parent *Node, r *instResolver) (*Node, error) {
	child := newChild(parent, f, f.Name)
	child.IsArray = true
	child.Signed = f.DType != nil && f.DType.Signed

	if len(f.Dims) == 1 && f.Dims[0].Sentinel {
		return c.evalSentinelArray(f, child)
	}

	total := 1
	for _, d := range f.Dims {
		n, err := c.evalDim(f, d, r)
		if err != nil {
			return nil, err
		}
		total *= n
	}
	if total < 0 || total > c.cfg.maxArrayElements {
		return nil, fmt.Errorf("ffd: array dimension %d exceeds max %d elements", total, c.cfg.maxArrayElements)
	}

	return c.fillArray(f, child, total, r)
}

// isHashTarget reports whether dtype is indexed by some hash-key field
// elsewhere in the schema. Such arrays are always decoded element-by-
// element - even when statically size-precomputable - because hash
// indirection needs to address individual child instances (§4.5 step 4).
func (c *Context) isHashTarget(dtype *schema.Node) bool {
	for _, n := range c.g.Nodes() {
		if n.Kind != schema.KindStruct && n.Kind != schema.KindFormat {
			continue
		}
		for _, f := range n.Fields {
			if f.Flags.HashKey && f.HashTypeNode == dtype {
				return true
			}
		}
	}
	return false
}

func (c *Context) elementSize(f *schema.Node) int {
	if f.DType == nil {
		return 1
	}
	if f.DType.Kind == schema.KindEnum && f.DType.BaseType != nil {
		return f.DType.BaseType.Size
	}
	return f.DType.Size
}

func (c *Context) fillArray(f *schema.Node, child *Node, total int, r *instResolver) (*Node, error) {
	if total == 0 {
		return child, nil
	}
	if f.DType != nil && (f.DType.Kind == schema.KindType || f.DType.Kind == schema.KindEnum) {
		size := c.elementSize(f)
		child.ElemSize = size
		buf := make([]byte, size*total)
		if err := c.s.Read(buf); err != nil {
			return nil, err
		}
		child.Buf = buf
		return child, nil
	}
	if f.DType != nil && (f.DType.Kind == schema.KindStruct || f.DType.Kind == schema.KindFormat) {
		if size, ok := f.DType.PrecomputeSize(); ok && !c.isHashTarget(f.DType) {
			buf := make([]byte, size*total)
			if err := c.s.Read(buf); err != nil {
				return nil, err
			}
			child.Buf = buf
			child.ElemSize = size
			return child, nil
		}
		for i := 0; i < total; i++ {
			elem := newChild(child, f, fmt.Sprintf("%s[%d]", f.Name, i))
			if err := c.evalStructFields(f.DType, elem); err != nil {
				return nil, err
			}
			child.Children = append(child.Children, elem)
		}
		return child, nil
	}
	return nil, fmt.Errorf("ffd: array field %q has unresolved element type", f.Name)
}

// evalSentinelArray reads elements one at a time until an element equal to
// the sentinel value is found (excluded from the result), per §4.5.1 and
// the §8 boundary behavior "sentinel as the first element yields an empty
// array".
func (c *Context) evalSentinelArray(f *schema.Node, child *Node) (*Node, error) {
	size := c.elementSize(f)
	if size != 1 && size != 2 && size != 4 {
		return nil, fmt.Errorf("ffd: sentinel array element size must be 1, 2 or 4, got %d", size)
	}
	child.ElemSize = size
	sentinel := f.Dims[0].Lit
	var buf []byte
	elem := make([]byte, size)
	for i := 0; i < c.cfg.maxArrayElements; i++ {
		if err := c.s.Read(elem); err != nil {
			return nil, err
		}
		if readLE(elem, false) == sentinel {
			child.Buf = buf
			return child, nil
		}
		buf = append(buf, elem...)
	}
	return nil, fmt.Errorf("ffd: sentinel %d never found in array %q", sentinel, f.Name)
}
