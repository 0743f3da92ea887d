package decode

import "github.com/corwinn/libwind-ffd/internal/schema"

// resolveVariadic implements §4.5.2: it evaluates the variadic field's
// dotted path to an integer key, then selects the enclosing struct's
// value-list sibling whose range contains that key. The reserved "struct"
// prefix form (iterating a hash table's key array) is not implemented: no
// example schema in this codebase's description corpus exercises it, and
// nothing in the resolved graph records a hash table's key-array ordering
// independent of a concrete instance, so a future iterator would need a
// richer runtime handle than this per-decode Context currently threads
// through.
func (c *Context) resolveVariadic(f *schema.Node, r *instResolver) (*schema.Node, bool) {
	path := splitPath(f.TypeName)
	if path[0] == "struct" {
		return nil, false
	}
	key, ok := r.resolvePath(path)
	if !ok {
		return nil, false
	}
	for _, n := range c.g.Nodes() {
		if n.Kind != schema.KindStruct && n.Kind != schema.KindFormat {
			continue
		}
		for _, vr := range n.ValueList {
			if vr.Contains(key) {
				return n, true
			}
		}
	}
	return nil, false
}
