package schema

import (
	"github.com/corwinn/libwind-ffd/internal/expr"
	"github.com/corwinn/libwind-ffd/internal/ffderr"
)

// resolve is the Reference Resolver (§4.3): it links every Field's
// data-type name, and every Enum's base-type name, to a concrete schema
// node via backward-then-forward name lookup along the top-level sequence.
func resolve(g *Graph) error {
	for _, n := range g.nodes {
		switch n.Kind {
		case KindType:
			if n.AliasName != "" {
				target, ok := lookupFrom(g, n, n.AliasName)
				if !ok || target.Kind != KindType {
					return ffderr.NewSemantic(n.Pos, n.Name, "unknown alias type "+n.AliasName)
				}
				n.Size = target.Size
				n.Signed = target.Signed
				n.Float = target.Float
			}
		case KindEnum:
			target, ok := lookupFrom(g, n, n.BaseTypeName)
			if !ok || target.Kind != KindType {
				return ffderr.NewSemantic(n.Pos, n.Name, "unknown base type "+n.BaseTypeName)
			}
			n.BaseType = target
		case KindStruct, KindFormat:
			for _, f := range n.Fields {
				if err := resolveField(g, f); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func resolveField(g *Graph, f *Node) error {
	if f.Flags.Variadic {
		return nil // resolved per-iteration at decode time (§4.5.2)
	}
	if len(f.Dims) > 1 {
		for _, d := range f.Dims {
			if d.Sentinel {
				return ffderr.NewSemantic(f.Pos, f.Name, "sentinel-terminated dimension must be the only dimension")
			}
		}
	}
	candidates := candidatesFrom(g, f.Base, f.TypeName)
	if len(candidates) == 0 {
		return ffderr.NewSemantic(f.Pos, f.Name, "unknown data type "+f.TypeName)
	}
	if anyGuarded(candidates) {
		// More than one declaration is visible and at least one is guarded:
		// which one applies depends on runtime state the resolver doesn't
		// have, so defer the pick to decode time (§4.3).
		f.DTypeCandidates = candidates
	} else {
		target := candidates[0]
		f.DType = target
		if err := checkParams(f, target); err != nil {
			return err
		}
	}

	if f.Flags.HashKey {
		htCandidates := candidatesFrom(g, f.Base, f.HashType)
		if len(htCandidates) == 0 {
			return ffderr.NewSemantic(f.Pos, f.Name, "unknown hash-key target type "+f.HashType)
		}
		if anyGuarded(htCandidates) {
			f.HashTypeCandidates = htCandidates
		} else {
			f.HashTypeNode = htCandidates[0]
		}
	}
	return nil
}

// checkParams validates and classifies f's parametric arguments against the
// struct/format target it was just resolved to (§4.3 step 1, §9 "parametric
// structs"). Shared by the eager and deferred resolution paths.
func checkParams(f *Node, target *Node) error {
	if len(f.Args) == 0 {
		return nil
	}
	if target.Kind != KindStruct && target.Kind != KindFormat {
		return ffderr.NewSemantic(f.Pos, f.Name, "parametric arguments given for non-struct type "+f.TypeName)
	}
	if len(f.Args) != len(target.Params) {
		return ffderr.NewSemantic(f.Pos, f.Name, "argument count mismatch invoking "+f.TypeName)
	}
	classifyParams(target, f.Args)
	return nil
}

// ResolveDeferred performs, at decode time, the guard-dependent pick that
// resolveField could not make statically (§4.3, §4.4): it walks f's
// DTypeCandidates/HashTypeCandidates in the Reference Resolver's original
// backward-then-forward order, accepting the first one whose own guard
// (cached node-side, first-use-wins per §4.4) evaluates true, and caches the
// winner onto f.DType/f.HashTypeNode exactly as the eager path would have.
// A no-op once f.DType (or f.HashTypeNode) is already resolved - including
// by a prior call to ResolveDeferred, until the next Graph.Invalidate.
func ResolveDeferred(f *Node, r expr.Resolver) error {
	if f.DType == nil && len(f.DTypeCandidates) > 0 {
		target, ok := firstUsable(f.DTypeCandidates, r)
		if !ok {
			return ffderr.NewSemantic(f.Pos, f.Name, "no usable declaration of "+f.TypeName+" satisfies its guard")
		}
		f.DType = target
		if err := checkParams(f, target); err != nil {
			return err
		}
	}
	if f.HashTypeNode == nil && len(f.HashTypeCandidates) > 0 {
		ht, ok := firstUsable(f.HashTypeCandidates, r)
		if !ok {
			return ffderr.NewSemantic(f.Pos, f.Name, "no usable declaration of hash-key target "+f.HashType+" satisfies its guard")
		}
		f.HashTypeNode = ht
	}
	return nil
}

// ResolveUsableAttribute is GetAttribute's guard-aware counterpart (§4.3),
// for lookups made with an actual instance resolver in hand - e.g. an array
// dimension symbol (§4.5.1) referencing a guarded Const/Type declaration.
// Graph.GetAttribute itself stays guard-oblivious: its public signature
// (§6 "get_attribute") takes no resolver, so it structurally cannot
// evaluate a guard.
func ResolveUsableAttribute(g *Graph, owner *Node, name string, r expr.Resolver) (*Node, bool) {
	candidates := candidatesFrom(g, owner, name)
	return firstUsable(candidates, r)
}

// firstUsable returns the first candidate whose guard (if any) evaluates
// true under r.
func firstUsable(candidates []*Node, r expr.Resolver) (*Node, bool) {
	for _, c := range candidates {
		if c.Enabled(r) {
			return c, true
		}
	}
	return nil, false
}

// anyGuarded reports whether any candidate in the list carries a guard.
func anyGuarded(candidates []*Node) bool {
	for _, c := range candidates {
		if c.Guard != nil {
			return true
		}
	}
	return false
}

// classifyParams classifies a parametric struct's formal parameters
// (ParamUnclassified -> ParamIntLiteral/ParamField/ParamType) the first
// time it is invoked with concrete arguments (§4.3, §9 "parametric
// structs"). Once classified, later invocations reuse the classification;
// only the bound value/path differs per invocation (stored on the Field).
func classifyParams(target *Node, args []string) {
	for i, a := range target.Params {
		if a.Kind != ParamUnclassified {
			continue
		}
		arg := args[i]
		if _, err := parseIntToken(arg); err == nil {
			target.Params[i].Kind = ParamIntLiteral
		} else if looksLikeDottedPath(arg) {
			target.Params[i].Kind = ParamField
		} else {
			target.Params[i].Kind = ParamType
		}
	}
}

func looksLikeDottedPath(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	// A bare identifier bound to an outer instance field is the common
	// case (§9 "a parameter bound to an outer instance field"); only an
	// explicit type-looking name (matching a known schema Type/Struct) is
	// classified as ParamType by the caller's fallback, so default to
	// field-bound for a plain identifier.
	return s != "" && (s[0] < '0' || s[0] > '9')
}

// lookupFrom walks the top-level sequence backward from owner, then
// forward, returning the first node named name (§4.3: "nearest declaration
// visible from the referencing site"). Used where a guard can never apply
// (Type aliases, Enum base types) so eager, single-candidate resolution is
// always correct.
func lookupFrom(g *Graph, owner *Node, name string) (*Node, bool) {
	candidates := candidatesFrom(g, owner, name)
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[0], true
}

// candidatesFrom walks the top-level sequence backward from owner, then
// forward, collecting every node named name in that search order (§4.3
// "accepting only the first usable match"). The caller picks among them:
// eagerly taking index 0 when none are guarded, or deferring to
// ResolveDeferred/ResolveUsableAttribute when at least one is.
func candidatesFrom(g *Graph, owner *Node, name string) []*Node {
	idx := -1
	for i, n := range g.nodes {
		if n == owner {
			idx = i
			break
		}
	}
	var out []*Node
	if idx < 0 {
		for _, n := range g.nodes {
			if n.Name == name {
				out = append(out, n)
			}
		}
		return out
	}
	for i := idx - 1; i >= 0; i-- {
		if g.nodes[i].Name == name {
			out = append(out, g.nodes[i])
		}
	}
	for i := idx + 1; i < len(g.nodes); i++ {
		if g.nodes[i].Name == name {
			out = append(out, g.nodes[i])
		}
	}
	return out
}
