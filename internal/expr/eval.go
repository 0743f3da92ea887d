package expr

// Resolver resolves a guard operand against whatever context the caller
// holds - schema siblings and the instance tree built so far (§4.4 steps
// 1-4). other is the opposite operand in the same comparison, passed through
// so the resolver can perform enum-item substitution: "if a symbol names an
// enum item of the *other* operand's type, substitute its integer value"
// (§4.4 step 2). other is nil when sym is evaluated alone (no comparison).
type Resolver interface {
	Resolve(sym Sym, other Node) (value int, found bool)
}

// Eval evaluates a guard expression to a boolean per §4.4. Comparisons
// against an unresolved symbol evaluate to false, except "!=" which
// evaluates to true - the not-found flag is consumed by the comparator
// (§4.4 step 5, §8 boundary behavior).
func Eval(n Node, r Resolver) bool {
	switch t := n.(type) {
	case Lit:
		return t.Value != 0
	case Sym:
		v, ok := r.Resolve(t, nil)
		return ok && v != 0
	case Unary:
		return !Eval(t.X, r)
	case Binary:
		switch t.Op {
		case OpAnd:
			return Eval(t.L, r) && Eval(t.R, r)
		case OpOr:
			return Eval(t.L, r) || Eval(t.R, r)
		default:
			lv, lok := resolveOperand(t.L, t.R, r)
			rv, rok := resolveOperand(t.R, t.L, r)
			if !lok || !rok {
				return t.Op == OpNe
			}
			switch t.Op {
			case OpEq:
				return lv == rv
			case OpNe:
				return lv != rv
			case OpLt:
				return lv < rv
			case OpGt:
				return lv > rv
			case OpLe:
				return lv <= rv
			case OpGe:
				return lv >= rv
			case OpBitAnd:
				return (lv & rv) != 0
			}
		}
	}
	return false
}

// resolveOperand resolves self to an integer, given its sibling operand
// other in the same comparison. Literal and nested-expression operands are
// always resolved; a Sym operand may fail to resolve.
func resolveOperand(self, other Node, r Resolver) (int, bool) {
	switch t := self.(type) {
	case Lit:
		return t.Value, true
	case Sym:
		return r.Resolve(t, other)
	case Unary, Binary:
		if Eval(self, r) {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
