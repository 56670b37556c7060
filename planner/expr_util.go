package planner

import (
	"sort"
)

// Conjuncts splits a predicate into its top-level AND terms. A nil predicate
// has no conjuncts.
func Conjuncts(e Expr) []Expr {
	if e == nil {
		return nil
	}
	call, ok := e.(*Call)
	if !ok || call.op != OpAnd {
		return []Expr{e}
	}
	var out []Expr
	for _, arg := range call.args {
		out = append(out, Conjuncts(arg)...)
	}
	return out
}

// Conjoin is the inverse of Conjuncts: no terms yield nil, one term is
// returned as is, and more terms become a single flat AND.
func Conjoin(terms []Expr) Expr {
	var flat []Expr
	for _, t := range terms {
		flat = append(flat, Conjuncts(t)...)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return NewCall(OpAnd, flat...)
}

// IsTrueLiteral reports whether e is the boolean literal true.
func IsTrueLiteral(e Expr) bool {
	lit, ok := e.(*Literal)
	return ok && lit.text == TrueLiteral.text
}

func collectRefs(e Expr, seen map[int]struct{}) {
	switch e := e.(type) {
	case *ColumnRef:
		seen[e.index] = struct{}{}
	case *Call:
		for _, arg := range e.args {
			collectRefs(arg, seen)
		}
	}
}

// InputRefs returns the distinct column indices referenced by the
// expressions, in ascending order.
func InputRefs(exprs ...Expr) []int {
	seen := make(map[int]struct{})
	for _, e := range exprs {
		if e != nil {
			collectRefs(e, seen)
		}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// refsWithin reports whether every column referenced by e lies in [lo, hi).
func refsWithin(e Expr, lo, hi int) bool {
	for _, idx := range InputRefs(e) {
		if idx < lo || idx >= hi {
			return false
		}
	}
	return true
}

// Remap returns a copy of e with every column index replaced by fn(index).
// Subtrees without column references are shared with the input.
func Remap(e Expr, fn func(int) int) Expr {
	switch e := e.(type) {
	case *ColumnRef:
		idx := fn(e.index)
		if idx == e.index {
			return e
		}
		return NewColumnRef(idx, e.outputType)
	case *Call:
		args := make([]Expr, len(e.args))
		changed := false
		for i, arg := range e.args {
			args[i] = Remap(arg, fn)
			changed = changed || args[i] != arg
		}
		if !changed {
			return e
		}
		return &Call{op: e.op, args: args, outputType: e.outputType}
	}
	return e
}

// Shift moves every column reference by delta.
func Shift(e Expr, delta int) Expr {
	return Remap(e, func(idx int) int { return idx + delta })
}

// ExprEqual is structural equality of two expressions.
func ExprEqual(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case *ColumnRef:
		b, ok := b.(*ColumnRef)
		return ok && a.index == b.index && a.outputType == b.outputType
	case *Literal:
		b, ok := b.(*Literal)
		return ok && a.text == b.text && a.outputType == b.outputType
	case *Call:
		b, ok := b.(*Call)
		if !ok || a.op != b.op || len(a.args) != len(b.args) {
			return false
		}
		for i := range a.args {
			if !ExprEqual(a.args[i], b.args[i]) {
				return false
			}
		}
		return true
	}
	return false
}
