package planner

import (
	"mit.edu/dsg/relplan/common"
)

// PlanEqual is structural equality of two plan trees.
func PlanEqual(a, b PlanNode) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a := a.(type) {
	case *ScanNode:
		b := b.(*ScanNode)
		if a.CatalogName != b.CatalogName || a.Table.Name != b.Table.Name {
			return false
		}
	case *FilterNode:
		if !ExprEqual(a.Predicate, b.(*FilterNode).Predicate) {
			return false
		}
	case *ProjectionNode:
		b := b.(*ProjectionNode)
		if len(a.Expressions) != len(b.Expressions) {
			return false
		}
		for i := range a.Expressions {
			if a.Names[i] != b.Names[i] || !ExprEqual(a.Expressions[i], b.Expressions[i]) {
				return false
			}
		}
	case *JoinNode:
		b := b.(*JoinNode)
		if a.Type != b.Type || !ExprEqual(a.Condition, b.Condition) {
			return false
		}
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !PlanEqual(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

// Validate checks that every column reference in the tree points inside the
// row of the input it is evaluated against, and that no projection repeats an
// output name.
func Validate(n PlanNode) error {
	for _, child := range n.Children() {
		if err := Validate(child); err != nil {
			return err
		}
	}

	var exprs []Expr
	inputArity := 0
	switch n := n.(type) {
	case *FilterNode:
		exprs = []Expr{n.Predicate}
		inputArity = Arity(n.Child)
	case *ProjectionNode:
		exprs = n.Expressions
		inputArity = Arity(n.Child)
		seen := make(map[string]struct{}, len(n.Names))
		for _, name := range n.Names {
			if _, dup := seen[name]; dup {
				return common.NewError(common.InvalidPlanError, "%s repeats output name '%s'", n.String(), name)
			}
			seen[name] = struct{}{}
		}
	case *JoinNode:
		exprs = []Expr{n.Condition}
		inputArity = Arity(n.Left) + Arity(n.Right)
		if n.Condition == nil {
			return common.NewError(common.InvalidPlanError, "join without a condition")
		}
	}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		for _, idx := range InputRefs(e) {
			if idx >= inputArity {
				return common.NewError(common.InvalidPlanError,
					"%s references $%d but its input has %d columns", n.String(), idx, inputArity)
			}
		}
	}
	return nil
}
