package planner

import (
	"mit.edu/dsg/relplan/common"
)

// ProjectionNode computes one named expression per output column from the
// rows of its child.
type ProjectionNode struct {
	Child       PlanNode
	Expressions []Expr
	Names       []string
}

func NewProjectionNode(child PlanNode, exprs []Expr, names []string) *ProjectionNode {
	common.Assert(len(exprs) == len(names), "projection has %d expressions but %d names", len(exprs), len(names))
	return &ProjectionNode{
		Child:       child,
		Expressions: exprs,
		Names:       names,
	}
}

func (n *ProjectionNode) Kind() NodeKind {
	return ProjectKind
}

func (n *ProjectionNode) OutputSchema() []Field {
	out := make([]Field, len(n.Expressions))
	for i, e := range n.Expressions {
		out[i] = Field{Name: n.Names[i], Type: e.OutputType()}
	}
	return out
}

func (n *ProjectionNode) Children() []PlanNode {
	return []PlanNode{n.Child}
}

func (n *ProjectionNode) WithChildren(children []PlanNode) PlanNode {
	checkChildren(n, children)
	return NewProjectionNode(children[0], n.Expressions, n.Names)
}

// IsIdentity reports whether the projection passes its child's columns through
// unchanged: same count, same order and same names.
func (n *ProjectionNode) IsIdentity() bool {
	childSchema := n.Child.OutputSchema()
	if len(n.Expressions) != len(childSchema) {
		return false
	}
	for i, e := range n.Expressions {
		ref, ok := e.(*ColumnRef)
		if !ok || ref.index != i || n.Names[i] != childSchema[i].Name {
			return false
		}
	}
	return true
}

func (n *ProjectionNode) explainArgs() []string {
	args := make([]string, len(n.Expressions))
	for i, e := range n.Expressions {
		args[i] = n.Names[i] + "=[" + e.String() + "]"
	}
	return args
}

func (n *ProjectionNode) String() string {
	return explainLine(n)
}
