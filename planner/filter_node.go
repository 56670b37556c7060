package planner

// FilterNode filters rows from its child based on a predicate. A nil predicate
// means every conjunct has been moved elsewhere; the rewriter removes such
// filters before the plan is rendered.
type FilterNode struct {
	Child     PlanNode
	Predicate Expr
}

func NewFilterNode(child PlanNode, predicate Expr) *FilterNode {
	return &FilterNode{
		Child:     child,
		Predicate: predicate,
	}
}

func (n *FilterNode) Kind() NodeKind {
	return FilterKind
}

func (n *FilterNode) OutputSchema() []Field {
	return n.Child.OutputSchema()
}

func (n *FilterNode) Children() []PlanNode {
	return []PlanNode{n.Child}
}

func (n *FilterNode) WithChildren(children []PlanNode) PlanNode {
	checkChildren(n, children)
	return NewFilterNode(children[0], n.Predicate)
}

func (n *FilterNode) explainArgs() []string {
	if n.Predicate == nil {
		return []string{"condition=[true]"}
	}
	return []string{"condition=[" + n.Predicate.String() + "]"}
}

func (n *FilterNode) String() string {
	return explainLine(n)
}
