package planner

// JoinType is the syntactic kind of a join.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	case RightJoin:
		return "right"
	case FullJoin:
		return "full"
	}
	return "???"
}

// acceptsFilterOn reports whether a WHERE conjunct over only one input may be
// evaluated below the join on that input. Pushing into the null-producing side
// of an outer join would turn filtered-out rows into null-extended ones.
func (t JoinType) acceptsFilterOn(left bool) bool {
	switch t {
	case InnerJoin:
		return true
	case LeftJoin:
		return left
	case RightJoin:
		return !left
	}
	return false
}

// JoinNode combines rows of two children that satisfy a condition. Its output
// row is the left row followed by the right row.
type JoinNode struct {
	Left         PlanNode
	Right        PlanNode
	Condition    Expr
	Type         JoinType
	outputSchema []Field
}

func NewJoinNode(left, right PlanNode, condition Expr, joinType JoinType) *JoinNode {
	schema := make([]Field, 0, Arity(left)+Arity(right))
	schema = append(schema, left.OutputSchema()...)
	schema = append(schema, right.OutputSchema()...)
	return &JoinNode{
		Left:         left,
		Right:        right,
		Condition:    condition,
		Type:         joinType,
		outputSchema: schema,
	}
}

func (n *JoinNode) Kind() NodeKind {
	return JoinKind
}

func (n *JoinNode) OutputSchema() []Field {
	return n.outputSchema
}

func (n *JoinNode) Children() []PlanNode {
	return []PlanNode{n.Left, n.Right}
}

func (n *JoinNode) WithChildren(children []PlanNode) PlanNode {
	checkChildren(n, children)
	return NewJoinNode(children[0], children[1], n.Condition, n.Type)
}

func (n *JoinNode) explainArgs() []string {
	return []string{
		"condition=[" + n.Condition.String() + "]",
		"joinType=[" + n.Type.String() + "]",
	}
}

func (n *JoinNode) String() string {
	return explainLine(n)
}
