package planner

import (
	"mit.edu/dsg/relplan/common"
)

// NodeKind tags the variant of a PlanNode.
type NodeKind int

const (
	ScanKind NodeKind = iota
	ProjectKind
	FilterKind
	JoinKind
)

func (k NodeKind) String() string {
	switch k {
	case ScanKind:
		return "Scan"
	case ProjectKind:
		return "Project"
	case FilterKind:
		return "Filter"
	case JoinKind:
		return "Join"
	}
	return "unknown"
}

// Field describes one column of a node's output row.
type Field struct {
	Name string
	Type common.Type
}

// PlanNode represents the static structure of a logical query plan.
// It is immutable: each node owns its children exclusively, and rewriting
// produces new nodes instead of mutating existing ones.
type PlanNode interface {
	// Kind returns the variant tag of the node.
	Kind() NodeKind

	// OutputSchema returns the fields of the rows produced by this node.
	OutputSchema() []Field

	// Children returns the child plan nodes, left to right.
	Children() []PlanNode

	// WithChildren returns a copy of the node over new children. The number of
	// children must match Children().
	WithChildren(children []PlanNode) PlanNode

	// String returns the explain line of this node, without children.
	String() string

	// explainArgs returns the "<name>=[<value>]" arguments of the explain line.
	explainArgs() []string
}

// Arity returns the number of columns produced by the node.
func Arity(n PlanNode) int {
	return len(n.OutputSchema())
}

// FieldNames returns the output column names of the node in order.
func FieldNames(n PlanNode) []string {
	schema := n.OutputSchema()
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	return names
}

func checkChildren(n PlanNode, children []PlanNode) {
	common.Assert(len(children) == len(n.Children()),
		"%s node expects %d children, got %d", n.Kind(), len(n.Children()), len(children))
}
