package planner

import (
	"strings"
)

// explainLabels fixes the operator label printed for each node kind. The
// explain text is compared byte for byte by callers, so labels must never be
// derived from Go type names.
var explainLabels = map[NodeKind]string{
	ScanKind:    "BeamIOSourceRel",
	ProjectKind: "BeamProjectRel",
	FilterKind:  "BeamFilterRel",
	JoinKind:    "BeamJoinRel",
}

func explainLine(n PlanNode) string {
	label, ok := explainLabels[n.Kind()]
	if !ok {
		label = n.Kind().String()
	}
	return label + "(" + strings.Join(n.explainArgs(), ", ") + ")"
}

// Explain renders the plan as one line per node, children indented by two
// spaces per level below their parent, left before right. Every line,
// including the last, ends in a newline.
func Explain(root PlanNode) string {
	var sb strings.Builder
	explainTo(&sb, root, 0)
	return sb.String()
}

func explainTo(sb *strings.Builder, n PlanNode, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
	sb.WriteString(n.String())
	sb.WriteByte('\n')
	for _, child := range n.Children() {
		explainTo(sb, child, depth+1)
	}
}
