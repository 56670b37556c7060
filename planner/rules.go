package planner

// Rule is a single plan transformation. Apply inspects one node (its children
// have already been rewritten in the current pass) and returns the
// replacement and true, or the node unchanged and false. A rule must preserve
// the output schema of the node it replaces so that expressions above it stay
// valid.
type Rule interface {
	Name() string
	Apply(node PlanNode) (PlanNode, bool)
}

// DefaultRules returns the built-in rule set in priority order.
func DefaultRules() []Rule {
	return []Rule{
		JoinEqualityExtraction{},
		FilterIntoJoinInput{},
		FilterMerge{},
		TautologyFilterRemoval{},
		EmptyFilterElision{},
		ProjectIntoJoin{},
		ProjectMerge{},
	}
}

func filterOverJoin(node PlanNode) (*FilterNode, *JoinNode, bool) {
	f, ok := node.(*FilterNode)
	if !ok {
		return nil, nil, false
	}
	j, ok := f.Child.(*JoinNode)
	return f, j, ok
}

// JoinEqualityExtraction moves equalities between a left-input column and a
// right-input column out of a filter and into the inner join directly below
// it. A comma join's placeholder true condition is replaced; any other
// condition is conjoined with the equalities.
type JoinEqualityExtraction struct{}

func (JoinEqualityExtraction) Name() string { return "JoinEqualityExtraction" }

func (JoinEqualityExtraction) Apply(node PlanNode) (PlanNode, bool) {
	f, j, ok := filterOverJoin(node)
	if !ok || j.Type != InnerJoin {
		return node, false
	}
	leftArity := Arity(j.Left)

	var moved, kept []Expr
	for _, c := range Conjuncts(f.Predicate) {
		if isCrossEquality(c, leftArity) {
			moved = append(moved, c)
		} else {
			kept = append(kept, c)
		}
	}
	if len(moved) == 0 {
		return node, false
	}

	terms := moved
	if !IsTrueLiteral(j.Condition) {
		terms = append([]Expr{j.Condition}, moved...)
	}
	join := NewJoinNode(j.Left, j.Right, Conjoin(terms), j.Type)
	return NewFilterNode(join, Conjoin(kept)), true
}

func isCrossEquality(e Expr, leftArity int) bool {
	call, ok := e.(*Call)
	if !ok || call.op != OpEqual || len(call.args) != 2 {
		return false
	}
	a, aok := call.args[0].(*ColumnRef)
	b, bok := call.args[1].(*ColumnRef)
	if !aok || !bok {
		return false
	}
	return (a.index < leftArity) != (b.index < leftArity)
}

// FilterIntoJoinInput moves filter conjuncts that read only one input of the
// join below it onto that input. The join condition is left as is.
type FilterIntoJoinInput struct{}

func (FilterIntoJoinInput) Name() string { return "FilterIntoJoinInput" }

func (FilterIntoJoinInput) Apply(node PlanNode) (PlanNode, bool) {
	f, j, ok := filterOverJoin(node)
	if !ok {
		return node, false
	}
	leftArity := Arity(j.Left)
	total := leftArity + Arity(j.Right)

	var leftTerms, rightTerms, kept []Expr
	for _, c := range Conjuncts(f.Predicate) {
		switch {
		case len(InputRefs(c)) == 0:
			kept = append(kept, c)
		case refsWithin(c, 0, leftArity) && j.Type.acceptsFilterOn(true):
			leftTerms = append(leftTerms, c)
		case refsWithin(c, leftArity, total) && j.Type.acceptsFilterOn(false):
			rightTerms = append(rightTerms, Shift(c, -leftArity))
		default:
			kept = append(kept, c)
		}
	}
	if len(leftTerms) == 0 && len(rightTerms) == 0 {
		return node, false
	}

	left, right := j.Left, j.Right
	if len(leftTerms) > 0 {
		left = NewFilterNode(left, Conjoin(leftTerms))
	}
	if len(rightTerms) > 0 {
		right = NewFilterNode(right, Conjoin(rightTerms))
	}
	join := NewJoinNode(left, right, j.Condition, j.Type)
	return NewFilterNode(join, Conjoin(kept)), true
}

// FilterMerge collapses two directly nested filters into one. The inner
// filter's conjuncts come first.
type FilterMerge struct{}

func (FilterMerge) Name() string { return "FilterMerge" }

func (FilterMerge) Apply(node PlanNode) (PlanNode, bool) {
	f, ok := node.(*FilterNode)
	if !ok {
		return node, false
	}
	inner, ok := f.Child.(*FilterNode)
	if !ok {
		return node, false
	}
	terms := append(Conjuncts(inner.Predicate), Conjuncts(f.Predicate)...)
	return NewFilterNode(inner.Child, Conjoin(terms)), true
}

// TautologyFilterRemoval drops literal true conjuncts, and the filter itself
// when nothing else is left.
type TautologyFilterRemoval struct{}

func (TautologyFilterRemoval) Name() string { return "TautologyFilterRemoval" }

func (TautologyFilterRemoval) Apply(node PlanNode) (PlanNode, bool) {
	f, ok := node.(*FilterNode)
	if !ok {
		return node, false
	}
	conjuncts := Conjuncts(f.Predicate)
	var kept []Expr
	for _, c := range conjuncts {
		if !IsTrueLiteral(c) {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(conjuncts) {
		return node, false
	}
	if len(kept) == 0 {
		return f.Child, true
	}
	return NewFilterNode(f.Child, Conjoin(kept)), true
}

// EmptyFilterElision removes a filter whose conjuncts have all been moved
// elsewhere.
type EmptyFilterElision struct{}

func (EmptyFilterElision) Name() string { return "EmptyFilterElision" }

func (EmptyFilterElision) Apply(node PlanNode) (PlanNode, bool) {
	f, ok := node.(*FilterNode)
	if !ok || f.Predicate != nil {
		return node, false
	}
	return f.Child, true
}

// ProjectIntoJoin narrows each input of a join to the columns the projection
// above it and the join condition actually read. Each narrowed input gets its
// own projection, the condition and projection are renumbered, and the top
// projection disappears when it has become a pass-through of the join.
type ProjectIntoJoin struct{}

func (ProjectIntoJoin) Name() string { return "ProjectIntoJoin" }

func (ProjectIntoJoin) Apply(node PlanNode) (PlanNode, bool) {
	p, ok := node.(*ProjectionNode)
	if !ok {
		return node, false
	}
	j, ok := p.Child.(*JoinNode)
	if !ok {
		return node, false
	}
	leftArity := Arity(j.Left)

	var leftNeeded, rightNeeded []int
	for _, idx := range InputRefs(append([]Expr{j.Condition}, p.Expressions...)...) {
		if idx < leftArity {
			leftNeeded = append(leftNeeded, idx)
		} else {
			rightNeeded = append(rightNeeded, idx-leftArity)
		}
	}

	left, leftMap, leftChanged := narrowInput(j.Left, leftNeeded)
	right, rightMap, rightChanged := narrowInput(j.Right, rightNeeded)
	if !leftChanged && !rightChanged {
		return node, false
	}

	newLeftArity := Arity(left)
	renumber := func(idx int) int {
		if idx < leftArity {
			return leftMap[idx]
		}
		return newLeftArity + rightMap[idx-leftArity]
	}

	join := NewJoinNode(left, right, Remap(j.Condition, renumber), j.Type)
	exprs := make([]Expr, len(p.Expressions))
	for i, e := range p.Expressions {
		exprs[i] = Remap(e, renumber)
	}
	top := NewProjectionNode(join, exprs, p.Names)
	if top.IsIdentity() {
		return join, true
	}
	return top, true
}

// narrowInput wraps input in a projection of the needed columns (sorted,
// distinct). Names repeated across the kept columns are made unique. It returns the new input, the old-to-new index mapping and
// whether anything changed. An input whose columns are all needed, or none of
// them, is returned as is.
func narrowInput(input PlanNode, needed []int) (PlanNode, map[int]int, bool) {
	schema := input.OutputSchema()
	mapping := make(map[int]int, len(schema))
	if len(needed) == 0 || len(needed) == len(schema) {
		for i := range schema {
			mapping[i] = i
		}
		return input, mapping, false
	}

	exprs := make([]Expr, len(needed))
	names := make([]string, len(needed))
	for pos, idx := range needed {
		exprs[pos] = NewColumnRef(idx, schema[idx].Type)
		names[pos] = schema[idx].Name
		mapping[idx] = pos
	}
	return NewProjectionNode(input, exprs, uniquify(names)), mapping, true
}

// ProjectMerge composes a projection over another projection into one.
type ProjectMerge struct{}

func (ProjectMerge) Name() string { return "ProjectMerge" }

func (ProjectMerge) Apply(node PlanNode) (PlanNode, bool) {
	p, ok := node.(*ProjectionNode)
	if !ok {
		return node, false
	}
	inner, ok := p.Child.(*ProjectionNode)
	if !ok {
		return node, false
	}
	exprs := make([]Expr, len(p.Expressions))
	for i, e := range p.Expressions {
		exprs[i] = substitute(e, inner.Expressions)
	}
	return NewProjectionNode(inner.Child, exprs, p.Names), true
}

// substitute replaces every column reference $i in e with defs[i].
func substitute(e Expr, defs []Expr) Expr {
	switch e := e.(type) {
	case *ColumnRef:
		return defs[e.index]
	case *Call:
		args := make([]Expr, len(e.args))
		for i, arg := range e.args {
			args[i] = substitute(arg, defs)
		}
		return &Call{op: e.op, args: args, outputType: e.outputType}
	}
	return e
}
