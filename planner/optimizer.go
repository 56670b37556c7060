package planner

import (
	"github.com/rs/zerolog"
	"mit.edu/dsg/relplan/common"
)

// DefaultMaxIterations bounds the number of rewrite passes. The built-in rules
// reach a fixpoint in a handful of passes; the cap only exists so that a
// faulty rule set cannot loop forever.
const DefaultMaxIterations = 100

// Optimizer rewrites a logical plan with a fixed list of rules until no rule
// changes the tree.
//
// Each pass walks the tree depth-first, leaves first. At every node the rules
// are tried in priority order and the first one that applies replaces the
// node; the parent then sees the replaced child within the same pass. A pass
// that changes nothing ends the loop.
type Optimizer struct {
	rules         []Rule
	maxIterations int
	logger        zerolog.Logger
}

type OptimizerOption func(*Optimizer)

// WithMaxIterations overrides DefaultMaxIterations. Values below one are ignored.
func WithMaxIterations(n int) OptimizerOption {
	return func(o *Optimizer) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithRules replaces the rule set.
func WithRules(rules ...Rule) OptimizerOption {
	return func(o *Optimizer) {
		o.rules = rules
	}
}

func WithLogger(logger zerolog.Logger) OptimizerOption {
	return func(o *Optimizer) {
		o.logger = logger
	}
}

func NewOptimizer(opts ...OptimizerOption) *Optimizer {
	o := &Optimizer{
		rules:         DefaultRules(),
		maxIterations: DefaultMaxIterations,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize applies the rules to a fixpoint. It fails with
// OptimizationDivergedError if every one of the allowed passes still changed
// the plan.
func (o *Optimizer) Optimize(plan PlanNode) (PlanNode, error) {
	for pass := 1; pass <= o.maxIterations; pass++ {
		next, changed := o.rewrite(plan, pass)
		if !changed {
			o.logger.Debug().Int("passes", pass).Msg("plan reached fixpoint")
			return plan, nil
		}
		plan = next
	}
	o.logger.Error().
		Int("max_iterations", o.maxIterations).
		Str("plan", Explain(plan)).
		Msg("optimizer did not reach a fixpoint")
	return nil, common.NewError(common.OptimizationDivergedError,
		"no fixpoint after %d rewrite passes", o.maxIterations)
}

func (o *Optimizer) rewrite(node PlanNode, pass int) (PlanNode, bool) {
	changed := false
	if children := node.Children(); len(children) > 0 {
		rewritten := make([]PlanNode, len(children))
		for i, child := range children {
			var childChanged bool
			rewritten[i], childChanged = o.rewrite(child, pass)
			changed = changed || childChanged
		}
		if changed {
			node = node.WithChildren(rewritten)
		}
	}

	for _, rule := range o.rules {
		out, applied := rule.Apply(node)
		if !applied {
			continue
		}
		common.Assert(Arity(out) == Arity(node),
			"rule %s changed output arity from %d to %d", rule.Name(), Arity(node), Arity(out))
		o.logger.Debug().Int("pass", pass).Str("rule", rule.Name()).Str("node", node.Kind().String()).Msg("rule applied")
		return out, true
	}
	return node, changed
}
