package planner

import (
	"fmt"
	"strconv"

	"vitess.io/vitess/go/vt/sqlparser"

	"mit.edu/dsg/relplan/catalog"
	"mit.edu/dsg/relplan/common"
)

// TableResolver is the read-only catalog view the builder resolves FROM
// clauses against. Both *catalog.Catalog and *catalog.Snapshot satisfy it.
type TableResolver interface {
	Name() string
	GetTableMetadata(tableName string) (*catalog.Table, error)
}

// Builder converts a parsed query into an unoptimized logical plan.
type Builder struct {
	tables TableResolver
}

func NewBuilder(tables TableResolver) *Builder {
	return &Builder{tables: tables}
}

// Build is a shorthand for NewBuilder(tables).Build(stmt).
func Build(stmt sqlparser.Statement, tables TableResolver) (PlanNode, error) {
	return NewBuilder(tables).Build(stmt)
}

// Build accepts a SELECT, or an EXPLAIN wrapping one.
func (b *Builder) Build(stmt sqlparser.Statement) (PlanNode, error) {
	switch stmt := stmt.(type) {
	case *sqlparser.ExplainStmt:
		return b.Build(stmt.Statement)
	case *sqlparser.Select:
		return b.buildSelect(stmt)
	}
	return nil, common.NewError(common.UnsupportedSyntaxError, "cannot plan statement: %s", sqlparser.String(stmt))
}

func (b *Builder) buildSelect(sel *sqlparser.Select) (PlanNode, error) {
	if err := checkSupportedClauses(sel); err != nil {
		return nil, err
	}

	input, sc, err := b.buildFrom(sel.From)
	if err != nil {
		return nil, err
	}

	if sel.Where != nil && sel.Where.Expr != nil {
		predicate, err := sc.convert(sel.Where.Expr)
		if err != nil {
			return nil, err
		}
		input = NewFilterNode(input, predicate)
	}

	var exprs []Expr
	var names []string
	for _, se := range sel.SelectExprs {
		switch se := se.(type) {
		case *sqlparser.StarExpr:
			refs, refNames, err := sc.expandStar(se)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, refs...)
			names = append(names, refNames...)
		case *sqlparser.AliasedExpr:
			e, err := sc.convert(se.Expr)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
			names = append(names, sc.outputName(se, len(names)))
		default:
			return nil, common.NewError(common.UnsupportedSyntaxError, "unsupported select expression: %s", sqlparser.String(se))
		}
	}
	return NewProjectionNode(input, exprs, uniquify(names)), nil
}

func checkSupportedClauses(sel *sqlparser.Select) error {
	unsupported := ""
	switch {
	case sel.With != nil:
		unsupported = "WITH"
	case sel.Distinct:
		unsupported = "DISTINCT"
	case sel.GroupBy != nil:
		unsupported = "GROUP BY"
	case sel.Having != nil:
		unsupported = "HAVING"
	case sel.OrderBy != nil:
		unsupported = "ORDER BY"
	case sel.Limit != nil:
		unsupported = "LIMIT"
	case sel.Into != nil:
		unsupported = "INTO"
	}
	if unsupported != "" {
		return common.NewError(common.UnsupportedSyntaxError, "%s is not supported", unsupported)
	}
	return nil
}

// buildFrom turns a comma separated list of table expressions into a
// left-deep chain of inner joins with a placeholder true condition.
func (b *Builder) buildFrom(from []sqlparser.TableExpr) (PlanNode, *scope, error) {
	var plan PlanNode
	var sc *scope
	for _, te := range from {
		node, teScope, err := b.buildTableExpr(te)
		if err != nil {
			return nil, nil, err
		}
		if plan == nil {
			plan, sc = node, teScope
			continue
		}
		if sc, err = sc.concat(teScope); err != nil {
			return nil, nil, err
		}
		plan = NewJoinNode(plan, node, TrueLiteral, InnerJoin)
	}
	if plan == nil {
		return nil, nil, common.NewError(common.UnsupportedSyntaxError, "SELECT without FROM is not supported")
	}
	return plan, sc, nil
}

func (b *Builder) buildTableExpr(te sqlparser.TableExpr) (PlanNode, *scope, error) {
	switch te := te.(type) {
	case *sqlparser.AliasedTableExpr:
		return b.buildAliasedTable(te)
	case *sqlparser.ParenTableExpr:
		return b.buildFrom(te.Exprs)
	case *sqlparser.JoinTableExpr:
		return b.buildJoin(te)
	}
	return nil, nil, common.NewError(common.UnsupportedSyntaxError, "unsupported table expression: %s", sqlparser.String(te))
}

func (b *Builder) buildAliasedTable(te *sqlparser.AliasedTableExpr) (PlanNode, *scope, error) {
	tn, ok := te.Expr.(sqlparser.TableName)
	if !ok {
		return nil, nil, common.NewError(common.UnsupportedSyntaxError, "subqueries are not supported: %s", sqlparser.String(te))
	}
	name := tn.Name.String()
	if tn.Qualifier.IsEmpty() && name == "dual" {
		return nil, nil, common.NewError(common.UnsupportedSyntaxError, "SELECT without FROM is not supported")
	}
	if !tn.Qualifier.IsEmpty() && tn.Qualifier.String() != b.tables.Name() {
		return nil, nil, common.NewError(common.UnresolvedTableError, "table '%s.%s' not found", tn.Qualifier.String(), name)
	}

	table, err := b.tables.GetTableMetadata(name)
	if err != nil {
		return nil, nil, common.NewError(common.UnresolvedTableError, "table '%s' not found", name)
	}

	qualifier := name
	if !te.As.IsEmpty() {
		qualifier = te.As.String()
	}
	return NewScanNode(b.tables.Name(), table), newTableScope(qualifier, table), nil
}

func (b *Builder) buildJoin(te *sqlparser.JoinTableExpr) (PlanNode, *scope, error) {
	var joinType JoinType
	switch te.Join {
	case sqlparser.NormalJoinType, sqlparser.StraightJoinType:
		joinType = InnerJoin
	case sqlparser.LeftJoinType:
		joinType = LeftJoin
	case sqlparser.RightJoinType:
		joinType = RightJoin
	default:
		return nil, nil, common.NewError(common.UnsupportedSyntaxError, "%s is not supported", te.Join.ToString())
	}

	left, leftScope, err := b.buildTableExpr(te.LeftExpr)
	if err != nil {
		return nil, nil, err
	}
	right, rightScope, err := b.buildTableExpr(te.RightExpr)
	if err != nil {
		return nil, nil, err
	}
	sc, err := leftScope.concat(rightScope)
	if err != nil {
		return nil, nil, err
	}

	var condition Expr = TrueLiteral
	switch {
	case te.Condition == nil:
	case te.Condition.On != nil:
		if condition, err = sc.convert(te.Condition.On); err != nil {
			return nil, nil, err
		}
	case len(te.Condition.Using) > 0:
		if condition, err = usingCondition(te.Condition.Using, leftScope, rightScope); err != nil {
			return nil, nil, err
		}
	}
	return NewJoinNode(left, right, condition, joinType), sc, nil
}

// usingCondition expands JOIN ... USING (c, ...) into a conjunction of
// equalities between the left and right column of each name.
func usingCondition(columns sqlparser.Columns, left, right *scope) (Expr, error) {
	var terms []Expr
	for _, col := range columns {
		l, err := left.resolve("", col.String())
		if err != nil {
			return nil, err
		}
		r, err := right.resolve("", col.String())
		if err != nil {
			return nil, err
		}
		terms = append(terms, NewCall(OpEqual, l, Shift(r, len(left.columns))))
	}
	return Conjoin(terms), nil
}

// uniquify makes output names distinct by appending 0, 1, ... to repeats.
func uniquify(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		candidate := name
		for suffix := 0; ; suffix++ {
			if _, dup := seen[candidate]; !dup {
				break
			}
			candidate = name + strconv.Itoa(suffix)
		}
		seen[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}

// exprName is the name given to an unaliased computed select item.
func exprName(pos int) string {
	return fmt.Sprintf("EXPR$%d", pos)
}
