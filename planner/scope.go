package planner

import (
	"strings"

	"vitess.io/vitess/go/vt/sqlparser"

	"mit.edu/dsg/relplan/catalog"
	"mit.edu/dsg/relplan/common"
)

type scopeColumn struct {
	qualifier string // table name or alias
	name      string
	typ       common.Type
}

// scope is the row layout visible to expressions of one query block: the
// columns of every FROM item, in FROM order. A column's position in the scope is
// its ColumnRef index.
type scope struct {
	columns []scopeColumn
}

func newTableScope(qualifier string, table *catalog.Table) *scope {
	sc := &scope{columns: make([]scopeColumn, len(table.Columns))}
	for i, c := range table.Columns {
		sc.columns[i] = scopeColumn{qualifier: qualifier, name: c.Name, typ: c.Type}
	}
	return sc
}

func (s *scope) hasQualifier(qualifier string) bool {
	for _, c := range s.columns {
		if c.qualifier == qualifier {
			return true
		}
	}
	return false
}

// concat returns the scope of a join of s and other. Two FROM items may not
// share a name.
func (s *scope) concat(other *scope) (*scope, error) {
	for _, c := range other.columns {
		if s.hasQualifier(c.qualifier) {
			return nil, common.NewError(common.DuplicateObjectError, "duplicate relation name '%s' in FROM clause", c.qualifier)
		}
	}
	out := &scope{columns: make([]scopeColumn, 0, len(s.columns)+len(other.columns))}
	out.columns = append(out.columns, s.columns...)
	out.columns = append(out.columns, other.columns...)
	return out, nil
}

// lookup finds the position of a column. Column names match without regard
// to case, qualifiers match exactly.
func (s *scope) lookup(qualifier, name string) (int, error) {
	identifier := name
	if qualifier != "" {
		identifier = qualifier + "." + name
	}
	found := -1
	for i, c := range s.columns {
		if qualifier != "" && c.qualifier != qualifier {
			continue
		}
		if !strings.EqualFold(c.name, name) {
			continue
		}
		if found >= 0 {
			return -1, common.NewError(common.AmbiguousColumnError, "column '%s' is ambiguous", identifier)
		}
		found = i
	}
	if found < 0 {
		return -1, common.NewError(common.UnresolvedColumnError, "column '%s' not found in any table", identifier)
	}
	return found, nil
}

func (s *scope) resolve(qualifier, name string) (*ColumnRef, error) {
	idx, err := s.lookup(qualifier, name)
	if err != nil {
		return nil, err
	}
	return NewColumnRef(idx, s.columns[idx].typ), nil
}

func (s *scope) resolveColName(col *sqlparser.ColName) (*ColumnRef, error) {
	if !col.Qualifier.Qualifier.IsEmpty() {
		return nil, common.NewError(common.UnsupportedSyntaxError, "column qualifier '%s' is not supported", sqlparser.String(col))
	}
	return s.resolve(col.Qualifier.Name.String(), col.Name.String())
}

// expandStar expands * or t.* into one column reference per matching column,
// preserving scope order.
func (s *scope) expandStar(star *sqlparser.StarExpr) ([]Expr, []string, error) {
	qualifier := ""
	if !star.TableName.IsEmpty() {
		qualifier = star.TableName.Name.String()
		if !s.hasQualifier(qualifier) {
			return nil, nil, common.NewError(common.UnresolvedTableError, "table '%s' not found", qualifier)
		}
	}
	var exprs []Expr
	var names []string
	for i, c := range s.columns {
		if qualifier != "" && c.qualifier != qualifier {
			continue
		}
		exprs = append(exprs, NewColumnRef(i, c.typ))
		names = append(names, c.name)
	}
	return exprs, names, nil
}

// outputName picks the name of a select item: its alias, the catalog name of
// a bare column, or EXPR$<position>.
func (s *scope) outputName(item *sqlparser.AliasedExpr, pos int) string {
	if !item.As.IsEmpty() {
		return item.As.String()
	}
	if col, ok := item.Expr.(*sqlparser.ColName); ok {
		if idx, err := s.lookup(col.Qualifier.Name.String(), col.Name.String()); err == nil {
			return s.columns[idx].name
		}
	}
	return exprName(pos)
}

var comparisonOperators = map[sqlparser.ComparisonExprOperator]Operator{
	sqlparser.EqualOp:        OpEqual,
	sqlparser.NotEqualOp:     OpNotEqual,
	sqlparser.LessThanOp:     OpLessThan,
	sqlparser.GreaterThanOp:  OpGreaterThan,
	sqlparser.LessEqualOp:    OpLessThanOrEqual,
	sqlparser.GreaterEqualOp: OpGreaterThanOrEqual,
	sqlparser.LikeOp:         OpLike,
	sqlparser.NotLikeOp:      OpNotLike,
}

var arithmeticOperators = map[sqlparser.BinaryExprOperator]Operator{
	sqlparser.PlusOp:  OpPlus,
	sqlparser.MinusOp: OpMinus,
	sqlparser.MultOp:  OpTimes,
	sqlparser.DivOp:   OpDivide,
	sqlparser.ModOp:   OpMod,
}

var isOperators = map[sqlparser.IsExprOperator]Operator{
	sqlparser.IsNullOp:    OpIsNull,
	sqlparser.IsNotNullOp: OpIsNotNull,
	sqlparser.IsTrueOp:    OpIsTrue,
	sqlparser.IsFalseOp:   OpIsFalse,
}

func unsupportedExpr(e sqlparser.Expr) error {
	return common.NewError(common.UnsupportedSyntaxError, "unsupported expression: %s", sqlparser.String(e))
}

// convert translates a parsed expression into a plan expression over this scope.
func (s *scope) convert(e sqlparser.Expr) (Expr, error) {
	switch e := e.(type) {
	case *sqlparser.ColName:
		return s.resolveColName(e)
	case *sqlparser.Literal:
		return convertLiteral(e)
	case sqlparser.BoolVal:
		return NewBoolLiteral(bool(e)), nil
	case *sqlparser.NullVal:
		return NewNullLiteral(), nil
	case *sqlparser.AndExpr:
		args, err := s.convertAll(e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return Conjoin(args), nil
	case *sqlparser.OrExpr:
		args, err := s.convertAll(e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return flatten(OpOr, args), nil
	case *sqlparser.NotExpr:
		arg, err := s.convert(e.Expr)
		if err != nil {
			return nil, err
		}
		return NewCall(OpNot, arg), nil
	case *sqlparser.ComparisonExpr:
		op, ok := comparisonOperators[e.Operator]
		if !ok || e.Escape != nil {
			return nil, unsupportedExpr(e)
		}
		args, err := s.convertAll(e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return NewCall(op, args...), nil
	case *sqlparser.BinaryExpr:
		op, ok := arithmeticOperators[e.Operator]
		if !ok {
			return nil, unsupportedExpr(e)
		}
		args, err := s.convertAll(e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return NewCall(op, args...), nil
	case *sqlparser.UnaryExpr:
		return s.convertUnary(e)
	case *sqlparser.IsExpr:
		op, ok := isOperators[e.Right]
		if !ok {
			return nil, unsupportedExpr(e)
		}
		arg, err := s.convert(e.Left)
		if err != nil {
			return nil, err
		}
		return NewCall(op, arg), nil
	case *sqlparser.BetweenExpr:
		args, err := s.convertAll(e.Left, e.From, e.To)
		if err != nil {
			return nil, err
		}
		if e.IsBetween {
			return NewCall(OpAnd, NewCall(OpGreaterThanOrEqual, args[0], args[1]), NewCall(OpLessThanOrEqual, args[0], args[2])), nil
		}
		return NewCall(OpOr, NewCall(OpLessThan, args[0], args[1]), NewCall(OpGreaterThan, args[0], args[2])), nil
	}
	return nil, unsupportedExpr(e)
}

func (s *scope) convertAll(exprs ...sqlparser.Expr) ([]Expr, error) {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		converted, err := s.convert(e)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

func (s *scope) convertUnary(e *sqlparser.UnaryExpr) (Expr, error) {
	arg, err := s.convert(e.Expr)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case sqlparser.UPlusOp:
		return arg, nil
	case sqlparser.UMinusOp:
		if lit, ok := arg.(*Literal); ok && lit.outputType.IsNumeric() {
			if strings.HasPrefix(lit.text, "-") {
				return NewLiteral(lit.text[1:], lit.outputType), nil
			}
			return NewLiteral("-"+lit.text, lit.outputType), nil
		}
		return NewCall(OpUnaryMinus, arg), nil
	}
	return nil, unsupportedExpr(e)
}

func convertLiteral(lit *sqlparser.Literal) (Expr, error) {
	switch lit.Type {
	case sqlparser.IntVal:
		return NewLiteral(lit.Val, common.IntType), nil
	case sqlparser.DecimalVal:
		return NewLiteral(lit.Val, common.DecimalType), nil
	case sqlparser.FloatVal:
		return NewLiteral(lit.Val, common.DoubleType), nil
	case sqlparser.StrVal:
		return NewStringLiteral(lit.Val), nil
	}
	return nil, unsupportedExpr(lit)
}

// flatten builds an n-ary call, absorbing arguments that are calls to the
// same operator.
func flatten(op Operator, args []Expr) Expr {
	var flat []Expr
	for _, a := range args {
		if call, ok := a.(*Call); ok && call.op == op {
			flat = append(flat, call.args...)
			continue
		}
		flat = append(flat, a)
	}
	return NewCall(op, flat...)
}
