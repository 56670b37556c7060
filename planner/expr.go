package planner

import (
	"fmt"
	"strings"

	"mit.edu/dsg/relplan/common"
)

// Expr represents a node in an expression tree.
// Expressions are immutable; rewrites build new expressions.
type Expr interface {
	// OutputType returns the type of value this expression produces.
	OutputType() common.Type

	// String returns the explain form of the expression.
	String() string
}

// ColumnRef references a column of the input row by position.
type ColumnRef struct {
	index      int
	outputType common.Type
}

func NewColumnRef(index int, outputType common.Type) *ColumnRef {
	common.Assert(index >= 0, "negative column index %d", index)
	return &ColumnRef{index: index, outputType: outputType}
}

// Index returns the position of the referenced column in the input row.
func (e *ColumnRef) Index() int {
	return e.index
}

func (e *ColumnRef) OutputType() common.Type {
	return e.outputType
}

func (e *ColumnRef) String() string {
	return fmt.Sprintf("$%d", e.index)
}

// Literal is a constant in its rendered textual form.
type Literal struct {
	text       string
	outputType common.Type
}

func NewLiteral(text string, outputType common.Type) *Literal {
	return &Literal{text: text, outputType: outputType}
}

// NewStringLiteral quotes s the way SQL does, doubling embedded quotes.
func NewStringLiteral(s string) *Literal {
	return NewLiteral("'"+strings.ReplaceAll(s, "'", "''")+"'", common.VarcharType)
}

func NewBoolLiteral(b bool) *Literal {
	if b {
		return NewLiteral("true", common.BooleanType)
	}
	return NewLiteral("false", common.BooleanType)
}

func NewNullLiteral() *Literal {
	return NewLiteral("null", common.UnknownType)
}

// TrueLiteral is the placeholder condition of joins built from comma lists.
var TrueLiteral = NewBoolLiteral(true)

func (e *Literal) OutputType() common.Type {
	return e.outputType
}

func (e *Literal) String() string {
	return e.text
}

// Operator identifies the function applied by a Call.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessThanOrEqual
	OpGreaterThanOrEqual
	OpAnd
	OpOr
	OpNot
	OpPlus
	OpMinus
	OpTimes
	OpDivide
	OpMod
	OpUnaryMinus
	OpLike
	OpNotLike
	OpIsNull
	OpIsNotNull
	OpIsTrue
	OpIsFalse
)

var operatorSymbols = [...]string{
	OpEqual:              "=",
	OpNotEqual:           "<>",
	OpLessThan:           "<",
	OpGreaterThan:        ">",
	OpLessThanOrEqual:    "<=",
	OpGreaterThanOrEqual: ">=",
	OpAnd:                "AND",
	OpOr:                 "OR",
	OpNot:                "NOT",
	OpPlus:               "+",
	OpMinus:              "-",
	OpTimes:              "*",
	OpDivide:             "/",
	OpMod:                "MOD",
	OpUnaryMinus:         "-",
	OpLike:               "LIKE",
	OpNotLike:            "NOT LIKE",
	OpIsNull:             "IS NULL",
	OpIsNotNull:          "IS NOT NULL",
	OpIsTrue:             "IS TRUE",
	OpIsFalse:            "IS FALSE",
}

func (op Operator) String() string {
	if int(op) < 0 || int(op) >= len(operatorSymbols) {
		return "???"
	}
	return operatorSymbols[op]
}

// IsPredicate reports whether the operator yields a boolean.
func (op Operator) IsPredicate() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLessThan, OpGreaterThan, OpLessThanOrEqual, OpGreaterThanOrEqual,
		OpAnd, OpOr, OpNot, OpLike, OpNotLike, OpIsNull, OpIsNotNull, OpIsTrue, OpIsFalse:
		return true
	}
	return false
}

// Call applies an operator to an ordered list of arguments.
type Call struct {
	op         Operator
	args       []Expr
	outputType common.Type
}

// NewCall builds a call, deriving the output type from the operator: predicates
// are boolean and arithmetic takes the type of its first operand.
func NewCall(op Operator, args ...Expr) *Call {
	common.Assert(len(args) > 0, "call to %s without arguments", op)
	outputType := common.BooleanType
	if !op.IsPredicate() {
		outputType = args[0].OutputType()
	}
	return &Call{op: op, args: append([]Expr(nil), args...), outputType: outputType}
}

func (e *Call) Operator() Operator {
	return e.op
}

// Args returns the call arguments. The slice must not be modified.
func (e *Call) Args() []Expr {
	return e.args
}

func (e *Call) OutputType() common.Type {
	return e.outputType
}

func (e *Call) String() string {
	args := make([]string, len(e.args))
	for i, a := range e.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.op.String(), strings.Join(args, ", "))
}
