package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mit.edu/dsg/relplan/catalog"
	"mit.edu/dsg/relplan/common"
)

func testScan(name string, columns ...string) *ScanNode {
	table := &catalog.Table{Name: name}
	for _, c := range columns {
		table.Columns = append(table.Columns, catalog.Column{Name: c, Type: common.IntType})
	}
	return NewScanNode("beam", table)
}

func TestExplainHandBuiltPlan(t *testing.T) {
	orders := testScan("orders", "id", "customer")
	customers := testScan("customers", "id", "region")

	join := NewJoinNode(
		NewFilterNode(orders, NewCall(OpGreaterThan, ref(0), intLit("10"))),
		customers,
		NewCall(OpEqual, ref(1), ref(2)),
		LeftJoin)
	plan := NewProjectionNode(join, []Expr{ref(0), ref(3)}, []string{"order_id", "region"})

	require.NoError(t, Validate(plan))
	assert.Equal(t,
		"BeamProjectRel(order_id=[$0], region=[$3])\n"+
			"  BeamJoinRel(condition=[=($1, $2)], joinType=[left])\n"+
			"    BeamFilterRel(condition=[>($0, 10)])\n"+
			"      BeamIOSourceRel(table=[[beam, orders]])\n"+
			"    BeamIOSourceRel(table=[[beam, customers]])\n",
		Explain(plan))
	assert.Equal(t, []string{"order_id", "region"}, FieldNames(plan))
	assert.Equal(t, 4, Arity(join))
}

func TestExplainSingleNode(t *testing.T) {
	scan := testScan("t", "a")
	assert.Equal(t, "BeamIOSourceRel(table=[[beam, t]])\n", Explain(scan))
	assert.Equal(t, "BeamFilterRel(condition=[true])", NewFilterNode(scan, nil).String())
}

func TestWithChildren(t *testing.T) {
	a, b := testScan("a", "x"), testScan("b", "y", "z")
	filter := NewFilterNode(a, NewCall(OpIsNotNull, ref(0)))

	moved := filter.WithChildren([]PlanNode{b}).(*FilterNode)
	assert.Same(t, b, moved.Child)
	assert.Same(t, a, filter.Child)
	assert.Equal(t, filter.Predicate, moved.Predicate)

	join := NewJoinNode(a, b, TrueLiteral, InnerJoin)
	swapped := join.WithChildren([]PlanNode{b, a}).(*JoinNode)
	assert.Equal(t, []string{"y", "z", "x"}, FieldNames(swapped))

	assert.Panics(t, func() { join.WithChildren([]PlanNode{a}) })
	assert.Same(t, a, a.WithChildren(nil))
}

func TestProjectionIsIdentity(t *testing.T) {
	scan := testScan("t", "a", "b")
	assert.True(t, NewProjectionNode(scan, []Expr{ref(0), ref(1)}, []string{"a", "b"}).IsIdentity())
	assert.False(t, NewProjectionNode(scan, []Expr{ref(1), ref(0)}, []string{"b", "a"}).IsIdentity())
	assert.False(t, NewProjectionNode(scan, []Expr{ref(0), ref(1)}, []string{"a", "c"}).IsIdentity())
	assert.False(t, NewProjectionNode(scan, []Expr{ref(0)}, []string{"a"}).IsIdentity())
	assert.Panics(t, func() { NewProjectionNode(scan, []Expr{ref(0)}, nil) })
}

func TestValidateRejectsBrokenPlans(t *testing.T) {
	scan := testScan("t", "a", "b")

	err := Validate(NewFilterNode(scan, NewCall(OpEqual, ref(0), ref(2))))
	assert.True(t, common.IsCode(err, common.InvalidPlanError))
	assert.Contains(t, err.Error(), "$2")

	err = Validate(NewProjectionNode(NewFilterNode(scan, nil), []Expr{ref(5)}, []string{"x"}))
	assert.True(t, common.IsCode(err, common.InvalidPlanError))

	err = Validate(NewProjectionNode(scan, []Expr{ref(0), ref(1)}, []string{"a", "a"}))
	assert.True(t, common.IsCode(err, common.InvalidPlanError))
	assert.Contains(t, err.Error(), "'a'")

	err = Validate(NewJoinNode(scan, testScan("u", "c"), nil, InnerJoin))
	assert.True(t, common.IsCode(err, common.InvalidPlanError))

	assert.NoError(t, Validate(NewJoinNode(scan, testScan("u", "c"), NewCall(OpEqual, ref(1), ref(2)), InnerJoin)))
}

func TestPlanEqual(t *testing.T) {
	build := func(threshold string) PlanNode {
		return NewFilterNode(testScan("t", "a"), NewCall(OpGreaterThan, ref(0), intLit(threshold)))
	}
	assert.True(t, PlanEqual(build("1"), build("1")))
	assert.False(t, PlanEqual(build("1"), build("2")))
	assert.False(t, PlanEqual(build("1"), testScan("t", "a")))
	assert.False(t, PlanEqual(testScan("t", "a"), testScan("u", "a")))
}
