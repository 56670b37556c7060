package planner

import (
	"fmt"

	"mit.edu/dsg/relplan/catalog"
)

// ScanNode reads every row of a catalog table.
type ScanNode struct {
	CatalogName  string
	Table        *catalog.Table
	outputSchema []Field
}

func NewScanNode(catalogName string, table *catalog.Table) *ScanNode {
	schema := make([]Field, len(table.Columns))
	for i, c := range table.Columns {
		schema[i] = Field{Name: c.Name, Type: c.Type}
	}
	return &ScanNode{
		CatalogName:  catalogName,
		Table:        table,
		outputSchema: schema,
	}
}

func (n *ScanNode) Kind() NodeKind {
	return ScanKind
}

func (n *ScanNode) OutputSchema() []Field {
	return n.outputSchema
}

func (n *ScanNode) Children() []PlanNode {
	return nil
}

func (n *ScanNode) WithChildren(children []PlanNode) PlanNode {
	checkChildren(n, children)
	return n
}

func (n *ScanNode) explainArgs() []string {
	return []string{fmt.Sprintf("table=[[%s, %s]]", n.CatalogName, n.Table.Name)}
}

func (n *ScanNode) String() string {
	return explainLine(n)
}
