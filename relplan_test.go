package relplan

import (
	"bytes"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mit.edu/dsg/relplan/catalog"
	"mit.edu/dsg/relplan/common"
	"mit.edu/dsg/relplan/planner"
)

const testDDL = `
CREATE TABLE person (
	id int COMMENT 'id',
	name varchar(32) COMMENT 'name',
	age int COMMENT 'age'
) COMMENT='people';
CREATE TABLE A (c1 int COMMENT 'c1', c2 int COMMENT 'c2');
CREATE TABLE B (c1 int COMMENT 'c1', c2 int COMMENT 'c2');
`

func newTestCompiler(t *testing.T, opts ...Option) *Compiler {
	t.Helper()
	provider := catalog.NewMemoryCatalogManager()
	cat, err := catalog.NewCatalog(catalog.DefaultName, provider)
	require.NoError(t, err)
	c, err := NewCompiler(cat, provider, opts...)
	require.NoError(t, err)
	require.NoError(t, c.ExecuteScript(testDDL))
	return c
}

func TestExplain(t *testing.T) {
	c := newTestCompiler(t)
	joined := "" +
		"BeamJoinRel(condition=[=($0, $1)], joinType=[inner])\n" +
		"  BeamProjectRel(c1=[$0])\n" +
		"    BeamFilterRel(condition=[>($0, 0)])\n" +
		"      BeamIOSourceRel(table=[[beam, A]])\n" +
		"  BeamProjectRel(c2=[$1])\n" +
		"    BeamIOSourceRel(table=[[beam, B]])\n"

	tests := []struct {
		name     string
		sql      string
		expected string
	}{
		{
			name: "select star",
			sql:  "select * from person",
			expected: "BeamProjectRel(id=[$0], name=[$1], age=[$2])\n" +
				"  BeamIOSourceRel(table=[[beam, person]])\n",
		},
		{
			name:     "explicit join",
			sql:      "SELECT A.c1, B.c2 FROM A JOIN B ON A.c1 = B.c2 WHERE A.c1 > 0",
			expected: joined,
		},
		{
			name:     "comma join",
			sql:      "SELECT A.c1, B.c2 FROM A, B WHERE A.c1 = B.c2 AND A.c1 > 0",
			expected: joined,
		},
		{
			name:     "explain keyword",
			sql:      "EXPLAIN SELECT A.c1, B.c2 FROM A, B WHERE A.c1 = B.c2 AND A.c1 > 0",
			expected: joined,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Explain(tt.sql)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, out); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExplainIsDeterministic(t *testing.T) {
	c := newTestCompiler(t)
	sql := "SELECT * FROM A, B, person WHERE A.c1 = B.c1 AND B.c2 = person.id AND person.age > 3"
	first, err := c.Explain(sql)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		out, err := c.Explain(sql)
		require.NoError(t, err)
		assert.Equal(t, first, out)
	}
}

func TestExplainErrors(t *testing.T) {
	c := newTestCompiler(t)
	tests := []struct {
		sql  string
		code common.RelplanErrorCode
	}{
		{"select * from nosuchtable", common.UnresolvedTableError},
		{"select nosuchcolumn from person", common.UnresolvedColumnError},
		{"select c1 from A, B", common.AmbiguousColumnError},
		{"select c1 from A order by c1", common.UnsupportedSyntaxError},
		{"this is not sql", common.UnsupportedSyntaxError},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			out, err := c.Explain(tt.sql)
			assert.Empty(t, out)
			assert.True(t, common.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestExplainReportsDivergence(t *testing.T) {
	var buf bytes.Buffer
	c := newTestCompiler(t,
		WithLogger(zerolog.New(&buf)),
		WithOptimizerOptions(planner.WithMaxIterations(1)))

	// The comma join needs several passes; one is not enough.
	out, err := c.Explain("SELECT A.c1, B.c2 FROM A, B WHERE A.c1 = B.c2 AND A.c1 > 0")
	assert.Empty(t, out)
	assert.True(t, common.IsCode(err, common.OptimizationDivergedError))
	assert.Contains(t, buf.String(), `"max_iterations":1`)

	// A plan with nothing to rewrite settles in its first pass.
	_, err = c.Explain("select * from person")
	assert.NoError(t, err)
}

func TestExecuteCreateTable(t *testing.T) {
	c := newTestCompiler(t)

	person, err := c.Catalog.GetTableMetadata("person")
	require.NoError(t, err)
	assert.Equal(t, "text", person.TypeTag)
	assert.Equal(t, "people", person.Comment)
	assert.Equal(t, []catalog.Column{
		{Name: "id", Type: common.IntType, Comment: "id"},
		{Name: "name", Type: common.VarcharType, Comment: "name"},
		{Name: "age", Type: common.IntType, Comment: "age"},
	}, person.Columns)

	b, err := c.Catalog.GetTableMetadata("B")
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultTableType, b.TypeTag)

	require.NoError(t, c.Execute("CREATE TABLE events (ts timestamp, kind varchar(8)) ENGINE=KAFKA"))
	events, err := c.Catalog.GetTableMetadata("events")
	require.NoError(t, err)
	assert.Equal(t, "kafka", events.TypeTag)
	assert.Equal(t, common.TimestampType, events.Columns[0].Type)

	var names []string
	for _, table := range c.Catalog.Tables() {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{"A", "B", "events", "person"}, names)
}

func TestExecuteErrors(t *testing.T) {
	c := newTestCompiler(t)
	tests := []struct {
		sql  string
		code common.RelplanErrorCode
	}{
		{"CREATE TABLE A (c1 int)", common.DuplicateObjectError},
		{"CREATE TABLE t (x int, x int)", common.DuplicateObjectError},
		{"CREATE TABLE t (x json)", common.UnsupportedSyntaxError},
		{"CREATE TABLE other.t (x int)", common.UnsupportedSyntaxError},
		{"select * from A", common.UnsupportedSyntaxError},
		{"CREATE TABLE (", common.UnsupportedSyntaxError},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			err := c.Execute(tt.sql)
			assert.True(t, common.IsCode(err, tt.code), "got %v", err)
		})
	}

	require.NoError(t, c.Execute("CREATE TABLE IF NOT EXISTS A (other int)"))
	a, err := c.Catalog.GetTableMetadata("A")
	require.NoError(t, err)
	assert.Equal(t, "c1", a.Columns[0].Name)
}

func TestExecuteScriptStopsAtFirstFailure(t *testing.T) {
	c := newTestCompiler(t)
	err := c.ExecuteScript("CREATE TABLE x (a int); CREATE TABLE A (a int); CREATE TABLE y (a int);")
	assert.True(t, common.IsCode(err, common.DuplicateObjectError))

	_, err = c.Catalog.GetTableMetadata("x")
	assert.NoError(t, err)
	_, err = c.Catalog.GetTableMetadata("y")
	assert.True(t, common.IsCode(err, common.NoSuchObjectError))
}

func TestCompilerPersistsDDL(t *testing.T) {
	dir := t.TempDir()
	provider := catalog.NewDiskCatalogManager(dir)
	cat, err := catalog.NewCatalog("", provider)
	require.NoError(t, err)
	c, err := NewCompiler(cat, provider)
	require.NoError(t, err)
	require.NoError(t, c.ExecuteScript(testDDL))

	reloaded, err := catalog.NewCatalog("", catalog.NewDiskCatalogManager(dir))
	require.NoError(t, err)
	c2, err := NewCompiler(reloaded, provider)
	require.NoError(t, err)
	out, err := c2.Explain("select * from person")
	require.NoError(t, err)
	assert.Equal(t, "BeamProjectRel(id=[$0], name=[$1], age=[$2])\n"+
		"  BeamIOSourceRel(table=[[beam, person]])\n", out)
}

func TestConcurrentExplainAndRegistration(t *testing.T) {
	c := newTestCompiler(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				out, err := c.Explain("SELECT A.c1, B.c2 FROM A, B WHERE A.c1 = B.c2 AND A.c1 > 0")
				assert.NoError(t, err)
				assert.NotEmpty(t, out)
			}
		}()
	}
	for _, name := range []string{"t0", "t1", "t2", "t3"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			assert.NoError(t, c.Execute("CREATE TABLE "+name+" (v int)"))
		}(name)
	}
	wg.Wait()
	assert.Len(t, c.Catalog.Tables(), 7)
}
