package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddl = `
CREATE TABLE A (c1 int COMMENT 'c1', c2 int COMMENT 'c2');
CREATE TABLE B (c1 int COMMENT 'c1', c2 int COMMENT 'c2');
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestLogLevelInstallsGlobalLogger(t *testing.T) {
	saved, savedCtx := log.Logger, zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger, zerolog.DefaultContextLogger = saved, savedCtx
	})

	tests := []struct {
		level   string
		want    zerolog.Level
		wantErr string
	}{
		{level: "warn", want: zerolog.WarnLevel},
		{level: "debug", want: zerolog.DebugLevel},
		{level: "chatty", wantErr: "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			_, err := run(t, "", "--log-level", tt.level, "tables")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, log.Logger.GetLevel())
		})
	}
}

func TestExplainWithDDLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	require.NoError(t, os.WriteFile(path, []byte(ddl), 0644))

	out, err := run(t, "", "explain", "--ddl", path,
		"SELECT A.c1, B.c2 FROM A JOIN B ON A.c1 = B.c2 WHERE A.c1 > 0")
	require.NoError(t, err)
	assert.Equal(t,
		"BeamJoinRel(condition=[=($0, $1)], joinType=[inner])\n"+
			"  BeamProjectRel(c1=[$0])\n"+
			"    BeamFilterRel(condition=[>($0, 0)])\n"+
			"      BeamIOSourceRel(table=[[beam, A]])\n"+
			"  BeamProjectRel(c2=[$1])\n"+
			"    BeamIOSourceRel(table=[[beam, B]])\n",
		out)
}

func TestExecPersistsIntoCatalogDir(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, ddl, "--catalog-dir", dir, "--catalog-name", "lake", "exec", "-")
	require.NoError(t, err)

	out, err := run(t, "", "--catalog-dir", dir, "--catalog-name", "lake", "explain", "select * from B")
	require.NoError(t, err)
	assert.Equal(t,
		"BeamProjectRel(c1=[$0], c2=[$1])\n"+
			"  BeamIOSourceRel(table=[[lake, B]])\n",
		out)

	out, err = run(t, "", "--catalog-dir", dir, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "c1 int, c2 int")
	assert.Less(t, strings.Index(out, "| A "), strings.Index(out, "| B "))
}

func TestExplainErrors(t *testing.T) {
	out, err := run(t, "", "explain", "select * from nosuchtable")
	assert.Error(t, err)
	assert.Empty(t, out)

	_, err = run(t, "", "exec", "select 1")
	assert.Error(t, err)

	_, err = run(t, "", "--log-format", "xml", "tables")
	assert.ErrorContains(t, err, "log.format")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relplan.yml")
	content := "catalog:\n  name: warehouse\n  dir: " + dir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := run(t, "", "--config", path, "exec", "CREATE TABLE t (v int)")
	require.NoError(t, err)
	out, err := run(t, "", "--config", path, "explain", "select v from t")
	require.NoError(t, err)
	assert.Contains(t, out, "table=[[warehouse, t]]")
}
