package relplan

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"vitess.io/vitess/go/vt/sqlparser"

	"mit.edu/dsg/relplan/catalog"
	"mit.edu/dsg/relplan/common"
	"mit.edu/dsg/relplan/planner"
)

// Compiler is the top-level entry point: it owns a catalog and turns SQL text
// into optimized logical plans.
type Compiler struct {
	Catalog   *catalog.Catalog
	provider  catalog.PersistenceProvider
	parser    *sqlparser.Parser
	optimizer *planner.Optimizer
	logger    zerolog.Logger

	optimizerOpts []planner.OptimizerOption
}

type Option func(*Compiler)

// WithLogger sets the logger used by the compiler and its optimizer.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithOptimizerOptions forwards options to the rewriter.
func WithOptimizerOptions(opts ...planner.OptimizerOption) Option {
	return func(c *Compiler) {
		c.optimizerOpts = append(c.optimizerOpts, opts...)
	}
}

// NewCompiler creates a compiler over cat. DDL run through Execute is
// persisted with provider.
func NewCompiler(cat *catalog.Catalog, provider catalog.PersistenceProvider, opts ...Option) (*Compiler, error) {
	parser, err := sqlparser.New(sqlparser.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sql parser: %w", err)
	}
	c := &Compiler{
		Catalog:  cat,
		provider: provider,
		parser:   parser,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	optimizerOpts := append([]planner.OptimizerOption{planner.WithLogger(c.logger)}, c.optimizerOpts...)
	c.optimizer = planner.NewOptimizer(optimizerOpts...)
	return c, nil
}

// Plan parses and plans a query and returns the optimized tree. The catalog
// is read through a snapshot, so tables registered concurrently are either
// fully visible to the query or not at all.
func (c *Compiler) Plan(sql string) (planner.PlanNode, error) {
	stmt, err := c.parser.Parse(sql)
	if err != nil {
		return nil, common.NewError(common.UnsupportedSyntaxError, "failed to parse query: %v", err)
	}
	plan, err := planner.Build(stmt, c.Catalog.Snapshot())
	if err != nil {
		return nil, err
	}
	if plan, err = c.optimizer.Optimize(plan); err != nil {
		return nil, err
	}
	if err := planner.Validate(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Explain returns the rendered optimized plan of a query. On error nothing is
// rendered.
func (c *Compiler) Explain(sql string) (string, error) {
	plan, err := c.Plan(sql)
	if err != nil {
		c.logger.Debug().Err(err).Str("sql", sql).Msg("explain failed")
		return "", err
	}
	return planner.Explain(plan), nil
}

// Execute runs a single DDL statement. Only CREATE TABLE is supported.
func (c *Compiler) Execute(sql string) error {
	stmt, err := c.parser.Parse(sql)
	if err != nil {
		return common.NewError(common.UnsupportedSyntaxError, "failed to parse statement: %v", err)
	}
	create, ok := stmt.(*sqlparser.CreateTable)
	if !ok {
		return common.NewError(common.UnsupportedSyntaxError, "cannot execute statement: %s", sqlparser.String(stmt))
	}
	return c.createTable(create)
}

// ExecuteScript runs every statement of a semicolon separated script in
// order, stopping at the first failure.
func (c *Compiler) ExecuteScript(script string) error {
	pieces, err := c.parser.SplitStatementToPieces(script)
	if err != nil {
		return common.NewError(common.UnsupportedSyntaxError, "failed to split script: %v", err)
	}
	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		if err := c.Execute(piece); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) createTable(create *sqlparser.CreateTable) error {
	name := create.Table.Name.String()
	if !create.Table.Qualifier.IsEmpty() && create.Table.Qualifier.String() != c.Catalog.Name() {
		return common.NewError(common.UnsupportedSyntaxError,
			"cannot create table in '%s', catalog is '%s'", create.Table.Qualifier.String(), c.Catalog.Name())
	}
	if create.TableSpec == nil {
		return common.NewError(common.UnsupportedSyntaxError, "CREATE TABLE %s needs a column list", name)
	}
	if create.IfNotExists {
		if _, err := c.Catalog.GetTableMetadata(name); err == nil {
			return nil
		}
	}

	columns := make([]catalog.Column, 0, len(create.TableSpec.Columns))
	for _, def := range create.TableSpec.Columns {
		typ, err := common.ParseType(def.Type.Type)
		if err != nil {
			return fmt.Errorf("column %s.%s: %w", name, def.Name.String(), err)
		}
		column := catalog.Column{Name: def.Name.String(), Type: typ}
		if def.Type.Options != nil && def.Type.Options.Comment != nil {
			column.Comment = def.Type.Options.Comment.Val
		}
		columns = append(columns, column)
	}

	typeTag, comment := catalog.DefaultTableType, ""
	for _, opt := range create.TableSpec.Options {
		switch {
		case strings.EqualFold(opt.Name, "engine"):
			typeTag = strings.ToLower(tableOptionValue(opt))
		case strings.EqualFold(opt.Name, "comment"):
			comment = tableOptionValue(opt)
		}
	}

	table, err := c.Catalog.AddTable(name, columns, typeTag, comment, c.provider)
	if err != nil {
		return err
	}
	c.logger.Info().
		Str("table", table.Name).
		Int("columns", len(table.Columns)).
		Str("type", table.TypeTag).
		Msg("table registered")
	return nil
}

func tableOptionValue(opt *sqlparser.TableOption) string {
	if opt.Value != nil {
		return opt.Value.Val
	}
	return opt.String
}
