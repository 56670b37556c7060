package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mit.edu/dsg/relplan"
	"mit.edu/dsg/relplan/catalog"
	"mit.edu/dsg/relplan/common"
	"mit.edu/dsg/relplan/config"
)

// app carries the state shared by the subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
}

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Each call has its own viper instance so
// that trees do not share flag state.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: log.Logger}

	root := &cobra.Command{
		Use:   "relplan",
		Short: "relplan compiles SQL queries into optimized logical plans",
		Long: "relplan keeps a catalog of table definitions, plans SELECT queries against it " +
			"and prints the rewritten relational plan in Beam explain format.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file")
	flags.String("log-format", common.LogFormatTextValue, "logging format [text|json]")
	flags.String("log-level", zerolog.LevelInfoValue,
		fmt.Sprintf(
			"logging level %s|%s|%s|%s",
			zerolog.LevelDebugValue,
			zerolog.LevelInfoValue,
			zerolog.LevelWarnValue,
			zerolog.LevelErrorValue,
		),
	)
	flags.String("catalog-dir", "", "directory of the persistent catalog; in-memory when empty")
	flags.String("catalog-name", catalog.DefaultName, "catalog name shown in table scans")

	for key, flag := range map[string]string{
		"log.format":   "log-format",
		"log.level":    "log-level",
		"catalog.dir":  "catalog-dir",
		"catalog.name": "catalog-name",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}

	root.AddCommand(newExecCmd(a))
	root.AddCommand(newExplainCmd(a))
	root.AddCommand(newTablesCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := common.SetDefaultLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = log.Logger
	return nil
}

func (a *app) compiler() (*relplan.Compiler, error) {
	provider := a.cfg.CatalogProvider()
	cat, err := catalog.NewCatalog(a.cfg.Catalog.Name, provider)
	if err != nil {
		return nil, fmt.Errorf("cannot open catalog: %w", err)
	}
	return relplan.NewCompiler(cat, provider,
		relplan.WithLogger(a.logger),
		relplan.WithOptimizerOptions(a.cfg.OptimizerOptions()...))
}

// runDDLFile executes the statements in path against c.
func runDDLFile(c *relplan.Compiler, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read ddl file: %w", err)
	}
	return c.ExecuteScript(string(script))
}
