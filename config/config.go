package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"mit.edu/dsg/relplan/catalog"
	"mit.edu/dsg/relplan/common"
	"mit.edu/dsg/relplan/planner"
)

// EnvPrefix prefixes every environment override, e.g. RELPLAN_LOG_LEVEL.
const EnvPrefix = "RELPLAN"

type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog" yaml:"catalog" json:"catalog"`
	Optimizer OptimizerConfig `mapstructure:"optimizer" yaml:"optimizer" json:"optimizer"`
	Log       LogConfig       `mapstructure:"log" yaml:"log" json:"log"`
}

type CatalogConfig struct {
	Name string `mapstructure:"name" yaml:"name" json:"name,omitempty"`
	// Dir holds the catalog file. Empty keeps the catalog in memory.
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir,omitempty"`
}

type OptimizerConfig struct {
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations" json:"max_iterations,omitempty"`
}

type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format,omitempty"`
	Level  string `mapstructure:"level" yaml:"level" json:"level,omitempty"`
}

func NewConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Name: catalog.DefaultName,
		},
		Optimizer: OptimizerConfig{
			MaxIterations: planner.DefaultMaxIterations,
		},
		Log: LogConfig{
			Format: common.LogFormatTextValue,
			Level:  "info",
		},
	}
}

// SetDefaults registers the defaults of NewConfig with v so that environment
// variables are picked up for keys that appear in no config file.
func SetDefaults(v *viper.Viper) {
	d := NewConfig()
	v.SetDefault("catalog.name", d.Catalog.Name)
	v.SetDefault("catalog.dir", d.Catalog.Dir)
	v.SetDefault("optimizer.max_iterations", d.Optimizer.MaxIterations)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.level", d.Log.Level)
}

// Load reads the optional config file at path, applies RELPLAN_* environment
// overrides and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading from config file: %w", err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := NewConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Optimizer.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("optimizer.max_iterations must be at least 1, got %d", c.Optimizer.MaxIterations))
	}
	switch c.Log.Format {
	case common.LogFormatJSONValue, common.LogFormatTextValue:
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}
	if _, err := common.NewLogger(io.Discard, c.Log.Level, common.LogFormatJSONValue); err != nil {
		errs = append(errs, fmt.Errorf("invalid log.level: %w", err))
	}
	return errors.Join(errs...)
}

// CatalogProvider returns the persistence provider the catalog settings ask for.
func (c *Config) CatalogProvider() catalog.PersistenceProvider {
	if c.Catalog.Dir == "" {
		return catalog.NewMemoryCatalogManager()
	}
	return catalog.NewDiskCatalogManager(c.Catalog.Dir)
}

// OptimizerOptions translates the optimizer settings.
func (c *Config) OptimizerOptions() []planner.OptimizerOption {
	return []planner.OptimizerOption{planner.WithMaxIterations(c.Optimizer.MaxIterations)}
}
