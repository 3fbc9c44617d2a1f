package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

type Config struct {
	IncludeTables []string                `yaml:"include_tables"`
	ExcludeTables []string                `yaml:"exclude_tables"`
	OutDir        string                  `yaml:"out_dir"`
	Format        string                  `yaml:"format"`
	Dedupe        *bool                   `yaml:"dedupe"`
	Repair        *bool                   `yaml:"repair"`
	Encoding      string                  `yaml:"encoding"`
	Tables        map[string]*TableConfig `yaml:"tables"`
}

type TableConfig struct {
	// Columns overrides the header when the dump carries no usable
	// CREATE TABLE or inline column list.
	Columns []string `yaml:"columns"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DedupeEnabled defaults to true, matching the historical behavior of
// collapsing repeated tuples across INSERT statements.
func (c *Config) DedupeEnabled() bool {
	if c == nil || c.Dedupe == nil {
		return true
	}
	return *c.Dedupe
}

func (c *Config) RepairEnabled() bool {
	if c == nil || c.Repair == nil {
		return true
	}
	return *c.Repair
}

func (c *Config) HeaderOverride(table string) []string {
	if c == nil || c.Tables == nil {
		return nil
	}
	tc := c.Tables[table]
	if tc == nil {
		return nil
	}
	return tc.Columns
}

// TableIncluded applies the include/exclude glob patterns to a table
// name. An empty include list admits every table.
func (c *Config) TableIncluded(name string) bool {
	if c == nil {
		return true
	}
	if len(c.IncludeTables) > 0 && !MatchAny(c.IncludeTables, name) {
		return false
	}
	if MatchAny(c.ExcludeTables, name) {
		return false
	}
	return true
}

func MatchAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
