// Package config handles loading compiler configuration from files.
//
// Configuration is a TOML file named khrgraph.toml or .khrgraph.toml.
// The config file is searched for in the current directory and parent directories.
//
//	validate = true
//	fold_constants = false
//	max_fixpoint_iterations = 32
//	log_level = "debug"
//	indent = 2
//
//	[ids]
//	"scene/node/Cube" = 3
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/khrgraph"
	"github.com/gogpu/khrgraph/ir"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// Validate checks the graph structure before compiling
	Validate *bool `toml:"validate"`

	// FoldConstants replaces constant combine and math nodes with literals
	FoldConstants *bool `toml:"fold_constants"`

	// Deduplicate merges pure nodes computing the same value
	Deduplicate *bool `toml:"deduplicate"`

	// RemoveUnconnected removes nodes without edges
	RemoveUnconnected *bool `toml:"remove_unconnected"`

	// MaxFixpointIterations bounds the conversion and clean-up loops
	MaxFixpointIterations *int `toml:"max_fixpoint_iterations"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `toml:"log_level"`

	// Indent is the JSON indent width, 0 for compact output
	Indent *int `toml:"indent"`

	// IDs maps host references to the indices written for them
	IDs map[string]int `toml:"ids"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"khrgraph.toml",
	".khrgraph.toml",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration from TOML. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if cfg.MaxFixpointIterations != nil && *cfg.MaxFixpointIterations < 0 {
		return nil, fmt.Errorf("max_fixpoint_iterations must not be negative, got %d", *cfg.MaxFixpointIterations)
	}
	if cfg.Indent != nil && *cfg.Indent < 0 {
		return nil, fmt.Errorf("indent must not be negative, got %d", *cfg.Indent)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level returns the configured log level, slog.LevelWarn when unset.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Apply overlays the fields set in c onto opts.
func (c *Config) Apply(opts *khrgraph.CompileOptions) {
	if c.Validate != nil {
		opts.Validate = *c.Validate
	}
	if c.FoldConstants != nil {
		opts.FoldConstants = *c.FoldConstants
	}
	if c.Deduplicate != nil {
		opts.Deduplicate = *c.Deduplicate
	}
	if c.RemoveUnconnected != nil {
		opts.RemoveUnconnected = *c.RemoveUnconnected
	}
	if c.MaxFixpointIterations != nil {
		opts.MaxFixpointIterations = *c.MaxFixpointIterations
	}
	if c.Indent != nil {
		opts.Indent = *c.Indent
	}
	if len(c.IDs) > 0 {
		opts.Resolver = ir.IDMap(c.IDs)
	}
}

// ToOptions converts a Config to khrgraph.CompileOptions, using defaults for unset fields.
func (c *Config) ToOptions() khrgraph.CompileOptions {
	opts := khrgraph.DefaultOptions()
	c.Apply(&opts)
	return opts
}

// MergeOptions holds CLI flags. Nil means not specified on the command line.
type MergeOptions struct {
	Validate      *bool
	FoldConstants *bool
	Deduplicate   *bool
	Indent        *int
	NoCleanUp     bool
}

// Merge merges CLI options with config file options.
// CLI options override config file options when specified.
func (c *Config) Merge(cli MergeOptions) khrgraph.CompileOptions {
	opts := c.ToOptions()

	if cli.Validate != nil {
		opts.Validate = *cli.Validate
	}
	if cli.FoldConstants != nil {
		opts.FoldConstants = *cli.FoldConstants
	}
	if cli.Deduplicate != nil {
		opts.Deduplicate = *cli.Deduplicate
	}
	if cli.Indent != nil {
		opts.Indent = *cli.Indent
	}
	if cli.NoCleanUp {
		opts.FoldConstants = false
		opts.Deduplicate = false
		opts.RemoveUnconnected = false
	}
	return opts
}
