// Package config provides configuration management for the argtable CLI.
package config

import (
	"github.com/leapstack-labs/argtable/internal/macro"
	"github.com/leapstack-labs/argtable/internal/sigtable"
	"github.com/leapstack-labs/argtable/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	MacrosDir        string   `koanf:"macros_dir"`
	StatePath        string   `koanf:"state_path"`
	Callables        []string `koanf:"callables"`
	DefaultNamespace string   `koanf:"default_namespace"`
	RowHeader        string   `koanf:"row_header"`
	ColumnPrefix     string   `koanf:"column_prefix"`
	Concurrency      int      `koanf:"concurrency"`
	Verbose          bool     `koanf:"verbose"`
	OutputFormat     string   `koanf:"output"`

	// ConfigDir is the directory of the config file used, or "" when none.
	ConfigDir string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultMacrosDir = "macros"
	DefaultStateFile = ".argtable/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// DefaultCallables returns the callables tabulated when none are configured.
func DefaultCallables() []string {
	out := make([]string, len(macro.ApplyFamily))
	copy(out, macro.ApplyFamily)
	return out
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		MacrosDir:        DefaultMacrosDir,
		StatePath:        DefaultStateFile,
		Callables:        DefaultCallables(),
		DefaultNamespace: macro.PreludeNamespace,
		RowHeader:        core.DefaultRowHeader,
		ColumnPrefix:     core.DefaultColumnPrefix,
		Concurrency:      sigtable.DefaultConcurrency,
		OutputFormat:     DefaultOutput,
	}
}

func defaultsMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"macros_dir":        d.MacrosDir,
		"state_path":        d.StatePath,
		"callables":         d.Callables,
		"default_namespace": d.DefaultNamespace,
		"row_header":        d.RowHeader,
		"column_prefix":     d.ColumnPrefix,
		"concurrency":       d.Concurrency,
		"verbose":           d.Verbose,
		"output":            d.OutputFormat,
	}
}
