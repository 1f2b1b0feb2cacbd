// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/gbx/lib/classid"
)

// RemapAuto selects the identifier policy from each file's class id.
const RemapAuto = "auto"

// Config is the master configuration for gbx.
type Config struct {
	// Remap is the identifier policy input files are read under:
	// "auto", or a policy name accepted by [classid.ParsePolicy].
	// Default: auto
	Remap string `yaml:"remap" json:"remap"`

	// LogLevel is one of debug, info, warn, error.
	// Default: warn
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Body configures body decoding and re-encoding.
	Body BodyConfig `yaml:"body" json:"body"`

	// Scan configures directory scans.
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Output configures how descriptions are printed.
	Output OutputConfig `yaml:"output" json:"output"`
}

// BodyConfig configures body handling.
type BodyConfig struct {
	// Codec names the compression codec used to decode compressed
	// bodies and to re-encode them on rewrite. Empty leaves bodies
	// as stored.
	Codec string `yaml:"codec" json:"codec"`
}

// ScanConfig configures directory scans.
type ScanConfig struct {
	// Root is the directory scanned when none is given on the command
	// line.
	Root string `yaml:"root" json:"root"`

	// Workers is the size of the parse pool.
	// Default: the number of CPUs
	Workers int `yaml:"workers" json:"workers"`

	// Extensions lists the file suffixes scanned, matched without
	// regard to case.
	// Default: .gbx
	Extensions []string `yaml:"extensions" json:"extensions"`
}

// OutputConfig configures output.
type OutputConfig struct {
	// Format is the manifest format: json or cbor.
	// Default: json
	Format string `yaml:"format" json:"format"`
}

// Default returns the default configuration. File values are merged on
// top of it.
func Default() *Config {
	return &Config{
		Remap:    RemapAuto,
		LogLevel: "warn",
		Scan: ScanConfig{
			Workers:    runtime.NumCPU(),
			Extensions: []string{".gbx"},
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}

// Load loads configuration from the file named by GBX_CONFIG, or
// returns [Default] when it is not set.
func Load() (*Config, error) {
	configPath := os.Getenv("GBX_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path and validates
// it. Files ending in .json or .jsonc are read as JSON with comments
// and trailing commas; anything else is YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Scan.Root = expandVars(c.Scan.Root, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, _, err := c.Policy(); err != nil {
		errs = append(errs, fmt.Errorf("remap: %w", err))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Scan.Workers < 1 {
		errs = append(errs, fmt.Errorf("scan.workers must be at least 1, got %d", c.Scan.Workers))
	}
	if len(c.Scan.Extensions) == 0 {
		errs = append(errs, fmt.Errorf("scan.extensions is required"))
	}
	formats := []string{"json", "cbor"}
	if !slices.Contains(formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of: %v", formats))
	}

	return errors.Join(errs...)
}

// Policy returns the configured identifier policy. fixed is false for
// "auto", in which case policy is meaningless.
func (c *Config) Policy() (policy classid.Policy, fixed bool, err error) {
	if strings.EqualFold(c.Remap, RemapAuto) || c.Remap == "" {
		return classid.Latest, false, nil
	}
	policy, err = classid.ParsePolicy(c.Remap)
	if err != nil {
		return 0, false, err
	}
	return policy, true, nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, err
	}
	return level, nil
}

// Matches reports whether path carries one of the scanned extensions.
func (c *Config) Matches(path string) bool {
	lower := strings.ToLower(path)
	for _, extension := range c.Scan.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(extension)) {
			return true
		}
	}
	return false
}
