// Package config loads the project configuration file, declbind.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"martianoff/declbind/internal/pipeline"
	"martianoff/declbind/internal/source"
)

// FileName is the name of the project configuration file.
const FileName = "declbind.yaml"

// Environment variables that override the file.
const (
	EnvConfig = "DECLBIND_CONFIG"
	EnvStrict = "DECLBIND_STRICT"
)

// Output formats.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// Builtins are the names every configuration accepts as external in strict
// mode.
var Builtins = []string{
	"any", "number", "string", "boolean", "void", "undefined", "null", "never",
	"unknown", "object", "symbol", "bigint", "Array", "Object", "Function",
}

// Config holds project settings.
type Config struct {
	// Strict rejects names that no declaration defines.
	Strict bool `yaml:"strict"`

	// Globals are extra external names accepted in strict mode. They are
	// added to Builtins.
	Globals []string `yaml:"globals"`

	// Include lists the file name patterns loaded from directories.
	// Defaults to *.yaml, *.yml and *.json.
	Include []string `yaml:"include"`

	// Output is the dump format, text or yaml.
	Output string `yaml:"output"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Include: slices.Clone(source.DefaultInclude),
		Output:  OutputText,
	}
}

// Load reads the configuration file at path. Missing fields keep their
// defaults; unknown fields are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.Path = path

	if len(cfg.Include) == 0 {
		cfg.Include = slices.Clone(source.DefaultInclude)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", c.Output, OutputText, OutputYAML)
	}
	for _, p := range c.Include {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
	}
	return nil
}

// Find looks for FileName in dir and its parents. It returns "" when there is
// none.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Resolve returns the configuration for a run started in dir. An explicit
// path wins over DECLBIND_CONFIG, which wins over discovery. Environment
// overrides are applied last.
func Resolve(dir, explicit string) (*Config, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = Find(dir)
	}

	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	v := os.Getenv(EnvStrict)
	if v == "" {
		return nil
	}
	strict, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", EnvStrict, v, err)
	}
	c.Strict = strict
	return nil
}

// AllGlobals returns Builtins followed by the configured globals.
func (c *Config) AllGlobals() []string {
	out := slices.Clone(Builtins)
	for _, g := range c.Globals {
		if !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}

// PipelineOptions returns the analysis options this configuration selects.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Strict:  c.Strict,
		Globals: c.AllGlobals(),
	}
}
