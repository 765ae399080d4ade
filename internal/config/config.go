// Package config loads sapec settings from sapec.toml (or a YAML file) and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"sapec/internal/diag"
	"sapec/internal/mode"
)

// FileName is the configuration file searched for by Find.
const FileName = "sapec.toml"

// Environment overrides.
const (
	EnvColor       = "SAPEC_COLOR"
	EnvMemoryLimit = "SAPEC_MEMORY_LIMIT"
	EnvVerbose     = "SAPEC_VERBOSE"
)

type ModeConfig struct {
	Verbose bool `toml:"verbose" yaml:"verbose"`
	Info    bool `toml:"info" yaml:"info"`
	SapWin  bool `toml:"sapwin" yaml:"sapwin"`
	Binary  bool `toml:"binary" yaml:"binary"`
}

type DiagnosticsConfig struct {
	Color  string `toml:"color" yaml:"color"`   // auto|on|off
	Prefix string `toml:"prefix" yaml:"prefix"` // program name on each line
}

type MemoryConfig struct {
	Limit uint64 `toml:"limit" yaml:"limit"` // largest single block in bytes, 0 = physical memory
}

type Config struct {
	Path        string            `toml:"-" yaml:"-"`
	Mode        ModeConfig        `toml:"mode" yaml:"mode"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics" yaml:"diagnostics"`
	Memory      MemoryConfig      `toml:"memory" yaml:"memory"`
}

var errEmptyPrefix = errors.New("diagnostics.prefix cannot be blank")

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Diagnostics: DiagnosticsConfig{
			Color:  string(diag.ColorAuto),
			Prefix: "sapec",
		},
	}
}

// Load reads path. Files ending in .yaml or .yml are YAML, anything else
// is TOML. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(path, &cfg)
	default:
		err = decodeTOML(path, &cfg)
	}
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func decodeTOML(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	return nil
}

// Find walks up from startDir looking for sapec.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func (c *Config) validate() error {
	if _, err := diag.ParseColorMode(c.Diagnostics.Color); err != nil {
		return err
	}
	if strings.TrimSpace(c.Diagnostics.Prefix) == "" {
		return errEmptyPrefix
	}
	if _, err := c.MaxBlock(); err != nil {
		return err
	}
	return nil
}

// ApplyEnv overlays environment overrides read through lookup
// (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvColor); ok {
		if _, err := diag.ParseColorMode(v); err != nil {
			return fmt.Errorf("%s: %w", EnvColor, err)
		}
		c.Diagnostics.Color = v
	}
	if v, ok := lookup(EnvMemoryLimit); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid byte count %q", EnvMemoryLimit, v)
		}
		c.Memory.Limit = n
	}
	if v, ok := lookup(EnvVerbose); ok {
		on, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbose, err)
		}
		c.Mode.Verbose = c.Mode.Verbose || on
	}
	return c.validate()
}

// ColorMode returns the parsed color policy.
func (c *Config) ColorMode() diag.ColorMode {
	m, err := diag.ParseColorMode(c.Diagnostics.Color)
	if err != nil {
		return diag.ColorAuto
	}
	return m
}

// MaxBlock converts the memory limit to an int byte count.
func (c *Config) MaxBlock() (int, error) {
	n, err := safecast.Conv[int](c.Memory.Limit)
	if err != nil {
		return 0, fmt.Errorf("memory.limit: %w", err)
	}
	return n, nil
}

// ApplyMode turns on the configured mode bits. Bits already set stay set.
func (c *Config) ApplyMode(f *mode.Flags) {
	if c.Mode.Verbose {
		f.SetVerbose()
	}
	if c.Mode.Info {
		f.SetInfo()
	}
	if c.Mode.SapWin {
		f.SetSapWin()
	}
	if c.Mode.Binary {
		f.SetBinary()
	}
}
