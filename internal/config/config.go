package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/bgricker/devdrive/internal/manifest"
)

// Config captures CLI options sourced from the manifest file or flags. Option
// keys sit at the top level of the manifest, next to the scripts block.
type Config struct {
	Manifest string `yaml:"-" toml:"-"`
	Format   string `yaml:"format" toml:"format"`
	DryRun   bool   `yaml:"dry_run" toml:"dry_run"`
	Verbose  bool   `yaml:"verbose" toml:"verbose"`
	NoLock   bool   `yaml:"no_lock" toml:"no_lock"`
}

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"
)

// Default returns the baseline configuration used when no flags or manifest
// specify values.
func Default() Config {
	return Config{Format: FormatPretty}
}

// Load reads option keys from the manifest file under root when present.
// A missing manifest is not an error; the defaults apply.
func Load(root, explicitManifest string) (Config, error) {
	cfg := Default()
	cfg.Manifest = explicitManifest

	path, err := manifest.Locate(root, explicitManifest)
	if err != nil {
		if errors.Is(err, manifest.ErrNoManifest) {
			return cfg, nil
		}
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		if _, err := toml.Decode(string(data), &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	return merge(cfg, fileCfg), nil
}

func merge(base, override Config) Config {
	out := base
	if override.Format != "" {
		out.Format = override.Format
	}
	if override.DryRun {
		out.DryRun = true
	}
	if override.Verbose {
		out.Verbose = true
	}
	if override.NoLock {
		out.NoLock = true
	}
	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are
// present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.Manifest.Set {
		cfg.Manifest = flags.Manifest.Value
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.DryRun.Set {
		cfg.DryRun = flags.DryRun.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
	if flags.NoLock.Set {
		cfg.NoLock = flags.NoLock.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was
// set explicitly.
type FlagValues struct {
	Manifest StringFlag
	Format   StringFlag
	DryRun   BoolFlag
	Verbose  BoolFlag
	NoLock   BoolFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}
