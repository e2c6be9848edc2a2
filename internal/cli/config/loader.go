package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

var (
	k              = koanf.New(".")
	configFileUsed string
)

// ResetConfig reinitializes the package-level koanf instance. Used by tests
// that call Load more than once in a process.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// GetConfigFileUsed returns the path of the config file loaded by the most
// recent Load call, or "" if none was found.
func GetConfigFileUsed() string { return configFileUsed }

// findConfigFile returns explicit if non-empty, else the first of
// dbt-lineage.yaml / dbt-lineage.yml found in dir.
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"dbt-lineage.yaml", "dbt-lineage.yml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load layers configuration: defaults, then an optional config file, then
// DBTLINEAGE_-prefixed environment variables, then explicitly-set flags —
// each tier overriding the one before it.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"project_dir":      DefaultProjectDir,
		"upstream_depth":   DefaultUpstream,
		"downstream_depth": DefaultDownstream,
		"output":           DefaultOutput,
		"verbose":          false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile, cwd)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	if err := k.Load(env.Provider("DBTLINEAGE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DBTLINEAGE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.ProjectDir != "" && !filepath.IsAbs(cfg.ProjectDir) {
		if abs, err := filepath.Abs(cfg.ProjectDir); err == nil {
			cfg.ProjectDir = abs
		}
	}

	return &cfg, nil
}
