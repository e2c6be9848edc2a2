// Package config layers CLI configuration the way the teacher's
// internal/cli/config/loader.go does: defaults, then an optional config
// file, then environment variables, then explicitly-set flags, each tier
// overriding the last via a shared koanf instance.
package config

// Config holds the dbt-lineage CLI's resolved options. Unlike the teacher's
// Config, there is no target/adapter/environment layer — this tool reads a
// dbt project, it does not connect to one.
type Config struct {
	ProjectDir       string `koanf:"project_dir"`
	ManifestPath     string `koanf:"manifest"`
	Selector         string `koanf:"selector"`
	UpstreamDepth    int    `koanf:"upstream_depth"`
	DownstreamDepth  int    `koanf:"downstream_depth"`
	Interactive      bool   `koanf:"interactive"`
	OutputFormat     string `koanf:"output"`
	IncludeTests     bool   `koanf:"include_tests"`
	IncludeSeeds     bool   `koanf:"include_seeds"`
	IncludeSnapshots bool   `koanf:"include_snapshots"`
	IncludeExposures bool   `koanf:"include_exposures"`
	Verbose          bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultProjectDir = "."
	DefaultUpstream   = 0
	DefaultDownstream = -1
	DefaultOutput     = "auto"
)
