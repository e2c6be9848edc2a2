// Package project locates a dbt project root and reads its dbt_project.yml
// configuration, the way internal/cli/config/loader.go infers a project root
// and loads layered configuration in the teacher repo.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the subset of dbt_project.yml this system reads. Unknown keys
// are ignored — this is project data, not tool config, and dbt's schema is
// far larger than what graph construction needs.
type Config struct {
	Name           string   `yaml:"name"`
	ModelPaths     []string `yaml:"model-paths"`
	SeedPaths      []string `yaml:"seed-paths"`
	SnapshotPaths  []string `yaml:"snapshot-paths"`
	AnalysisPaths  []string `yaml:"analysis-paths"`
	Root           string   `yaml:"-"`
}

var defaultConfig = Config{
	ModelPaths:    []string{"models"},
	SeedPaths:     []string{"seeds"},
	SnapshotPaths: []string{"snapshots"},
}

// NotFoundError reports that no dbt_project.yml was found at dir.
type NotFoundError struct {
	Dir string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no dbt_project.yml found in %s", e.Dir)
}

// MalformedError reports that dbt_project.yml exists but is missing a
// required key or failed to parse.
type MalformedError struct {
	Path string
	Msg  string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: malformed dbt_project.yml: %s", e.Path, e.Msg)
}

// Load reads <dir>/dbt_project.yml, applies defaults for any path list left
// unset, and returns the resolved Config. dir is used as-is; callers that
// want upward discovery should call Locate first.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "dbt_project.yml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Dir: dir}
		}
		return nil, &MalformedError{Path: path, Msg: err.Error()}
	}

	cfg := Config{}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, &MalformedError{Path: path, Msg: err.Error()}
	}
	if cfg.Name == "" {
		return nil, &MalformedError{Path: path, Msg: "missing required key \"name\""}
	}

	if len(cfg.ModelPaths) == 0 {
		cfg.ModelPaths = defaultConfig.ModelPaths
	}
	if len(cfg.SeedPaths) == 0 {
		cfg.SeedPaths = defaultConfig.SeedPaths
	}
	if len(cfg.SnapshotPaths) == 0 {
		cfg.SnapshotPaths = defaultConfig.SnapshotPaths
	}
	cfg.Root = dir

	return &cfg, nil
}

// Locate walks upward from start looking for dbt_project.yml, the way
// internal/cli/config/loader.go's findProjectRootUpward anchors on a marker
// file. It stops at the first directory containing the file, or returns
// NotFoundError once it reaches the filesystem root.
func Locate(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "dbt_project.yml")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &NotFoundError{Dir: start}
		}
		dir = parent
	}
}

// SourceDirs returns the absolute model, seed, snapshot, and analysis
// directories declared by the config, skipping any that don't exist on
// disk.
func (c *Config) SourceDirs() []string {
	var dirs []string
	for _, group := range [][]string{c.ModelPaths, c.SeedPaths, c.SnapshotPaths, c.AnalysisPaths} {
		for _, p := range group {
			abs := filepath.Join(c.Root, p)
			if info, err := os.Stat(abs); err == nil && info.IsDir() {
				dirs = append(dirs, abs)
			}
		}
	}
	return dirs
}
