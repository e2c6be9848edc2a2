// Package extract discovers dbt SQL and YAML source files and extracts the
// node/edge information that feeds the graph builder (internal/dag), the
// way the teacher's frontmatter loader (internal/loader/frontmatter.go)
// regex-extracts structured data out of source files before handing it to
// a stricter typed parse.
package extract

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/project"
)

// Edge is a dependency edge discovered by extraction, not yet attached to a
// Graph.
type Edge struct {
	From string
	To   string
	Kind dag.EdgeKind
}

// Warning records a per-file extraction failure. Per the error design,
// these are never fatal — the offending file is skipped and its node (if
// any was already known) is preserved without the metadata that file would
// have contributed.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Result accumulates nodes and edges across every file walked by
// ExtractProject, ready for the caller to hand node-by-node to a
// dag.Builder.
type Result struct {
	Nodes    map[string]*dag.Node
	Edges    []Edge
	Warnings []Warning
}

func newResult() *Result {
	return &Result{Nodes: make(map[string]*dag.Node)}
}

// addNode inserts n, or merges n's non-empty fields into an existing node
// additively (two files contributing to the same id, e.g. a model's .sql
// file and its schema.yml sidecar entry, never overwrite what the other
// already set).
func (r *Result) addNode(n *dag.Node) {
	existing, ok := r.Nodes[n.ID]
	if !ok {
		cp := *n
		r.Nodes[n.ID] = &cp
		return
	}
	if existing.Path == "" {
		existing.Path = n.Path
	}
	if existing.Description == "" {
		existing.Description = n.Description
	}
	if len(existing.Columns) == 0 && len(n.Columns) > 0 {
		existing.Columns = n.Columns
	}
	if len(n.Tags) > 0 {
		existing.Tags = mergeTags(existing.Tags, n.Tags)
	}
	if existing.Kind == "" {
		existing.Kind = n.Kind
	}
}

func mergeTags(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, t := range a {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range b {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func (r *Result) addEdge(from, to string, kind dag.EdgeKind) {
	r.Edges = append(r.Edges, Edge{From: from, To: to, Kind: kind})
}

func (r *Result) warn(path string, err error) {
	r.Warnings = append(r.Warnings, Warning{Path: path, Err: err})
	slog.Warn("extract: skipping file", "path", path, "error", err)
}

// ExtractProject walks every source directory named in cfg and extracts
// nodes and edges from its .sql and .yml/.yaml files.
func ExtractProject(cfg *project.Config) (*Result, error) {
	result := newResult()

	groups := []struct {
		paths []string
		kind  dag.Kind
	}{
		{cfg.ModelPaths, dag.KindModel},
		{cfg.SeedPaths, dag.KindSeed},
		{cfg.SnapshotPaths, dag.KindSnapshot},
		{cfg.AnalysisPaths, dag.KindModel},
	}

	for _, g := range groups {
		for _, p := range g.paths {
			dir := filepath.Join(cfg.Root, p)
			if _, err := os.Stat(dir); err != nil {
				continue
			}
			if err := walkDir(dir, g.kind, result); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

func walkDir(dir string, kind dag.Kind, result *Result) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.warn(path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".sql":
			extractSQLFile(path, kind, result)
		case ".yml", ".yaml":
			extractYAMLFile(path, result)
		}
		return nil
	})
}

var (
	refPattern    = regexp.MustCompile(`ref\(\s*['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?\s*\)`)
	sourcePattern = regexp.MustCompile(`source\(\s*['"]([^'"]+)['"]\s*,\s*['"]([^'"]+)['"]\s*\)`)
)

func extractSQLFile(path string, kind dag.Kind, result *Result) {
	raw, err := os.ReadFile(path)
	if err != nil {
		result.warn(path, err)
		return
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	result.addNode(&dag.Node{ID: stem, Name: stem, Kind: kind, Path: path})

	cleaned := StripComments(string(raw))

	for _, m := range refPattern.FindAllStringSubmatch(cleaned, -1) {
		target := m[1]
		if m[2] != "" {
			target = m[2]
		}
		result.addEdge(target, stem, dag.EdgeRef)
	}

	for _, m := range sourcePattern.FindAllStringSubmatch(cleaned, -1) {
		schema, table := m[1], m[2]
		sourceID := "source." + schema + "." + table
		result.addNode(&dag.Node{ID: sourceID, Name: table, Kind: dag.KindSource})
		result.addEdge(sourceID, stem, dag.EdgeSource)
	}
}

// StripComments removes "--" line comments and "/* ... */" block comments
// from SQL text, leaving comment markers inside quoted string literals
// untouched.
func StripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	var stringQuote byte
	inLineComment := false
	inBlockComment := false

	data := []byte(src)
	n := len(data)
	for i := 0; i < n; i++ {
		c := data[i]

		if inLineComment {
			if c == '\n' {
				inLineComment = false
				b.WriteByte(c)
			}
			continue
		}
		if inBlockComment {
			if c == '*' && i+1 < n && data[i+1] == '/' {
				inBlockComment = false
				i++
			}
			continue
		}
		if stringQuote != 0 {
			b.WriteByte(c)
			if c == stringQuote {
				stringQuote = 0
			}
			continue
		}
		if c == '\'' || c == '"' {
			stringQuote = c
			b.WriteByte(c)
			continue
		}
		if c == '-' && i+1 < n && data[i+1] == '-' {
			inLineComment = true
			i++
			continue
		}
		if c == '/' && i+1 < n && data[i+1] == '*' {
			inBlockComment = true
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
