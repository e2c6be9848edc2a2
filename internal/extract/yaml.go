package extract

import (
	"os"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
)

type yamlFile struct {
	Sources   []yamlSource   `yaml:"sources"`
	Models    []yamlModel    `yaml:"models"`
	Exposures []yamlExposure `yaml:"exposures"`
}

type yamlSource struct {
	Name   string      `yaml:"name"`
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Columns     []yamlColumn `yaml:"columns"`
}

type yamlColumn struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	DataType    string `yaml:"data_type"`
}

type yamlModel struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Tags        []string     `yaml:"tags"`
	Columns     []yamlColumn `yaml:"columns"`
}

type yamlExposure struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	DependsOn []string `yaml:"depends_on"`
}

func convertColumns(cols []yamlColumn) []dag.Column {
	out := make([]dag.Column, 0, len(cols))
	for _, c := range cols {
		out = append(out, dag.Column{Name: c.Name, Description: normalizeDescription(c.Description), Type: c.DataType})
	}
	return out
}

// normalizeDescription converts a legacy dbt docs-block description (which
// may embed raw HTML, e.g. "<p>orders <b>staged</b></p>") into Markdown so
// every renderer downstream can treat Description as plain prose. A
// description with no HTML tags is passed through unchanged, since
// converting it would just be a lossy round-trip.
func normalizeDescription(desc string) string {
	if !strings.ContainsAny(desc, "<>") {
		return desc
	}
	md, err := htmltomarkdown.ConvertString(desc)
	if err != nil {
		return desc
	}
	return strings.TrimSpace(md)
}

func extractYAMLFile(path string, result *Result) {
	raw, err := os.ReadFile(path)
	if err != nil {
		result.warn(path, err)
		return
	}

	var doc yamlFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		result.warn(path, err)
		return
	}

	for _, src := range doc.Sources {
		for _, tbl := range src.Tables {
			id := "source." + src.Name + "." + tbl.Name
			result.addNode(&dag.Node{
				ID:          id,
				Name:        tbl.Name,
				Kind:        dag.KindSource,
				Path:        path,
				Description: normalizeDescription(tbl.Description),
				Columns:     convertColumns(tbl.Columns),
			})
		}
	}

	for _, m := range doc.Models {
		result.addNode(&dag.Node{
			ID:          m.Name,
			Name:        m.Name,
			Kind:        dag.KindModel,
			Path:        path,
			Description: normalizeDescription(m.Description),
			Tags:        m.Tags,
			Columns:     convertColumns(m.Columns),
		})
	}

	for _, exp := range doc.Exposures {
		id := "exposure." + exp.Name
		result.addNode(&dag.Node{ID: id, Name: exp.Name, Kind: dag.KindExposure, Path: path})
		for _, dep := range exp.DependsOn {
			if target, ok := parseDependsOnRef(dep); ok {
				result.addEdge(target, id, dag.EdgeRef)
			}
		}
	}
}

// parseDependsOnRef extracts the model name out of an exposure's
// depends_on entry, which dbt convention writes as a jinja ref() call
// (e.g. "ref('orders')") rather than a bare model name.
func parseDependsOnRef(dep string) (string, bool) {
	m := refPattern.FindStringSubmatch(dep)
	if m == nil {
		return dep, dep != ""
	}
	if m[2] != "" {
		return m[2], true
	}
	return m[1], true
}
