// Package manifest reads dbt's compiled manifest.json — the alternative,
// richer edge source to internal/extract's SQL/YAML scan. Its JSON shape is
// decoded with plain encoding/json the way the teacher's loader package
// decodes its own structured sidecar data, since manifest.json is a fixed,
// well-documented schema rather than free-form YAML requiring strict-field
// validation.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/extract"
)

// MalformedError reports that manifest.json failed to parse or decode.
type MalformedError struct {
	Path string
	Msg  string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: malformed manifest: %s", e.Path, e.Msg)
}

type document struct {
	Nodes     map[string]rawNode     `json:"nodes"`
	Sources   map[string]rawSource   `json:"sources"`
	Exposures map[string]rawExposure `json:"exposures"`
}

type rawConfig struct {
	Materialized string `json:"materialized"`
}

type rawColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DataType    string `json:"data_type"`
}

type rawDependsOn struct {
	Nodes []string `json:"nodes"`
}

type rawNode struct {
	Name         string               `json:"name"`
	ResourceType string               `json:"resource_type"`
	Path         string               `json:"path"`
	Tags         []string             `json:"tags"`
	Description  string               `json:"description"`
	Config       rawConfig            `json:"config"`
	Columns      map[string]rawColumn `json:"columns"`
	DependsOn    rawDependsOn         `json:"depends_on"`
}

type rawSource struct {
	Name        string               `json:"name"`
	SourceName  string               `json:"source_name"`
	Description string               `json:"description"`
	Columns     map[string]rawColumn `json:"columns"`
}

type rawExposure struct {
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	DependsOn rawDependsOn `json:"depends_on"`
}

var resourceKinds = map[string]dag.Kind{
	"model":    dag.KindModel,
	"seed":     dag.KindSeed,
	"snapshot": dag.KindSnapshot,
	"test":     dag.KindTest,
	"analysis": dag.KindModel,
}

// Result mirrors extract.Result: nodes keyed by our internal id scheme and
// edges that still need phantom resolution, cycle detection, and adjacency
// construction by dag.Builder.
type Result struct {
	Nodes map[string]*dag.Node
	Edges []extract.Edge
}

// Load decodes a dbt manifest.json at path into the same node/edge shape
// internal/extract produces, translating the manifest's globally-unique
// node ids (e.g. "model.my_project.orders") into this system's bare-name /
// "source.<schema>.<table>" / "exposure.<name>" id scheme.
func Load(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &MalformedError{Path: path, Msg: err.Error()}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &MalformedError{Path: path, Msg: err.Error()}
	}

	result := &Result{Nodes: make(map[string]*dag.Node)}
	translate := make(map[string]string, len(doc.Nodes)+len(doc.Sources)+len(doc.Exposures))

	for uniqueID, n := range doc.Nodes {
		kind, ok := resourceKinds[n.ResourceType]
		if !ok {
			continue
		}
		translate[uniqueID] = n.Name
		result.Nodes[n.Name] = &dag.Node{
			ID:              n.Name,
			Name:            n.Name,
			Kind:            kind,
			Path:            n.Path,
			Tags:            n.Tags,
			Description:     n.Description,
			Materialization: materializationFor(kind, n.Config.Materialized),
			Columns:         convertColumns(n.Columns),
		}
	}

	for uniqueID, s := range doc.Sources {
		id := "source." + s.SourceName + "." + s.Name
		translate[uniqueID] = id
		result.Nodes[id] = &dag.Node{
			ID:          id,
			Name:        s.Name,
			Kind:        dag.KindSource,
			Description: s.Description,
			Columns:     convertColumns(s.Columns),
		}
	}

	for uniqueID, e := range doc.Exposures {
		id := "exposure." + e.Name
		translate[uniqueID] = id
		result.Nodes[id] = &dag.Node{ID: id, Name: e.Name, Kind: dag.KindExposure}
	}

	for uniqueID, n := range doc.Nodes {
		to, ok := translate[uniqueID]
		if !ok {
			continue
		}
		for _, dep := range n.DependsOn.Nodes {
			if from, ok := translate[dep]; ok {
				result.Edges = append(result.Edges, extract.Edge{From: from, To: to, Kind: dag.EdgeRef})
			}
		}
	}
	for uniqueID, e := range doc.Exposures {
		to, ok := translate[uniqueID]
		if !ok {
			continue
		}
		for _, dep := range e.DependsOn.Nodes {
			if from, ok := translate[dep]; ok {
				result.Edges = append(result.Edges, extract.Edge{From: from, To: to, Kind: dag.EdgeRef})
			}
		}
	}

	return result, nil
}

func materializationFor(kind dag.Kind, configured string) dag.Materialization {
	if configured != "" {
		return dag.Materialization(configured)
	}
	switch kind {
	case dag.KindSeed:
		return dag.MaterializationSeed
	case dag.KindSnapshot:
		return dag.MaterializationSnapshot
	default:
		return ""
	}
}

func convertColumns(cols map[string]rawColumn) []dag.Column {
	if len(cols) == 0 {
		return nil
	}
	out := make([]dag.Column, 0, len(cols))
	for _, c := range cols {
		out = append(out, dag.Column{Name: c.Name, Description: c.Description, Type: c.DataType})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
