package render

import (
	"encoding/json"
	"io"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

type jsonColumn struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

type jsonNode struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Kind            string       `json:"kind"`
	Path            string       `json:"path,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	Description     string       `json:"description,omitempty"`
	Materialization string       `json:"materialization,omitempty"`
	Columns         []jsonColumn `json:"columns,omitempty"`
	RunStatus       string       `json:"run_status,omitempty"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

type jsonDocument struct {
	SchemaVersion int        `json:"schema_version"`
	Nodes         []jsonNode `json:"nodes"`
	Edges         []jsonEdge `json:"edges"`
}

// renderJSON emits the {schema_version: 1, nodes, edges} document with
// every node attribute, for the -o json CLI output — matching the stable
// wire shape the impact and diff JSON payloads use.
func renderJSON(w io.Writer, sub *selector.SubGraph) error {
	doc := jsonDocument{SchemaVersion: 1}
	for _, n := range sub.Nodes() {
		doc.Nodes = append(doc.Nodes, toJSONNode(n))
	}
	for _, e := range sub.Edges() {
		doc.Edges = append(doc.Edges, jsonEdge{From: e.From, To: e.To, Kind: string(e.Kind)})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func toJSONNode(n *dag.Node) jsonNode {
	jn := jsonNode{
		ID:              n.ID,
		Name:            n.Name,
		Kind:            string(n.Kind),
		Path:            n.Path,
		Tags:            n.Tags,
		Description:     n.Description,
		Materialization: string(n.Materialization),
		RunStatus:       string(n.RunStatus),
	}
	for _, c := range n.Columns {
		jn.Columns = append(jn.Columns, jsonColumn{Name: c.Name, Description: c.Description, Type: c.Type})
	}
	return jn
}
