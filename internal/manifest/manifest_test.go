package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
)

const sampleManifest = `{
  "nodes": {
    "model.simple_project.stg_orders": {
      "name": "stg_orders",
      "resource_type": "model",
      "path": "staging/stg_orders.sql",
      "tags": [],
      "description": "",
      "config": {"materialized": "view"},
      "columns": {},
      "depends_on": {"nodes": ["source.simple_project.raw.orders"]}
    },
    "model.simple_project.orders": {
      "name": "orders",
      "resource_type": "model",
      "path": "marts/orders.sql",
      "tags": ["finance"],
      "description": "order facts",
      "config": {"materialized": "table"},
      "columns": {
        "total_amount": {"name": "total_amount", "description": "", "data_type": "numeric"}
      },
      "depends_on": {"nodes": ["model.simple_project.stg_orders"]}
    }
  },
  "sources": {
    "source.simple_project.raw.orders": {
      "name": "orders",
      "source_name": "raw",
      "description": "raw orders table",
      "columns": {}
    }
  },
  "exposures": {
    "exposure.simple_project.weekly_report": {
      "name": "weekly_report",
      "type": "dashboard",
      "depends_on": {"nodes": ["model.simple_project.orders"]}
    }
  }
}`

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_TranslatesIDsAndEdges(t *testing.T) {
	path := writeManifest(t, sampleManifest)

	result, err := Load(path)
	require.NoError(t, err)

	require.Contains(t, result.Nodes, "stg_orders")
	require.Contains(t, result.Nodes, "orders")
	require.Contains(t, result.Nodes, "source.raw.orders")
	require.Contains(t, result.Nodes, "exposure.weekly_report")

	orders := result.Nodes["orders"]
	assert.Equal(t, dag.MaterializationTable, orders.Materialization)
	assert.Equal(t, []string{"finance"}, orders.Tags)
	require.Len(t, orders.Columns, 1)
	assert.Equal(t, "total_amount", orders.Columns[0].Name)

	var found int
	for _, e := range result.Edges {
		switch {
		case e.From == "source.raw.orders" && e.To == "stg_orders":
			found++
		case e.From == "stg_orders" && e.To == "orders":
			found++
		case e.From == "orders" && e.To == "exposure.weekly_report":
			found++
		}
	}
	assert.Equal(t, 3, found)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeManifest(t, `{not valid json`)
	_, err := Load(path)
	require.Error(t, err)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
}
