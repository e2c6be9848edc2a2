package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// buildSimpleProject materializes the same staging/marts fixture used by
// the graphbuild package's tests: three staging models over sources, two
// marts downstream.
func buildSimpleProject(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dbt_project.yml"), "name: simple_project\n")
	writeFile(t, filepath.Join(root, "models", "staging", "stg_customers.sql"), `select * from {{ source('raw', 'customers') }}`)
	writeFile(t, filepath.Join(root, "models", "staging", "stg_orders.sql"), `select * from {{ source('raw', 'orders') }}`)
	writeFile(t, filepath.Join(root, "models", "staging", "stg_payments.sql"), `select * from {{ source('raw', 'payments') }}`)
	writeFile(t, filepath.Join(root, "models", "marts", "orders.sql"), `
select * from {{ ref('stg_orders') }} o
join {{ ref('stg_payments') }} p on o.id = p.order_id
`)
	writeFile(t, filepath.Join(root, "models", "marts", "customers.sql"), `
select * from {{ ref('stg_customers') }} c
join {{ ref('orders') }} o on c.id = o.customer_id
`)
	return root
}

// withProjectDirFlags registers the persistent flags newCommandContext
// expects on cmd.Root() (normally supplied by the real root command) and
// points project-dir at root, marking it Changed so config.Load's
// only-changed-flags-override rule picks it up.
func withProjectDirFlags(t *testing.T, cmd *cobra.Command, root string) {
	t.Helper()
	cmd.Root().PersistentFlags().String("project-dir", ".", "")
	cmd.Root().PersistentFlags().String("config", "", "")
	cmd.Root().PersistentFlags().String("manifest", "", "")
	require.NoError(t, cmd.Root().PersistentFlags().Set("project-dir", root))
}

func TestRunImpact_JSONOutput(t *testing.T) {
	root := buildSimpleProject(t)

	cmd := NewImpactCommand()
	withProjectDirFlags(t, cmd, root)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	require.NoError(t, runImpact(cmd, "stg_orders", "json"))

	var got impactJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got.SchemaVersion)
	assert.Equal(t, "stg_orders", got.Root)
	assert.Contains(t, got.Reached, "orders")
	assert.Contains(t, got.Reached, "customers")
}

func TestRunImpact_UnknownRootErrors(t *testing.T) {
	root := buildSimpleProject(t)

	cmd := NewImpactCommand()
	withProjectDirFlags(t, cmd, root)
	cmd.SetOut(new(bytes.Buffer))

	err := runImpact(cmd, "does_not_exist", "text")
	assert.Error(t, err)
}

func TestNewDiffCommand_RequiresBaseFlag(t *testing.T) {
	cmd := NewDiffCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}
