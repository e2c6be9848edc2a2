package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectYAML(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dbt_project.yml"), []byte(body), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeProjectYAML(t, dir, "name: simple_project\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"models"}, cfg.ModelPaths)
	assert.Equal(t, []string{"seeds"}, cfg.SeedPaths)
	assert.Equal(t, []string{"snapshots"}, cfg.SnapshotPaths)
	assert.Equal(t, dir, cfg.Root)
}

func TestLoad_ExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	writeProjectYAML(t, dir, "name: simple_project\nmodel-paths: [\"mymodels\"]\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"mymodels"}, cfg.ModelPaths)
}

func TestLoad_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	require.Error(t, err)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestLoad_MalformedMissingName(t *testing.T) {
	dir := t.TempDir()
	writeProjectYAML(t, dir, "model-paths: [\"models\"]\n")

	_, err := Load(dir)
	require.Error(t, err)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeProjectYAML(t, dir, "name: [this is not a scalar\n")

	_, err := Load(dir)
	require.Error(t, err)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestLocate_FindsUpward(t *testing.T) {
	root := t.TempDir()
	writeProjectYAML(t, root, "name: simple_project\n")

	nested := filepath.Join(root, "models", "staging")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := Locate(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestLocate_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := Locate(dir)
	require.Error(t, err)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSourceDirs_SkipsMissing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "models"), 0o755))

	cfg := &Config{Root: root, ModelPaths: []string{"models"}, SeedPaths: []string{"seeds"}}
	dirs := cfg.SourceDirs()
	require.Len(t, dirs, 1)
	assert.Equal(t, filepath.Join(root, "models"), dirs[0])
}
