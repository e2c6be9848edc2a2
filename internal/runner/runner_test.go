package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_PrefersUvWhenProjectIsUvManaged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uv.lock"), []byte(""), 0o644))

	fakeBin := t.TempDir()
	writeExecutable(t, filepath.Join(fakeBin, "uv"))
	writeExecutable(t, filepath.Join(fakeBin, "dbt"))
	t.Setenv("PATH", fakeBin)

	cmd, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "dbt"}, cmd.Args)
}

func TestDetect_FallsBackToBareDbt(t *testing.T) {
	dir := t.TempDir()

	fakeBin := t.TempDir()
	writeExecutable(t, filepath.Join(fakeBin, "dbt"))
	t.Setenv("PATH", fakeBin)

	cmd, err := Detect(dir)
	require.NoError(t, err)
	assert.Nil(t, cmd.Args)
	assert.Contains(t, cmd.Path, "dbt")
}

func TestDetect_FallsBackToUvWhenNoDbtOnPath(t *testing.T) {
	dir := t.TempDir()

	fakeBin := t.TempDir()
	writeExecutable(t, filepath.Join(fakeBin, "uv"))
	t.Setenv("PATH", fakeBin)

	cmd, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "dbt"}, cmd.Args)
}

func TestDetect_NotFound(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PATH", t.TempDir())

	_, err := Detect(dir)
	require.Error(t, err)
	var notFound *RunnerNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRingBuffer_EvictsOldestBeyondCapacity(t *testing.T) {
	buf := NewRingBuffer(3)
	buf.Push("a")
	buf.Push("b")
	buf.Push("c")
	buf.Push("d")

	assert.Equal(t, []string{"b", "c", "d"}, buf.Lines())
}

func TestRingBuffer_SubscribeReceivesPushedLines(t *testing.T) {
	buf := NewRingBuffer(10)
	ch, cancel := buf.Subscribe()
	defer cancel()

	buf.Push("line one")
	buf.Push("line two")

	assert.Equal(t, "line one", <-ch)
	assert.Equal(t, "line two", <-ch)
}

func TestRingBuffer_CancelClosesChannel(t *testing.T) {
	buf := NewRingBuffer(10)
	ch, cancel := buf.Subscribe()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
}

func TestRingBuffer_CancelledSubscriberDoesNotReceiveFurtherPushes(t *testing.T) {
	buf := NewRingBuffer(10)
	_, cancel := buf.Subscribe()
	cancel()

	buf.Push("after cancel")
	assert.Equal(t, []string{"after cancel"}, buf.Lines())
}

func TestLoadRunResults_ParsesDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run_results.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"generated_at": "2026-08-03T00:00:00Z",
		"results": [{"unique_id": "model.simple_project.orders", "status": "success", "execution_time": 1.5}]
	}`), 0o644))

	doc, err := LoadRunResults(path)
	require.NoError(t, err)
	require.Len(t, doc.Results, 1)
	assert.Equal(t, "success", doc.Results[0].Status)
}

func TestLoadRunResults_MissingFile(t *testing.T) {
	_, err := LoadRunResults(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestIsOutdated_ComparesAgainstMtime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.sql")
	require.NoError(t, os.WriteFile(path, []byte("select 1"), 0o644))

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assert.True(t, IsOutdated(path, past))
	assert.False(t, IsOutdated(path, future))
}

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
}
