package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScenarios = "../harness/testdata"

// quickScenario runs the club world for two days without golden output.
const quickScenario = `name: quick
description: "Two quiet days"
world: %s
days: 2
assertions:
  - type: final_state
    table: meta
    where: { key: date }
    expect: { value: "1950-01-03T00:00:00Z" }
`

// writeQuickScenario writes quickScenario into a temp dir and returns the dir.
func writeQuickScenario(t *testing.T) string {
	t.Helper()
	world, err := filepath.Abs(filepath.Join(testScenarios, "worlds", "club"))
	require.NoError(t, err)

	dir := t.TempDir()
	content := []byte(fmt.Sprintf(quickScenario, world))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quick.yaml"), content, 0644))
	return dir
}

func TestTestCommand_Passes(t *testing.T) {
	out, err := execute(t, "test", testScenarios, "--filter", "club_opening")

	require.NoError(t, err)
	assert.Contains(t, out, "✓ club_opening")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "test", testScenarios, "--filter", "club_opening")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)

	s := resp.Data.Scenarios[0]
	assert.True(t, s.Pass)
	assert.Equal(t, "match", s.Golden)
	assert.Equal(t, "1950-01-11", s.Date)
	assert.Len(t, s.Digest, 64)
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
}

func TestTestCommand_NoScenarios(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTestCommand_FilterMatchesNothing(t *testing.T) {
	out, err := execute(t, "test", testScenarios, "--filter", "endurance_*")

	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommand_UpdateThenMatch(t *testing.T) {
	dir := writeQuickScenario(t)

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ quick (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "quick.golden"))
	require.NoError(t, err)
	assert.Equal(t, `{"date":"1950-01-03","races":0,"scenario_name":"quick","standings":[]}`, string(golden))

	out, err = execute(t, "--format", "json", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"golden":"match"`)
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := writeQuickScenario(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "quick.golden"), []byte(`{}`), 0644))

	out, err := execute(t, "test", dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "E021")
	assert.Contains(t, out, "✗ quick")
	assert.Contains(t, out, "does not match golden file")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_BrokenScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0644))

	out, err := execute(t, "test", dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml", "notes.txt", "sub/c.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yml"),
		filepath.Join(dir, "sub", "c.yaml"),
	}, files)

	files, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Empty(t, files)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "club.golden"), goldenFilePath(filepath.Join("scenarios", "club.yaml")))
}
