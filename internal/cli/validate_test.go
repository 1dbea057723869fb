package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidWorld(t *testing.T) {
	out, err := execute(t, "validate", testWorld)

	require.NoError(t, err)
	assert.Equal(t, "✓ World valid: starts 1949-01-01 with 2 series, 3 teams, 6 drivers, 6 parts\n", out)
}

func TestValidateValidWorldJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", testWorld)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Tracks+resp.Data.Manufacturers)
	assert.Equal(t, 2, resp.Data.Rules)
}

func TestValidateNonExistentWorld(t *testing.T) {
	out, err := execute(t, "validate", "/nonexistent/directory/path")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, err := execute(t, "validate", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
}

func TestValidateSchemaErrorJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", "../config/testdata/broken")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E101", resp.Error.Code)
}

func TestValidateReferenceError(t *testing.T) {
	dir := t.TempDir()
	world := `package world

start: "1950-01-01"
teams: [{id: 1, name: "Orphans", series_id: 3, founded_year: 1950}]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world.cue"), []byte(world), 0644))

	out, err := execute(t, "validate", dir)

	require.Error(t, err)
	assert.Contains(t, out, "Error [E102]")
	assert.Contains(t, out, "team 1 references unknown series 3")
}

func TestValidateWithDecisions(t *testing.T) {
	decisions := filepath.Join(t.TempDir(), "decisions.yaml")
	require.NoError(t, os.WriteFile(decisions, []byte("drivers:\n  2:\n    - {driver: 3, salary: 900, length: 1}\nparts:\n  2:\n    - {part: 1, length: 2}\n"), 0644))

	out, err := execute(t, "validate", "--decisions", decisions, testWorld)

	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 decision(s) readable")
}

func TestValidateBadDecisions(t *testing.T) {
	decisions := filepath.Join(t.TempDir(), "decisions.yaml")
	require.NoError(t, os.WriteFile(decisions, []byte("drivers: [1, 2\n"), 0644))

	_, err := execute(t, "validate", "--decisions", decisions, testWorld)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "E110")
}
