package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario file next to an empty world directory.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "world"), 0755))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: opening
description: "Opening day"
world: world
days: 5
run_id: fixed-run
decisions:
  - day: 0
    drivers:
      1: [{driver: 3, salary: 1500, length: 2}]
  - day: 3
    parts:
      1: [{part: 7, length: 1}]
assertions:
  - type: row_count
    table: races
    count: 0
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "opening", scenario.Name)
	assert.Equal(t, 5, scenario.Days)
	assert.Equal(t, "fixed-run", scenario.RunID)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "world"), scenario.World, "world resolves against the scenario file")
	require.Len(t, scenario.Decisions, 2)
	assert.Equal(t, 3, scenario.Decisions[0].Drivers[1][0].DriverID)
	assert.Equal(t, 1500, scenario.Decisions[0].Drivers[1][0].Salary)
	assert.Equal(t, 3, scenario.Decisions[1].Day)
	assert.Equal(t, 7, scenario.Decisions[1].Parts[1][0].PartID)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertRowCount, scenario.Assertions[0].Type)
}

func TestLoadScenario_Testdata(t *testing.T) {
	for _, name := range []string{"club_opening", "club_season"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", name+".yaml"))
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "golden files are named after the scenario")
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Misspelled key"
world: world
days: 1
assertion:
  - type: row_count
    table: races
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: "x"
world: world
days: 1
assertions: [{type: row_count, table: races}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: x
world: world
days: 1
assertions: [{type: row_count, table: races}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing world",
			content: `
name: x
description: "x"
days: 1
assertions: [{type: row_count, table: races}]
`,
			wantErr: "world is required",
		},
		{
			name: "world not found",
			content: `
name: x
description: "x"
world: elsewhere
days: 1
assertions: [{type: row_count, table: races}]
`,
			wantErr: "world not found",
		},
		{
			name: "no days",
			content: `
name: x
description: "x"
world: world
assertions: [{type: row_count, table: races}]
`,
			wantErr: "days must be at least 1",
		},
		{
			name: "no assertions",
			content: `
name: x
description: "x"
world: world
days: 1
`,
			wantErr: "assertions list is required",
		},
		{
			name: "decision after last day",
			content: `
name: x
description: "x"
world: world
days: 2
decisions: [{day: 2}]
assertions: [{type: row_count, table: races}]
`,
			wantErr: "decisions[0]: day 2 outside 0..1",
		},
		{
			name: "decisions out of order",
			content: `
name: x
description: "x"
world: world
days: 5
decisions: [{day: 3}, {day: 3}]
assertions: [{type: row_count, table: races}]
`,
			wantErr: "decisions[1]: days must be strictly increasing",
		},
		{
			name: "final_state without expect",
			content: `
name: x
description: "x"
world: world
days: 1
assertions: [{type: final_state, table: teams, where: {id: 1}}]
`,
			wantErr: "expect is required for final_state",
		},
		{
			name: "assertion without table",
			content: `
name: x
description: "x"
world: world
days: 1
assertions: [{type: min_rows, count: 1}]
`,
			wantErr: "assertions[0]: table is required",
		},
		{
			name: "negative count",
			content: `
name: x
description: "x"
world: world
days: 1
assertions: [{type: row_count, table: races, count: -1}]
`,
			wantErr: "count must be non-negative",
		},
		{
			name: "unknown assertion type",
			content: `
name: x
description: "x"
world: world
days: 1
assertions: [{type: trace_contains, table: races}]
`,
			wantErr: `unknown assertion type "trace_contains"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
