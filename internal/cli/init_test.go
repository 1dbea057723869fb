package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/paddock/internal/store"
)

func TestInit_CreatesGame(t *testing.T) {
	db := filepath.Join(t.TempDir(), "game.db")

	out, err := execute(t, "--db", db, "init", testWorld)

	require.NoError(t, err)
	assert.Equal(t, "✓ Created game run-cli starting 1949-01-01 (2 series, 3 teams, 6 drivers)\n", out)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	tables, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-cli", tables.Meta.RunID)
	assert.Equal(t, int64(7), tables.Meta.Seed)
	assert.Len(t, tables.Drivers, 6)
}

func TestInit_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "game.db")

	out, err := execute(t, "--db", db, "--format", "json", "init", testWorld)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		RunID  string     `json:"run_id"`
		Data   InitResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-cli", resp.RunID)
	assert.Equal(t, 3, resp.Data.Teams)
	assert.Len(t, resp.Data.Digest, 64)
}

func TestInit_RefusesExistingGame(t *testing.T) {
	db := newGame(t)

	out, err := execute(t, "--db", db, "init", testWorld)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeGameExists)
	assert.Contains(t, out, "--force")

	_, err = execute(t, "--db", db, "init", "--force", testWorld)
	require.NoError(t, err)
}

func TestInit_InvalidWorld(t *testing.T) {
	db := filepath.Join(t.TempDir(), "game.db")

	out, err := execute(t, "--db", db, "init", "../config/testdata/broken")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E101]")
}

func TestInit_WorldNotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "game.db")

	_, err := execute(t, "--db", db, "init", "/nonexistent/world")

	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
