package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/paddock/internal/store"
)

func loadGame(t *testing.T, db string) (string, time.Time) {
	t.Helper()
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	tables, err := st.Load(context.Background())
	require.NoError(t, err)
	digest, err := st.StoredDigest(context.Background())
	require.NoError(t, err)
	return digest, tables.Meta.Date
}

func TestRun_AdvancesDays(t *testing.T) {
	db := newGame(t)

	out, err := execute(t, "--db", db, "run", "--days", "10")

	require.NoError(t, err)
	assert.Equal(t, "✓ Simulated 10 day(s) of run-cli: 1949-01-01 to 1949-01-11, 0 race(s)\n", out)
	_, date := loadGame(t, db)
	assert.Equal(t, time.Date(1949, time.January, 11, 0, 0, 0, 0, time.UTC), date)
}

func TestRun_ResumesAcrossInvocations(t *testing.T) {
	db := newGame(t)

	_, err := execute(t, "--db", db, "run", "--days", "3")
	require.NoError(t, err)
	out, err := execute(t, "--db", db, "run", "--days", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "1949-01-04 to 1949-01-06")
}

func TestRun_SameInputsSameGame(t *testing.T) {
	a, b := newGame(t), newGame(t)

	for _, db := range []string{a, b} {
		_, err := execute(t, "--db", db, "run", "--days", "500")
		require.NoError(t, err)
	}

	digestA, dateA := loadGame(t, a)
	digestB, dateB := loadGame(t, b)
	assert.Equal(t, dateA, dateB)
	assert.Equal(t, digestA, digestB)
}

func TestRun_RacesReported(t *testing.T) {
	db := newGame(t)

	out, err := execute(t, "--db", db, "--format", "json", "run", "--days", "500")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 500, resp.Data.Days)
	assert.Positive(t, resp.Data.Races, "spring 1950 races have been run")
	assert.False(t, resp.Data.Interrupted)
}

func TestRun_NoGame(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")

	out, err := execute(t, "--db", db, "run")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E009]")
}

func TestRun_InvalidDays(t *testing.T) {
	db := newGame(t)

	_, err := execute(t, "--db", db, "run", "--days", "0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeBadFlag)
}

func TestRun_WithDecisions(t *testing.T) {
	db := newGame(t)
	decisions := filepath.Join(t.TempDir(), "decisions.yaml")
	require.NoError(t, os.WriteFile(decisions, []byte("next_year:\n  2:\n    - {driver: 3, salary: 2000, length: 2}\n"), 0644))

	_, err := execute(t, "--db", db, "run", "--days", "5", "--decisions", decisions)

	require.NoError(t, err)
}

func TestRun_DecisionsNotFound(t *testing.T) {
	db := newGame(t)

	_, err := execute(t, "--db", db, "run", "--decisions", "/nonexistent/decisions.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestRun_TamperedGame(t *testing.T) {
	db := newGame(t)
	raw, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	_, err = raw.Exec(`UPDATE teams SET money = money + 1000000 WHERE id = 1`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	out, err := execute(t, "--db", db, "run")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E011]")
}
