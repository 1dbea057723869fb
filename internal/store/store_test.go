package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// createTestStore opens a fresh save game in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name, want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.want); err != nil {
			t.Error(err)
		}
	}
}

func TestMigrateToV1_AddsReservedColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE offers (
		id INTEGER PRIMARY KEY, driver_id INTEGER NOT NULL, team_id INTEGER NOT NULL,
		series_id INTEGER NOT NULL, salary INTEGER NOT NULL, length INTEGER NOT NULL, year INTEGER NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create old offers table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO offers VALUES (1, 2, 3, 4, 500, 2, 1950)`); err != nil {
		t.Fatalf("insert old offer: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() on old game failed: %v", err)
	}
	defer s.Close()

	ok, err := hasColumn(s.db, "offers", "reserved")
	if err != nil || !ok {
		t.Fatalf("reserved column missing after migration: ok=%v err=%v", ok, err)
	}
	var reserved bool
	if err := s.db.QueryRow(`SELECT reserved FROM offers WHERE id = 1`).Scan(&reserved); err != nil {
		t.Fatalf("query migrated offer: %v", err)
	}
	if reserved {
		t.Error("migrated offers hold no reservation")
	}
}

func TestQuery_ReadsMeta(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.db.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('seed', '9')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	rows, err := s.Query(ctx, `SELECT value FROM meta WHERE key = ?`, "seed")
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	defer rows.Close()

	if !rows.Next() {
		t.Fatal("expected one row")
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if value != "9" {
		t.Errorf("value = %q, want %q", value, "9")
	}
}
