package migration

import (
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/ktrou69-commits/energy-coins/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mapFS(files map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, content := range files {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return n == 1
}

func TestGetCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{"001_test.sql": "CREATE TABLE test (id INTEGER);"}), DriverSQLite)

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	version, err = runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		wantVersion []int
		wantErr     string
	}{
		{
			name: "sorted by version",
			files: map[string]string{
				"003_posts.sql":  "CREATE TABLE posts (id INTEGER);",
				"001_init.sql":   "CREATE TABLE users (id INTEGER);",
				"002_update.sql": "ALTER TABLE users ADD COLUMN name TEXT;",
				"README.md":      "ignored",
			},
			wantVersion: []int{1, 2, 3},
		},
		{
			name:    "missing underscore",
			files:   map[string]string{"001init.sql": "SELECT 1;"},
			wantErr: "invalid migration filename format",
		},
		{
			name:    "version zero",
			files:   map[string]string{"000_init.sql": "SELECT 1;"},
			wantErr: "version must be at least 1",
		},
		{
			name:    "non numeric version",
			files:   map[string]string{"abc_init.sql": "SELECT 1;"},
			wantErr: "invalid version number",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_init.sql":  "SELECT 1;",
				"001_other.sql": "SELECT 2;",
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), mapFS(tt.files), DriverSQLite)
			got, err := runner.ReadMigrationFiles()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ReadMigrationFiles() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadMigrationFiles() error = %v", err)
			}
			if len(got) != len(tt.wantVersion) {
				t.Fatalf("got %d migrations, want %d", len(got), len(tt.wantVersion))
			}
			for i, m := range got {
				if m.Version != tt.wantVersion[i] {
					t.Errorf("migration[%d].Version = %d, want %d", i, m.Version, tt.wantVersion[i])
				}
			}
			if got[0].Name != "init" {
				t.Errorf("migration[0].Name = %q, want init", got[0].Name)
			}
		})
	}
}

func TestApplyMigrationsFromScratch(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_init.sql":  "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
		"002_posts.sql": "CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER, content TEXT);",
	}), DriverSQLite)

	var logged []string
	count, err := runner.ApplyMigrations(func(s string) { logged = append(logged, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 migrations applied, got %d", count)
	}
	if len(logged) == 0 {
		t.Error("ApplyMigrations did not report progress")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil || version != 2 {
		t.Errorf("GetCurrentVersion() = %d, %v; want 2", version, err)
	}
	if !tableExists(t, db, "users") || !tableExists(t, db, "posts") {
		t.Error("migration tables were not created")
	}
}

func TestApplyMigrationsIncremental(t *testing.T) {
	db := setupTestDB(t)
	files := mapFS(map[string]string{"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);"})
	runner := NewRunner(db, files, DriverSQLite)

	if count, err := runner.ApplyMigrations(nil); err != nil || count != 1 {
		t.Fatalf("ApplyMigrations (1st) = %d, %v", count, err)
	}
	if count, err := runner.ApplyMigrations(nil); err != nil || count != 0 {
		t.Fatalf("ApplyMigrations (no-op) = %d, %v", count, err)
	}

	files["002_posts.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE posts (id INTEGER PRIMARY KEY);")}
	if count, err := runner.ApplyMigrations(nil); err != nil || count != 1 {
		t.Fatalf("ApplyMigrations (2nd) = %d, %v", count, err)
	}
	if version, _ := runner.GetCurrentVersion(); version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_init.sql": `
			CREATE TABLE users (id INTEGER PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	}), DriverSQLite)

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after failed migration, got %d", version)
	}
	if tableExists(t, db, "users") {
		t.Error("table should not exist after failed migration")
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);",
	}), DriverSQLite)

	if err := runner.SetVersion(10); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.ValidateVersion(); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("ValidateVersion() error = %v, want ErrSchemaTooNew", err)
	}
	if _, err := runner.ApplyMigrations(nil); !errors.Is(err, ErrSchemaTooNew) {
		t.Errorf("ApplyMigrations() error = %v, want ErrSchemaTooNew", err)
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	db := setupTestDB(t)
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}
	runner := NewRunner(db, sub, DriverSQLite)

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	for _, table := range []string{"settings", "days", "actions", "action_history"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s was not created", table)
		}
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() error = %v", err)
	}
}

func TestInsertVersionSQL(t *testing.T) {
	if got := NewRunner(nil, nil, DriverPostgres).insertVersionSQL(); !strings.Contains(got, "$1") {
		t.Errorf("postgres insert = %q, want $1 placeholder", got)
	}
	if got := NewRunner(nil, nil, DriverSQLite).insertVersionSQL(); !strings.Contains(got, "?") {
		t.Errorf("sqlite insert = %q, want ? placeholder", got)
	}
}
