package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockManager(t *testing.T, migrationsDir, seedsDir string) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewManager(db, migrationsDir, seedsDir), mock
}

func expectBookkeepingTables(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`create table if not exists schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`create table if not exists schema_seeds`).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestUpAppliesPendingMigration(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "0001_init.up.sql")
	body := "create table accounts (id text);\ncreate table sessions (id text);\n"
	if err := os.WriteFile(scriptPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	mgr, mock := newMockManager(t, dir, "")
	expectBookkeepingTables(mock)
	mock.ExpectQuery(`select name from schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectBegin()
	mock.ExpectExec(`create table accounts`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`create table sessions`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec(`insert into schema_migrations`).
		WithArgs("0001_init.up.sql", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := mgr.Up(context.Background()); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpSkipsAppliedMigration(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "0001_init.up.sql"), []byte("create table a (id text);"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	mgr, mock := newMockManager(t, dir, "")
	expectBookkeepingTables(mock)
	mock.ExpectQuery(`select name from schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("0001_init.up.sql"))

	if err := mgr.Up(context.Background()); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStatusListsHistory(t *testing.T) {
	mgr, mock := newMockManager(t, "", "")
	expectBookkeepingTables(mock)
	mock.ExpectQuery(`select name from schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("0001_init.up.sql").
			AddRow("0002_more.up.sql"))

	history, err := mgr.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(history) != 2 || history[0] != "0001_init.up.sql" {
		t.Fatalf("unexpected history: %v", history)
	}
}

func TestListScriptsFiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "0001_a.down.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	scripts, err := listScripts(dir, ".up.sql")
	if err != nil {
		t.Fatalf("listScripts: %v", err)
	}
	if len(scripts) != 2 || scripts[0].name != "0001_a.up.sql" || scripts[1].name != "0002_b.up.sql" {
		t.Fatalf("unexpected scripts: %+v", scripts)
	}

	scripts, err = listScripts(filepath.Join(dir, "missing"), ".sql")
	if err != nil || scripts != nil {
		t.Fatalf("expected empty result for missing dir, got %v, %v", scripts, err)
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("insert into t values ('a;b'); select 1;\n")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "insert into t values ('a;b');" {
		t.Fatalf("semicolon inside literal split: %q", stmts[0])
	}
}
