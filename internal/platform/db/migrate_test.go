package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_indexes.sql", "CREATE INDEX x ON t(a);")
	writeFile(t, dir, "001_core.sql", "CREATE TABLE t(a INT);")
	writeFile(t, dir, "010_later.sql", "ALTER TABLE t ADD b INT;")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	versions := []int{migs[0].Version, migs[1].Version, migs[2].Version}
	if versions[0] != 1 || versions[1] != 2 || versions[2] != 10 {
		t.Errorf("expected versions [1 2 10], got %v", versions)
	}
	if migs[0].SQL != "CREATE TABLE t(a INT);" {
		t.Errorf("unexpected SQL for first migration: %q", migs[0].SQL)
	}
}

func TestLoadMigrations_SkipsNonNumericAndNonSQL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_core.sql", "SELECT 1;")
	writeFile(t, dir, "notes.txt", "not a migration")
	writeFile(t, dir, "abc_bad.sql", "SELECT 2;")
	writeFile(t, dir, "README.md", "docs")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migs))
	}
	if migs[0].Name != "001_core.sql" {
		t.Errorf("unexpected migration name: %s", migs[0].Name)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pgconn.PgError{Code: "23505"}
	if !IsUniqueViolation(uniqueErr) {
		t.Error("expected unique violation to be detected")
	}
	if !IsUniqueViolation(fmt.Errorf("insert appointment: %w", uniqueErr)) {
		t.Error("expected wrapped unique violation to be detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation should not count as unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error should not count as unique violation")
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(pgx.ErrNoRows) {
		t.Error("expected pgx.ErrNoRows to be detected")
	}
	if !IsNoRows(fmt.Errorf("get doctor: %w", pgx.ErrNoRows)) {
		t.Error("expected wrapped pgx.ErrNoRows to be detected")
	}
	if IsNoRows(errors.New("boom")) {
		t.Error("plain error should not count as no rows")
	}
}
