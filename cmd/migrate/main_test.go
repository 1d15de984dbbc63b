package main

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("unexpected error loading embedded migrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "create_analyses" {
		t.Fatalf("unexpected first migration: %d %s", migrations[0].Version, migrations[0].Name)
	}
	if migrations[1].Version != 2 || migrations[1].Name != "add_intent_index" {
		t.Fatalf("unexpected second migration: %d %s", migrations[1].Version, migrations[1].Name)
	}
	if migrations[0].UpSQL == "" || migrations[0].DownSQL == "" {
		t.Fatal("expected non-empty up/down sql for first migration")
	}
	if !strings.Contains(migrations[0].UpSQL, "CREATE TABLE IF NOT EXISTS analyses") {
		t.Fatal("expected first migration to create the analyses table")
	}
}

func TestLoadMigrationsRejectsInvalidNames(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0001-bad-name.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
	}
	if _, err := loadMigrations(fsys); err == nil {
		t.Fatal("expected error for invalid migration filename")
	}
}

func TestLoadMigrationsRequiresBothDirections(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0001_create_analyses.up.sql": &fstest.MapFile{Data: []byte("CREATE TABLE analyses (id BIGSERIAL);")},
	}
	if _, err := loadMigrations(fsys); err == nil {
		t.Fatal("expected error for missing down migration")
	}
}

func TestStatusLines(t *testing.T) {
	migrations := []migration{
		{Version: 1, Name: "create_analyses"},
		{Version: 2, Name: "add_intent_index"},
	}
	applied := map[int64]struct{}{1: {}}

	lines := statusLines(migrations, applied)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "create_analyses") || !strings.Contains(lines[0], "applied") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "add_intent_index") || !strings.Contains(lines[1], "pending") {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
}
