package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deppfellow/cla-admin/internal/config"
	"github.com/deppfellow/cla-admin/internal/database"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"status=approved", "course=EN 101", "isbn=", "expr=a=b"})
	if err != nil {
		t.Fatalf("parseParams: %v", err)
	}

	want := database.Params{"status": "approved", "course": "EN 101", "isbn": "", "expr": "a=b"}
	if len(params) != len(want) {
		t.Fatalf("got %v, want %v", params, want)
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("params[%q] = %v, want %q", k, params[k], v)
		}
	}

	for _, bad := range []string{"status", "=approved", " =x"} {
		if _, err := parseParams([]string{bad}); err == nil {
			t.Errorf("parseParams(%q) should fail", bad)
		}
	}
}

// setupCLI points the commands at a fresh sqlite database with one table.
func setupCLI(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("CLA_PRIMARY__ENV", "development")
	t.Setenv("CLA_DATABASE__ENGINE", config.EngineSQLite)
	t.Setenv("CLA_DATABASE__NAME", path)
	t.Setenv("CLA_DATABASE__PREFIX", "cla_")
	t.Setenv(config.EnvConfigFile, "")

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Engine: config.EngineSQLite, Name: path, Prefix: "cla_"}, database.Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE {extract} (id INTEGER PRIMARY KEY, title TEXT NOT NULL, status TEXT NOT NULL)`,
		`INSERT INTO {extract} (id, title, status) VALUES (1, 'First', 'approved')`,
		`INSERT INTO {extract} (id, title, status) VALUES (2, 'Second', 'pending')`,
		`INSERT INTO {extract} (id, title, status) VALUES (3, 'Third', 'approved')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Execute(ctx, stmt, nil); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// The persistent root flags are package level.
	configPath, verbosity = "", 0

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestRecordCommandsKeepTheirOwnFlags(t *testing.T) {
	records := newRecordsCmd()
	record := newRecordCmd()

	if err := records.Flags().Set("where", "status=approved"); err != nil {
		t.Fatalf("set where: %v", err)
	}
	if err := records.Flags().Set("by-id", "true"); err != nil {
		t.Fatalf("set by-id: %v", err)
	}

	where, err := record.Flags().GetStringArray("where")
	if err != nil {
		t.Fatalf("get where: %v", err)
	}
	if len(where) != 0 {
		t.Fatalf("record command sees the records filter: %v", where)
	}

	query := newQueryCmd()
	if byID, _ := query.Flags().GetBool("by-id"); byID {
		t.Fatal("query command sees the records --by-id flag")
	}
}

func TestRecordsCommand(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "records", "extract", "--where", "status=approved", "--fields", "id,title")
	if err != nil {
		t.Fatalf("records: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rows) != 2 || rows[0]["title"] != "First" || rows[1]["title"] != "Third" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if _, ok := rows[0]["status"]; ok {
		t.Fatalf("projection not applied: %v", rows[0])
	}
}

func TestRecordsByIDCommand(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "records", "extract", "--by-id", "--fields", "id,title")
	if err != nil {
		t.Fatalf("records --by-id: %v", err)
	}
	if !strings.HasPrefix(out, "{\n\t\"1\": {") {
		t.Fatalf("expected output keyed by id, got %q", out)
	}
}

func TestRecordCommand(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "record", "extract", "--where", "id=2")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.Contains(out, `"title": "Second"`) {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := runCLI(t, "record", "extract", "--where", "status=approved"); err == nil {
		t.Fatal("expected an ambiguous lookup error")
	}
	if _, err := runCLI(t, "record", "extract", "--where", "id=9"); err == nil {
		t.Fatal("expected a not found error")
	}
}

func TestFieldsetCommand(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "fieldset", "extract", "title", "--where", "status=approved")
	if err != nil {
		t.Fatalf("fieldset: %v", err)
	}

	var values []string
	if err := json.Unmarshal([]byte(out), &values); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(values) != 2 || values[0] != "First" || values[1] != "Third" {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestDeleteCommand(t *testing.T) {
	setupCLI(t)

	if _, err := runCLI(t, "delete", "extract"); err == nil {
		t.Fatal("delete without --where must fail")
	}

	out, err := runCLI(t, "delete", "extract", "--where", "status=pending")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if out != "deleted 1 record(s) from extract\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestQueryCommand(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "query", "SELECT id, title FROM {extract} WHERE status = :status", "--param", "status=pending")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.Contains(out, `"title": "Second"`) || strings.Contains(out, "First") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "cla dev") {
		t.Fatalf("unexpected output %q", out)
	}
}
