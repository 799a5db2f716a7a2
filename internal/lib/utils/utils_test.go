package utils

import (
	"bytes"
	"testing"

	"github.com/deppfellow/cla-admin/internal/database"
)

func TestPrintJSONKeepsColumnOrder(t *testing.T) {
	rec := database.NewRecord([]string{"username", "id"}, []any{"jdoe", int64(1)})

	var buf bytes.Buffer
	if err := PrintJSON(&buf, []database.Record{rec}); err != nil {
		t.Fatalf("PrintJSON: %v", err)
	}

	want := "[\n\t{\n\t\t\"username\": \"jdoe\",\n\t\t\"id\": 1\n\t}\n]\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestPrintJSONUnsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, func() {}); err == nil {
		t.Fatal("expected an error for a func value")
	}
}
