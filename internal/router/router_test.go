package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/deppfellow/cla-admin/internal/config"
	"github.com/deppfellow/cla-admin/internal/database"
	"github.com/deppfellow/cla-admin/internal/errs"
	"github.com/deppfellow/cla-admin/internal/handler"
	"github.com/deppfellow/cla-admin/internal/presentation"
	"github.com/deppfellow/cla-admin/internal/repository"
	"github.com/deppfellow/cla-admin/internal/server"
	"github.com/deppfellow/cla-admin/internal/service"
)

var fixtures = []struct {
	query  string
	params database.Params
}{
	{query: `CREATE TABLE {users} (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT,
		firstname TEXT NOT NULL DEFAULT '',
		lastname TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		active INTEGER NOT NULL DEFAULT 1
	)`},
	{query: `CREATE TABLE {extract} (
		id INTEGER PRIMARY KEY,
		userid INTEGER NOT NULL,
		course TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		isbn TEXT,
		pages TEXT NOT NULL,
		status TEXT NOT NULL,
		timecreated TEXT NOT NULL
	)`},
	{
		query:  `INSERT INTO {users} (id, username, firstname, lastname, role) VALUES (:id, :username, :first, :last, :role)`,
		params: database.Params{"id": 1, "username": "jdoe", "first": "Jane", "last": "Doe", "role": "admin"},
	},
	{
		query:  `INSERT INTO {users} (id, username, firstname, lastname, role) VALUES (:id, :username, :first, :last, :role)`,
		params: database.Params{"id": 2, "username": "bob", "first": "Bob", "last": "", "role": "user"},
	},
	{
		query:  `INSERT INTO {users} (id, username, role, active) VALUES (:id, :username, :role, 0)`,
		params: database.Params{"id": 3, "username": "amy", "role": "admin"},
	},
	{
		query: `INSERT INTO {extract} (id, userid, course, title, author, pages, status, timecreated)
			VALUES (:id, :userid, 'EN101', :title, 'A. Author', '1-10', :status, :created)`,
		params: database.Params{"id": 1, "userid": 1, "title": "First", "status": "approved", "created": "2024-03-01T10:00:00Z"},
	},
	{
		query: `INSERT INTO {extract} (id, userid, course, title, author, pages, status, timecreated)
			VALUES (:id, :userid, 'EN101', :title, 'A. Author', '1-10', :status, :created)`,
		params: database.Params{"id": 2, "userid": 2, "title": "Second", "status": "pending", "created": "2024-03-02T10:00:00Z"},
	},
}

func newTestRouter(t *testing.T, auth config.AuthConfig) *echo.Echo {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.DatabaseConfig{
		Engine: config.EngineSQLite,
		Name:   filepath.Join(t.TempDir(), "router.db"),
		Prefix: "cla_",
	}, database.Options{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, f := range fixtures {
		if _, err := db.Execute(ctx, f.query, f.params); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	output, err := presentation.NewOutput()
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "local"},
			Server:        config.DefaultServerConfig(),
			Database:      config.DatabaseConfig{Engine: config.EngineSQLite, Prefix: "cla_"},
			Auth:          auth,
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
		DB:     db,
		Output: output,
	}

	services, err := service.NewService(s, repository.NewRepositories(s))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewRouter(s, handler.NewHandlers(s, services))
}

func do(t *testing.T, r *echo.Echo, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestListRecords(t *testing.T) {
	r := newTestRouter(t, config.AuthConfig{})

	rec := do(t, r, http.MethodGet, "/api/v1/tables/users/records?role=admin&fields=id,username")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if !strings.HasPrefix(rec.Body.String(), `[{"id":1,"username":"jdoe"}`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rows := decode[[]map[string]any](t, rec)
	if len(rows) != 2 {
		t.Fatalf("expected 2 admins, got %d", len(rows))
	}
}

func TestListRecordsInvalidTable(t *testing.T) {
	r := newTestRouter(t, config.AuthConfig{})

	rec := do(t, r, http.MethodGet, "/api/v1/tables/bad-name/records")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetRecord(t *testing.T) {
	r := newTestRouter(t, config.AuthConfig{})

	t.Run("found", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/v1/tables/users/record?username=bob")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		row := decode[map[string]any](t, rec)
		if row["firstname"] != "Bob" {
			t.Fatalf("unexpected record %v", row)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/v1/tables/users/record?username=nobody")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if body := decode[errs.HTTPError](t, rec); body.Code != "RECORD_NOT_FOUND" {
			t.Fatalf("unexpected code %q", body.Code)
		}
	})

	t.Run("ambiguous", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/api/v1/tables/users/record?role=admin")
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})
}

func TestFieldset(t *testing.T) {
	r := newTestRouter(t, config.AuthConfig{})

	rec := do(t, r, http.MethodGet, "/api/v1/tables/users/fieldset/username?active=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	values := decode[[]string](t, rec)
	if len(values) != 2 || values[0] != "jdoe" || values[1] != "bob" {
		t.Fatalf("unexpected fieldset %v", values)
	}
}

func TestDeleteRecords(t *testing.T) {
	r := newTestRouter(t, config.AuthConfig{})

	rec := do(t, r, http.MethodDelete, "/api/v1/tables/users/records")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without a filter", rec.Code)
	}
	if body := decode[errs.HTTPError](t, rec); body.Code != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected code %q", body.Code)
	}

	rec = do(t, r, http.MethodDelete, "/api/v1/tables/users/records?username=bob")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body := decode[handler.DeleteRecordsResponse](t, rec); body.Deleted != 1 || body.Table != "users" {
		t.Fatalf("unexpected response %+v", body)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/tables/users/record?username=bob")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 after delete", rec.Code)
	}
}

func TestDeleteRecord(t *testing.T) {
	r := newTestRouter(t, config.AuthConfig{})

	rec := do(t, r, http.MethodDelete, "/api/v1/tables/users/record")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without a filter", rec.Code)
	}

	rec = do(t, r, http.MethodDelete, "/api/v1/tables/users/record?role=admin")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for several matches", rec.Code)
	}

	rec = do(t, r, http.MethodDelete, "/api/v1/tables/users/record?username=nobody")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	rec = do(t, r, http.MethodDelete, "/api/v1/tables/users/record?username=bob")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/api/v1/tables/users/records?role=admin")
	if rows := decode[[]map[string]any](t, rec); len(rows) < 2 {
		t.Fatalf("ambiguous delete removed rows: %v", rows)
	}
}

func TestListExtracts(t *testing.T) {
	r := newTestRouter(t, config.AuthConfig{})

	rec := do(t, r, http.MethodGet, "/api/v1/extracts?status=approved")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	extracts := decode[[]map[string]any](t, rec)
	if len(extracts) != 1 {
		t.Fatalf("expected 1 approved extract, got %d", len(extracts))
	}
	if extracts[0]["title"] != "First" || extracts[0]["requester"] != "Jane Doe" {
		t.Fatalf("unexpected extract %v", extracts[0])
	}

	rec = do(t, r, http.MethodGet, "/api/v1/extracts?status=lost")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for an unknown status", rec.Code)
	}
}

func TestIndexPage(t *testing.T) {
	r := newTestRouter(t, config.AuthConfig{})

	rec := do(t, r, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	for _, want := range []string{"<title>CLA Home</title>", "CLA Administration", "First", "Second"} {
		if !strings.Contains(body, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}

func TestSystemRoutes(t *testing.T) {
	r := newTestRouter(t, config.AuthConfig{})

	for _, target := range []string{"/status", "/docs", "/static/openapi.json"} {
		if rec := do(t, r, http.MethodGet, target); rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d", target, rec.Code)
		}
	}

	if rec := do(t, r, http.MethodGet, "/nowhere"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nowhere: status = %d, want 404", rec.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	r := newTestRouter(t, config.AuthConfig{AdminUser: "admin", AdminPasswordHash: string(hash)})

	if rec := do(t, r, http.MethodGet, "/api/v1/tables/users/records"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tables/users/records", nil)
	req.SetBasicAuth("admin", "s3cret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d with credentials: %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, r, http.MethodGet, "/status"); rec.Code != http.StatusOK {
		t.Fatalf("health must stay public, got %d", rec.Code)
	}
}
