package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/deppfellow/cla-admin/internal/config"
	"github.com/deppfellow/cla-admin/internal/database"
	"github.com/deppfellow/cla-admin/internal/errs"
	"github.com/deppfellow/cla-admin/internal/server"
)

func newTestServer(t *testing.T, auth config.AuthConfig) *server.Server {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Engine: config.EngineSQLite,
		Name:   filepath.Join(t.TempDir(), "cla.db"),
		Prefix: "cla_",
	}, database.Options{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "local"},
			Server:        config.DefaultServerConfig(),
			Auth:          auth,
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
		DB:     db,
	}
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "invalid argument",
			err:    &database.Error{Op: "delete_record", Kind: database.KindInvalidArgument, Err: errors.New("refusing to delete")},
			status: http.StatusBadRequest,
			code:   "INVALID_ARGUMENT",
		},
		{
			name:   "ambiguous lookup",
			err:    &database.Error{Op: "get_record", Kind: database.KindAmbiguous},
			status: http.StatusConflict,
			code:   "AMBIGUOUS_LOOKUP",
		},
		{
			name:   "unknown field",
			err:    &database.Error{Op: "get_models", Kind: database.KindUnknownField},
			status: http.StatusInternalServerError,
		},
		{
			name:   "missing id",
			err:    &database.Error{Op: "query_by_id", Kind: database.KindMissingID},
			status: http.StatusInternalServerError,
		},
		{
			name:   "echo route not found",
			err:    echo.NewHTTPError(http.StatusNotFound),
			status: http.StatusNotFound,
		},
		{
			name:   "echo unauthorized",
			err:    echo.ErrUnauthorized,
			status: http.StatusUnauthorized,
			code:   "UNAUTHORIZED",
		},
		{
			name:   "no rows",
			err:    sql.ErrNoRows,
			status: http.StatusNotFound,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toHTTPError(tt.err, "cla_")

			var httpErr *errs.HTTPError
			if !errors.As(got, &httpErr) {
				t.Fatalf("expected *errs.HTTPError, got %T", got)
			}
			if httpErr.Status != tt.status {
				t.Fatalf("status = %d, want %d", httpErr.Status, tt.status)
			}
			if tt.code != "" && httpErr.Code != tt.code {
				t.Fatalf("code = %q, want %q", httpErr.Code, tt.code)
			}
		})
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	s := newTestServer(t, config.AuthConfig{})
	global := NewGlobalMiddlewares(s)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/tables/user/record", nil), rec)

	global.GlobalErrorHandler(&database.Error{
		Op:   "get_record",
		SQL:  "SELECT * FROM cla_user WHERE role = :role",
		Kind: database.KindAmbiguous,
	}, c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var body errs.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "AMBIGUOUS_LOOKUP" || body.Status != http.StatusConflict {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	handler := RequestID()(func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()

		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if rec.Body.String() != "req-42" || rec.Header().Get(RequestIDHeader) != "req-42" {
			t.Fatalf("unexpected id %q / %q", rec.Body.String(), rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()

		if err := handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if len(rec.Body.String()) != 36 {
			t.Fatalf("expected a uuid, got %q", rec.Body.String())
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	s := newTestServer(t, config.AuthConfig{
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
	})
	mw := NewAuthMiddleware(s).RequireAdmin()

	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, GetUserID(c))
	})

	e := echo.New()

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "s3cret")
		rec := httptest.NewRecorder()

		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if rec.Body.String() != "admin" {
			t.Fatalf("expected user id admin, got %q", rec.Body.String())
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("admin", "nope")
		rec := httptest.NewRecorder()

		if err := handler(e.NewContext(req, rec)); err == nil {
			t.Fatal("expected an error for a wrong password")
		}
	})

	t.Run("wrong user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetBasicAuth("root", "s3cret")
		rec := httptest.NewRecorder()

		if err := handler(e.NewContext(req, rec)); err == nil {
			t.Fatal("expected an error for a wrong user")
		}
	})
}

func TestRequireAdminDisabled(t *testing.T) {
	s := newTestServer(t, config.AuthConfig{})
	handler := NewAuthMiddleware(s).RequireAdmin()(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e := echo.New()
	if err := handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
