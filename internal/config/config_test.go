package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "CLA_PRIMARY__ENV", want: "primary.env"},
		{in: "CLA_DATABASE__SSL_MODE", want: "database.ssl_mode"},
		{in: "CLA_OBSERVABILITY__LOGGING__FILE", want: "observability.logging.file"},
	}

	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cla.yaml")
	body := `
primary:
  env: local
database:
  engine: sqlite
  name: /tmp/cla.db
  prefix: cla_
observability:
  logging:
    level: warn
    slow_query_threshold: 250ms
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CLA_DATABASE__PREFIX", "mdl_")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Database.Engine != EngineSQLite {
		t.Fatalf("expected engine sqlite, got %q", cfg.Database.Engine)
	}
	if cfg.Database.Prefix != "mdl_" {
		t.Fatalf("expected env to override prefix, got %q", cfg.Database.Prefix)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Observability.Logging.Level != "warn" {
		t.Fatalf("expected logging level warn, got %q", cfg.Observability.Logging.Level)
	}
	if cfg.Observability.Logging.SlowQueryThreshold != 250*time.Millisecond {
		t.Fatalf("expected slow query threshold 250ms, got %s", cfg.Observability.Logging.SlowQueryThreshold)
	}
	if cfg.Observability.Logging.Format != "json" {
		t.Fatalf("expected default format json to survive partial block, got %q", cfg.Observability.Logging.Format)
	}
	if cfg.Observability.ServiceName != ServiceName || cfg.Observability.Environment != "local" {
		t.Fatalf("unexpected observability identity %q/%q", cfg.Observability.ServiceName, cfg.Observability.Environment)
	}
}

func TestLoadConfig_NetworkEngineRequiresHost(t *testing.T) {
	t.Setenv("CLA_PRIMARY__ENV", "local")
	t.Setenv("CLA_DATABASE__ENGINE", "postgres")
	t.Setenv("CLA_DATABASE__NAME", "cla")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected validation error for postgres without host/port/user")
	}
}

func TestLoadConfig_ProductionRequiresAdminUser(t *testing.T) {
	t.Setenv("CLA_PRIMARY__ENV", "production")
	t.Setenv("CLA_DATABASE__ENGINE", "sqlite")
	t.Setenv("CLA_DATABASE__NAME", filepath.Join(t.TempDir(), "cla.db"))

	_, err := LoadConfig("")
	if err == nil || !strings.Contains(err.Error(), "admin_user") {
		t.Fatalf("expected admin_user error in production, got %v", err)
	}

	t.Setenv("CLA_AUTH__ADMIN_USER", "admin")
	t.Setenv("CLA_AUTH__ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Auth.AdminUser != "admin" {
		t.Fatalf("expected admin user, got %q", cfg.Auth.AdminUser)
	}
}

func TestObservabilityValidate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid level to be rejected")
	}

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected negative threshold to be rejected")
	}
}

func TestGetLogLevel(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = ""

	cfg.Environment = "production"
	if got := cfg.GetLogLevel(); got != "info" {
		t.Fatalf("production default = %q, want info", got)
	}

	cfg.Environment = "local"
	if got := cfg.GetLogLevel(); got != "debug" {
		t.Fatalf("local default = %q, want debug", got)
	}
}
