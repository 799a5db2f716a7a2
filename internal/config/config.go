// Package config manages environment variables and the optional YAML
// configuration file.
//
// It reads variables from the `.env` file (godotenv autoload), layers the
// `CLA_` environment over an optional YAML file, decodes the result into
// structured Go types and validates it so the app fails fast on bad or
// missing values.
//
// Responsibilities:
//   - Load the YAML file named by CLA_CONFIG_FILE (or passed explicitly).
//   - Map env vars into the same key space (CLA_DATABASE__HOST -> database.host).
//   - Validate required values (go-playground/validator).
//   - Provide defaults for optional blocks (observability, server).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: a `.env` file in the working directory is loaded
	// into the process environment before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is stripped from every environment variable read by LoadConfig.
	EnvPrefix = "CLA_"

	// EnvConfigFile names the optional YAML file. It is read before the
	// environment so env vars always win.
	EnvConfigFile = "CLA_CONFIG_FILE"

	// ServiceName is the fixed name reported to logs and APM.
	ServiceName = "cla-admin"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags name the key path, `validate:"..."` tags are
// enforced by go-playground/validator after decoding.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Auth          AuthConfig           `koanf:"auth"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=local development staging production"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
	RateLimit          float64  `koanf:"rate_limit" validate:"min=0"`
}

// Supported database engines.
const (
	EnginePostgres  = "postgres"
	EngineSQLite    = "sqlite"
	EngineSQLServer = "sqlserver"
)

// DatabaseConfig is the connection configuration of the data access layer.
//
// For the sqlite engine Name is the database file path and the network
// fields are ignored. Prefix is prepended to every symbolic table name.
type DatabaseConfig struct {
	Engine   string `koanf:"engine" validate:"required,oneof=postgres sqlite sqlserver"`
	Host     string `koanf:"host" validate:"required_unless=Engine sqlite"`
	Port     int    `koanf:"port" validate:"required_unless=Engine sqlite,max=65535"`
	User     string `koanf:"user" validate:"required_unless=Engine sqlite"`
	Password string `koanf:"password"`
	Name     string `koanf:"name" validate:"required"`
	Prefix   string `koanf:"prefix"`
	SSLMode  string `koanf:"ssl_mode"`
}

// AuthConfig protects the admin surface with HTTP basic auth.
// An empty AdminUser disables the check; LoadConfig refuses that in
// production.
type AuthConfig struct {
	AdminUser         string `koanf:"admin_user"`
	AdminPasswordHash string `koanf:"admin_password_hash" validate:"required_with=AdminUser"`
}

// DefaultServerConfig is applied before any source is loaded.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		ReadTimeout:  30,
		WriteTimeout: 30,
		IdleTimeout:  60,
		RateLimit:    20,
	}
}

// envKey maps CLA_DATABASE__HOST to database.host.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// LoadConfig reads path (when non-empty) or the file named by CLA_CONFIG_FILE,
// overlays the CLA_ environment, validates and returns the configuration.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("could not load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Defaults are decoded over, so a partial observability block keeps the
	// remaining default values.
	mainConfig := &Config{
		Server:        DefaultServerConfig(),
		Observability: DefaultObservabilityConfig(),
	}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := mainConfig.finalize(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// finalize fills the observability identity and validates the result.
func (c *Config) finalize() error {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	if c.Observability.IsProduction() && c.Auth.AdminUser == "" {
		return fmt.Errorf("auth.admin_user is required in production")
	}

	return nil
}
