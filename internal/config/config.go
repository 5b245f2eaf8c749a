// Package config loads and validates the license key backend configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the LKA_ prefix (e.g., LKA_DATABASE_HOST
// overrides database.host in the YAML). This layering allows the same binary to
// run with a config.yaml in local development and with pure environment variables
// in containerized deployments without recompilation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Licensing LicensingConfig `mapstructure:"licensing"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// GetAddress returns the server address in host:port format
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// AuthConfig holds admin authentication configuration.
//
// Exactly one of MasterKey / MasterKeyHash must be set. MasterKeyHash holds a
// bcrypt hash (generate one with cmd/hash) so the plaintext master key never
// appears in config files. SessionSecret signs the short-lived admin session
// JWTs issued on login; when empty a random secret is generated at startup and
// sessions do not survive restarts.
type AuthConfig struct {
	MasterKey     string        `mapstructure:"master_key"`
	MasterKeyHash string        `mapstructure:"master_key_hash"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
}

// LicensingConfig holds key generation and validation policy.
type LicensingConfig struct {
	TokenPrefix       string `mapstructure:"token_prefix"`
	TokenSuffixLength int    `mapstructure:"token_suffix_length"`
	TokenAlphabet     string `mapstructure:"token_alphabet"`
	MaxGenerate       int    `mapstructure:"max_generate"`
	MaxInsertAttempts int    `mapstructure:"max_insert_attempts"`
	// InvalidExpiry: "lifetime" (malformed expiry tokens silently issue
	// lifetime keys, the historical behavior) or "reject".
	InvalidExpiry string `mapstructure:"invalid_expiry"`
	RecentEvents  int    `mapstructure:"recent_events"`
}

// SecurityConfig holds CORS and rate-limiting configuration
type SecurityConfig struct {
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
}

// CORSConfig holds CORS settings for the admin panel origin
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// RateLimitingConfig holds rate limiting settings
type RateLimitingConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds Prometheus metrics settings
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// Load reads configuration from the given path (or the default search paths)
// plus LKA_-prefixed environment variables, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/admin-panel")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	v.SetEnvPrefix("LKA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables for nested structures
	// This is necessary because AutomaticEnv() doesn't work well with Unmarshal()
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in sensitive fields
	cfg.Database.Password = expandEnv(cfg.Database.Password)
	cfg.Auth.MasterKey = expandEnv(cfg.Auth.MasterKey)
	cfg.Auth.SessionSecret = expandEnv(cfg.Auth.SessionSecret)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "admin_panel")
	v.SetDefault("database.user", "panel")
	v.SetDefault("database.ssl_mode", "require")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	// Auth defaults
	v.SetDefault("auth.session_ttl", "12h")

	// Licensing defaults
	v.SetDefault("licensing.token_prefix", "KA-")
	v.SetDefault("licensing.token_suffix_length", 5)
	v.SetDefault("licensing.token_alphabet", "ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	v.SetDefault("licensing.max_generate", 200)
	v.SetDefault("licensing.max_insert_attempts", 12)
	v.SetDefault("licensing.invalid_expiry", "lifetime")
	v.SetDefault("licensing.recent_events", 20)

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.requests_per_minute", 60)
	v.SetDefault("security.rate_limiting.burst", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
}

// bindEnvVars explicitly binds environment variables for nested config keys.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",

		// Database
		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.ssl_mode",
		"database.max_connections",
		"database.min_idle_connections",

		// Auth
		"auth.master_key",
		"auth.master_key_hash",
		"auth.session_secret",
		"auth.session_ttl",

		// Licensing
		"licensing.token_prefix",
		"licensing.token_suffix_length",
		"licensing.token_alphabet",
		"licensing.max_generate",
		"licensing.max_insert_attempts",
		"licensing.invalid_expiry",
		"licensing.recent_events",

		// Security
		"security.cors.allowed_origins",
		"security.cors.allowed_methods",
		"security.rate_limiting.enabled",
		"security.rate_limiting.requests_per_minute",
		"security.rate_limiting.burst",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
	}

	for _, key := range keys {
		envKey := "LKA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey); err != nil {
			return fmt.Errorf("failed to bind env var %s: %w", envKey, err)
		}
	}

	return nil
}

// expandEnv expands ${VAR} references so secrets can be injected indirectly.
func expandEnv(s string) string {
	if strings.Contains(s, "${") {
		return os.ExpandEnv(s)
	}
	return s
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	// Validate server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Validate database
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}

	// Validate auth
	if c.Auth.MasterKey == "" && c.Auth.MasterKeyHash == "" {
		return fmt.Errorf("auth.master_key or auth.master_key_hash is required")
	}
	if c.Auth.MasterKey != "" && c.Auth.MasterKeyHash != "" {
		return fmt.Errorf("auth.master_key and auth.master_key_hash are mutually exclusive")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}

	// Validate licensing
	if c.Licensing.TokenSuffixLength < 1 {
		return fmt.Errorf("licensing.token_suffix_length must be at least 1")
	}
	if len(c.Licensing.TokenAlphabet) < 2 {
		return fmt.Errorf("licensing.token_alphabet must have at least 2 characters")
	}
	if c.Licensing.MaxGenerate < 1 {
		return fmt.Errorf("licensing.max_generate must be at least 1")
	}
	if c.Licensing.MaxInsertAttempts < 1 {
		return fmt.Errorf("licensing.max_insert_attempts must be at least 1")
	}
	switch c.Licensing.InvalidExpiry {
	case "lifetime", "reject":
	default:
		return fmt.Errorf("invalid licensing.invalid_expiry: %s (must be lifetime or reject)", c.Licensing.InvalidExpiry)
	}

	// Validate logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	return nil
}
