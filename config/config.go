// Package config loads server configuration from an optional
// config.yaml plus environment variable overrides (SERVER_PORT,
// DATABASE_URL, AUTH_JWT_SECRET, PROVIDERS_GOOGLE_CLIENT_ID, ...).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	FrontendOrigin  string        `mapstructure:"frontend_origin"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains the record store connection settings. With
// an empty DSN the server falls back to the in-memory store, which is
// for development only.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the connection string. Priority: DATABASE_URL >
// constructed from individual fields; empty when neither is set.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Host == "" {
		return ""
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode,
	)
}

// AuthConfig holds the two process-wide secrets: the token signing key
// and the key that signs the transient OAuth handshake state.
type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	StateSecret string `mapstructure:"state_secret"`
}

// ProviderConfig is one federated provider's client credentials. A
// provider with an empty client id is treated as unconfigured and its
// routes are not mounted.
type ProviderConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
}

func (p ProviderConfig) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// ProvidersConfig names the three supported providers explicitly.
type ProvidersConfig struct {
	Google   ProviderConfig `mapstructure:"google"`
	Github   ProviderConfig `mapstructure:"github"`
	Facebook ProviderConfig `mapstructure:"facebook"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, env vars and defaults suffice.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.frontend_origin", "http://localhost:3000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("database.database", "soulapp")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("providers.google.callback_url", "/auth/google/callback")
	v.SetDefault("providers.github.callback_url", "/auth/github/callback")
	v.SetDefault("providers.facebook.callback_url", "/auth/facebook/callback")

	// Keys with no real default still need registering or AutomaticEnv
	// will not surface them through Unmarshal.
	for _, key := range []string{
		"auth.jwt_secret", "auth.state_secret",
		"database.url", "database.host", "database.user",
		"database.password", "database.sslmode",
		"providers.google.client_id", "providers.google.client_secret",
		"providers.github.client_id", "providers.github.client_secret",
		"providers.facebook.client_id", "providers.facebook.client_secret",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("database.port", 5432)
}

// Validate enforces the settings the process cannot run without. A
// missing signing key must stop startup, not surface per-request.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (AUTH_JWT_SECRET) is required")
	}
	if c.Auth.StateSecret == "" {
		return errors.New("auth.state_secret (AUTH_STATE_SECRET) is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.FrontendOrigin == "" {
		return errors.New("server.frontend_origin is required")
	}
	return nil
}
