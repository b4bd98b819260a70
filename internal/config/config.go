// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
// It is built once at startup and treated as immutable afterwards; the JWT
// signing secret in particular is never reloaded or rotated at runtime.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the symmetric HS256 signing secret. Required.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim (e.g. "eval-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAccessTTL is the access token lifetime (e.g. "1h").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SessionMaxLifetime is how long a session stays valid after login (e.g. "720h").
	SessionMaxLifetime string `mapstructure:"SESSION_MAX_LIFETIME"`
	// MaxConcurrentSessions is the advisory per-user active session threshold; default 5.
	MaxConcurrentSessions int `mapstructure:"MAX_CONCURRENT_SESSIONS"`
	// ImpossibleTravelWindow is the window within which a login from a different
	// IP block is flagged (e.g. "10m").
	ImpossibleTravelWindow string `mapstructure:"IMPOSSIBLE_TRAVEL_WINDOW"`
	// DBTimeout bounds every persistence call made from the request path (e.g. "5s").
	DBTimeout string `mapstructure:"DB_TIMEOUT"`
	// OTLPEndpoint is the OTLP/HTTP trace collector endpoint. Tracing is disabled when empty.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "eval-auth")
	v.SetDefault("JWT_ACCESS_TTL", "1h")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_MAX_LIFETIME", "720h") // 30d
	v.SetDefault("MAX_CONCURRENT_SESSIONS", 5)
	v.SetDefault("IMPOSSIBLE_TRAVEL_WINDOW", "10m")
	v.SetDefault("DB_TIMEOUT", "5s")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.MaxConcurrentSessions <= 0 {
		return nil, errors.New("config: MAX_CONCURRENT_SESSIONS must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return durationOr(c.JWTAccessTTL, time.Hour)
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return durationOr(c.JWTRefreshTTL, 168*time.Hour)
}

// MaxLifetime parses SessionMaxLifetime as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) MaxLifetime() time.Duration {
	return durationOr(c.SessionMaxLifetime, 720*time.Hour)
}

// TravelWindow parses ImpossibleTravelWindow as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) TravelWindow() time.Duration {
	return durationOr(c.ImpossibleTravelWindow, 10*time.Minute)
}

// PersistenceTimeout parses DBTimeout as a time.Duration. Returns 5s if unset or invalid.
func (c *Config) PersistenceTimeout() time.Duration {
	return durationOr(c.DBTimeout, 5*time.Second)
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
