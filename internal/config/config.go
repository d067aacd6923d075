package config

import (
	"strings"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Debug exposes internal error details in API responses. Never enable in production.
	Debug              bool     `mapstructure:"debug"`
	APIPrefix          string   `mapstructure:"api_prefix" validate:"required,startswith=/"`
	CORSOrigins        []string `mapstructure:"cors_origins"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,database_url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// AuthConfig describes the external identity provider whose tokens are accepted.
type AuthConfig struct {
	// BaseURL is used to build the key set URL and as the expected issuer and audience.
	BaseURL                 string   `mapstructure:"base_url" validate:"required,url"`
	JWKSPath                string   `mapstructure:"jwks_path" validate:"required,startswith=/"`
	JWKSCacheTTLSeconds     int      `mapstructure:"jwks_cache_ttl_seconds" validate:"gt=0"`
	JWKSMaxKeys             int      `mapstructure:"jwks_max_keys" validate:"gt=0"`
	JWKSFetchTimeoutSeconds int      `mapstructure:"jwks_fetch_timeout_seconds" validate:"gt=0"`
	JWKSMinRefetchSeconds   int      `mapstructure:"jwks_min_refetch_seconds" validate:"gte=0"`
	Algorithms              []string `mapstructure:"algorithms" validate:"required,min=1,dive,oneof=RS256 RS384 RS512 PS256 PS384 PS512 ES256 ES384 ES512 EdDSA"`
	LeewaySeconds           int      `mapstructure:"leeway_seconds" validate:"gte=0"`
}

// JWKSURL returns the absolute URL of the identity provider's key set.
func (a AuthConfig) JWKSURL() string {
	return strings.TrimRight(a.BaseURL, "/") + a.JWKSPath
}

// Issuer returns the expected "iss" and "aud" value.
func (a AuthConfig) Issuer() string {
	return strings.TrimRight(a.BaseURL, "/")
}

func (a AuthConfig) JWKSCacheTTL() time.Duration {
	return time.Duration(a.JWKSCacheTTLSeconds) * time.Second
}

func (a AuthConfig) JWKSFetchTimeout() time.Duration {
	return time.Duration(a.JWKSFetchTimeoutSeconds) * time.Second
}

// JWKSMinRefetch is how soon after a fetch an unknown key id may trigger another.
func (a AuthConfig) JWKSMinRefetch() time.Duration {
	return time.Duration(a.JWKSMinRefetchSeconds) * time.Second
}

func (a AuthConfig) Leeway() time.Duration {
	return time.Duration(a.LeewaySeconds) * time.Second
}
