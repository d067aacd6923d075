package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TASKS"

// legacyEnv maps config keys to additional environment variable names accepted
// for compatibility with existing deployments.
var legacyEnv = map[string]string{
	"database.url":                "DATABASE_URL",
	"auth.base_url":               "BETTER_AUTH_URL",
	"auth.jwks_cache_ttl_seconds": "JWKS_CACHE_TTL",
	"server.cors_origins":         "CORS_ORIGINS",
	"server.debug":                "DEBUG",
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first without overriding variables
// that are already set. Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		primary := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, primary, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.api_prefix", "/api/v1")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit_per_minute", 100)

	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("auth.jwks_path", "/api/auth/jwks")
	v.SetDefault("auth.jwks_cache_ttl_seconds", 3600)
	v.SetDefault("auth.jwks_max_keys", 16)
	v.SetDefault("auth.jwks_fetch_timeout_seconds", 30)
	v.SetDefault("auth.jwks_min_refetch_seconds", 5)
	v.SetDefault("auth.algorithms", []string{"RS256"})
	v.SetDefault("auth.leeway_seconds", 0)
}

// Validate checks the struct tags of cfg and returns a single error describing every violation.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.RegisterValidation("database_url", validateDatabaseURL); err != nil {
		return fmt.Errorf("failed to register config validators: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func validateDatabaseURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	for _, prefix := range []string{"postgres://", "postgresql://", "sqlite:"} {
		if strings.HasPrefix(raw, prefix) {
			return true
		}
	}
	return false
}
