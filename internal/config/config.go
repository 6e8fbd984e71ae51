// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/smartcity/aqi/internal/domain"
)

// Config holds runtime settings shared by the server and the CLI
type Config struct {
	Port         string
	Env          string
	DatabaseURL  string
	ModelPath    string
	Variant      domain.Variant
	MLServiceURL string
	RateLimit    float64
	RateBurst    int
	LogLevel     string
	LogFormat    string
}

// Load reads .env files (if present) then the environment.
// v may be nil; callers pass their own viper instance to layer flags on top.
func Load(v *viper.Viper, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("No .env file found, using system environment")
	}

	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	v.AutomaticEnv()

	variant, err := domain.ParseVariant(v.GetString("model_variant"))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := &Config{
		Port:         v.GetString("port"),
		Env:          v.GetString("go_env"),
		DatabaseURL:  v.GetString("database_url"),
		ModelPath:    v.GetString("model_path"),
		Variant:      variant,
		MLServiceURL: strings.TrimRight(v.GetString("ml_service_url"), "/"),
		RateLimit:    v.GetFloat64("predict_rate_limit"),
		RateBurst:    v.GetInt("predict_burst"),
		LogLevel:     v.GetString("log_level"),
		LogFormat:    v.GetString("log_format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("go_env", "development")
	v.SetDefault("database_url", "")
	v.SetDefault("model_path", "Model/RandomForestRegressor.json")
	v.SetDefault("model_variant", string(domain.VariantStandard))
	v.SetDefault("ml_service_url", "")
	v.SetDefault("predict_rate_limit", 0)
	v.SetDefault("predict_burst", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	if c.ModelPath == "" && c.MLServiceURL == "" {
		return fmt.Errorf("config: one of MODEL_PATH or ML_SERVICE_URL is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: PREDICT_RATE_LIMIT must not be negative, got %v", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("config: PREDICT_BURST must be at least 1, got %d", c.RateBurst)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: invalid log format %q", c.LogFormat)
	}
	return nil
}

// StorageKind names the prediction log backend selected by DatabaseURL
type StorageKind string

const (
	StorageMemory   StorageKind = "memory"
	StoragePostgres StorageKind = "postgres"
	StorageSQLite   StorageKind = "sqlite"
)

// Storage returns the backend and its connection string.
// postgres:// and postgresql:// URLs select Postgres, sqlite:<path> selects SQLite.
func (c *Config) Storage() (StorageKind, string) {
	switch {
	case c.DatabaseURL == "":
		return StorageMemory, ""
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return StoragePostgres, c.DatabaseURL
	case strings.HasPrefix(c.DatabaseURL, "sqlite://"):
		return StorageSQLite, strings.TrimPrefix(c.DatabaseURL, "sqlite://")
	case strings.HasPrefix(c.DatabaseURL, "sqlite:"):
		return StorageSQLite, strings.TrimPrefix(c.DatabaseURL, "sqlite:")
	default:
		return StoragePostgres, c.DatabaseURL
	}
}
