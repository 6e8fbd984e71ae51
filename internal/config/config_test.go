package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/aqi/internal/domain"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Model/RandomForestRegressor.json", cfg.ModelPath)
	assert.Equal(t, domain.VariantStandard, cfg.Variant)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, "info", cfg.LogLevel)

	kind, _ := cfg.Storage()
	assert.Equal(t, StorageMemory, kind)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_VARIANT", "city")
	t.Setenv("ML_SERVICE_URL", "http://model:8000/")
	t.Setenv("PREDICT_RATE_LIMIT", "2.5")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(nil, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, domain.VariantCity, cfg.Variant)
	assert.Equal(t, "http://model:8000", cfg.MLServiceURL)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MODEL_PATH=/models/forest.json\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("MODEL_PATH") })

	cfg, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "/models/forest.json", cfg.ModelPath)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown variant", "MODEL_VARIANT", "weather"},
		{"negative rate", "PREDICT_RATE_LIMIT", "-1"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad log format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(nil, noEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestConfig_Storage(t *testing.T) {
	tests := []struct {
		url  string
		kind StorageKind
		dsn  string
	}{
		{"", StorageMemory, ""},
		{"postgres://u:p@db/aqi", StoragePostgres, "postgres://u:p@db/aqi"},
		{"postgresql://db/aqi", StoragePostgres, "postgresql://db/aqi"},
		{"sqlite://data/aqi.db", StorageSQLite, "data/aqi.db"},
		{"sqlite::memory:", StorageSQLite, ":memory:"},
		{"host=db dbname=aqi", StoragePostgres, "host=db dbname=aqi"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			kind, dsn := (&Config{DatabaseURL: tt.url}).Storage()
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.dsn, dsn)
		})
	}
}
