package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("prediction", "aqi", 42)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "prediction", line["msg"])
	assert.Equal(t, float64(42), line["aqi"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelDebug, "console").Debug("ready", "port", "8080")
	assert.Contains(t, buf.String(), "msg=ready")
	assert.Contains(t, buf.String(), "port=8080")
}
