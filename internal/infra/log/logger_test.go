package logs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"safeguard/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := parseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseLogLevel("verbose")
	assert.Error(t, err)
}

func TestBuild_TagsServiceAndEnv(t *testing.T) {
	cfg := &config.Config{}
	cfg.Env.ServiceName = "safeguard"
	cfg.Env.Env = "test"
	cfg.Env.Log.Level = "info"

	var buf bytes.Buffer
	logger, err := build(&buf, cfg)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "safeguard", line["service"])
	assert.Equal(t, "test", line["env"])
}
